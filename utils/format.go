// utils/format.go
package utils

import (
	"fmt"
	"strings"
)

// formatMoney renders a value as Brazilian currency: R$ 1.234,56.
func formatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := int64(v)
	cents := int64((v-float64(whole))*100 + 0.5)
	if cents == 100 {
		whole++
		cents = 0
	}

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	out := fmt.Sprintf("R$ %s,%02d", b.String(), cents)
	if neg {
		return "-" + out
	}
	return out
}
