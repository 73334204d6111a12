// tiers/editor.go
package tiers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/impulsohub/painel/models"
)

// Gap between a tier's upper bound and the next tier's lower bound. Bounds
// are inclusive on both ends, so consecutive tiers sit one cent apart.
const step = 0.01

// Store is the persistence boundary of the editor: the backend holds the
// authoritative tier lists, the editor only shapes them.
type Store interface {
	// Load fetches the tiers of one partition.
	Load(ctx context.Context, partition string) ([]models.CommissionTier, error)
	// Replace submits the whole list for bulk replacement and returns the
	// backend's canonical version.
	Replace(ctx context.Context, partition string, tiers []models.CommissionTier) ([]models.CommissionTier, error)
}

// User-correctable rejections. Every one of them leaves the list untouched.
var (
	ErrInvalidMinimum   = errors.New("Por favor, insira um valor mínimo positivo para a nova faixa.")
	ErrLastTierRequired = errors.New("Deve haver pelo menos uma faixa de comissão.")
	ErrIndexOutOfRange  = errors.New("Faixa inexistente.")
	ErrMinNotEditable   = errors.New("O valor mínimo desta faixa é derivado da faixa anterior.")
	ErrMaxOnLastTier    = errors.New("A última faixa não possui valor máximo.")
	ErrSubmitInFlight   = errors.New("Já existe um salvamento em andamento. Aguarde a conclusão.")
)

// Editor maintains one partition's tier list as a contiguous, non-overlapping
// partition of the sales-value axis. All mutating operations either keep the
// invariants or reject without touching the list; Validate re-checks the
// whole shape before any submission.
type Editor struct {
	mu         sync.Mutex
	partition  string
	tiers      []models.CommissionTier
	store      Store
	submitting bool
}

// NewEditor builds an editor for one partition backed by store.
func NewEditor(partition string, store Store) *Editor {
	return &Editor{partition: partition, store: store}
}

// NewEditorWith builds an editor over an already-materialized list, as posted
// back by the settings page. The list is defensively copied.
func NewEditorWith(partition string, store Store, tiers []models.CommissionTier) *Editor {
	e := NewEditor(partition, store)
	e.tiers = append([]models.CommissionTier(nil), tiers...)
	return e
}

// Partition returns the partition this editor serves.
func (e *Editor) Partition() string { return e.partition }

// Tiers returns a copy of the working list.
func (e *Editor) Tiers() []models.CommissionTier {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.CommissionTier(nil), e.tiers...)
}

// Load replaces the working list with the backend's current tiers and clears
// any pending state. On failure the list is left empty and the error carries
// the user-facing message.
func (e *Editor) Load(ctx context.Context) error {
	loaded, err := e.store.Load(ctx, e.partition)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.tiers = nil
		return err
	}
	sort.SliceStable(loaded, func(i, j int) bool {
		return loaded[i].MinSalesValue < loaded[j].MinSalesValue
	})
	e.tiers = loaded
	return nil
}

// AddInput parses a user-entered minimum and adds a tier. Non-numeric input
// is rejected the same way a negative value is.
func (e *Editor) AddInput(input string) error {
	min, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return ErrInvalidMinimum
	}
	return e.Add(min)
}

// Add appends a new open-ended tier starting at newMin. The previous last
// tier is closed at newMin-0.01 (clamped to zero). On an empty list any
// newMin >= 0 seeds the first open-ended tier. newMin must be strictly
// greater than the current last tier's minimum; rejection never mutates.
func (e *Editor) Add(newMin float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if newMin < 0 {
		return ErrInvalidMinimum
	}
	if n := len(e.tiers); n > 0 {
		last := &e.tiers[n-1]
		if newMin <= last.MinSalesValue {
			return fmt.Errorf("o valor mínimo deve ser maior que o valor mínimo da faixa anterior (%.2f)", last.MinSalesValue)
		}
		prevMax := newMin - step
		if prevMax < 0 {
			prevMax = 0
		}
		last.MaxSalesValue = &prevMax
	}
	e.tiers = append(e.tiers, models.CommissionTier{
		MinSalesValue:        newMin,
		CommissionPercentage: 0,
		AppliesTo:            e.partition,
	})
	return nil
}

// Remove deletes the tier at index i. A single-tier list is never emptied.
// Removing the last tier reopens the new last tier (max cleared). Removing a
// middle tier re-derives every subsequent lower bound so the list stays
// contiguous and submittable.
func (e *Editor) Remove(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.tiers) <= 1 {
		return ErrLastTierRequired
	}
	if i < 0 || i >= len(e.tiers) {
		return ErrIndexOutOfRange
	}

	last := i == len(e.tiers)-1
	e.tiers = append(e.tiers[:i], e.tiers[i+1:]...)

	if last {
		e.tiers[len(e.tiers)-1].MaxSalesValue = nil
		return nil
	}
	e.rederiveFrom(i)
	return nil
}

// rederiveFrom recomputes lower bounds from index i onward so each tier
// starts where its predecessor ends. Caller holds the lock.
func (e *Editor) rederiveFrom(i int) {
	for ; i < len(e.tiers); i++ {
		if i == 0 {
			continue
		}
		prev := e.tiers[i-1]
		if prev.MaxSalesValue != nil {
			e.tiers[i].MinSalesValue = *prev.MaxSalesValue + step
		}
	}
	// Upper bounds must still dominate the re-derived lower bounds.
	for j := 0; j < len(e.tiers)-1; j++ {
		if e.tiers[j].MaxSalesValue != nil && *e.tiers[j].MaxSalesValue <= e.tiers[j].MinSalesValue {
			adjusted := e.tiers[j+1].MinSalesValue - step
			if adjusted < e.tiers[j].MinSalesValue {
				adjusted = e.tiers[j].MinSalesValue
			}
			e.tiers[j].MaxSalesValue = &adjusted
		}
	}
}

// SetPercentage updates the commission percentage of tier i.
func (e *Editor) SetPercentage(i int, pct float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.tiers) {
		return ErrIndexOutOfRange
	}
	if pct < 0 || pct > 100 {
		return errors.New("A porcentagem deve estar entre 0 e 100.")
	}
	e.tiers[i].CommissionPercentage = pct
	return nil
}

// SetMin updates a tier's lower bound. Only the first row accepts a direct
// edit; every other minimum is derived from its predecessor's maximum.
func (e *Editor) SetMin(i int, min float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.tiers) {
		return ErrIndexOutOfRange
	}
	if i != 0 {
		return ErrMinNotEditable
	}
	if min < 0 {
		return ErrInvalidMinimum
	}
	if e.tiers[0].MaxSalesValue != nil && *e.tiers[0].MaxSalesValue <= min {
		return errors.New("O valor mínimo deve ser menor que o valor máximo da faixa.")
	}
	e.tiers[0].MinSalesValue = min
	return nil
}

// SetMax updates a non-last tier's upper bound and propagates the next
// tier's lower bound to max+0.01 so contiguity is kept by recomputation.
func (e *Editor) SetMax(i int, max float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.tiers) {
		return ErrIndexOutOfRange
	}
	if i == len(e.tiers)-1 {
		return ErrMaxOnLastTier
	}
	if max <= e.tiers[i].MinSalesValue {
		return errors.New("O valor máximo deve ser maior que o valor mínimo da faixa.")
	}
	e.tiers[i].MaxSalesValue = &max
	e.tiers[i+1].MinSalesValue = max + step
	e.rederiveFrom(i + 1)
	return nil
}

// Validate checks the whole list against the tier invariants: non-empty,
// ascending, closed and dominated bounds on every non-last tier, open-ended
// last tier, contiguous neighbors, percentages within [0,100].
func (e *Editor) Validate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return validate(e.tiers)
}

func validate(tiers []models.CommissionTier) error {
	if len(tiers) == 0 {
		return ErrLastTierRequired
	}
	for i, t := range tiers {
		if t.MinSalesValue < 0 {
			return fmt.Errorf("faixa %d: valor mínimo negativo", i+1)
		}
		if t.CommissionPercentage < 0 || t.CommissionPercentage > 100 {
			return fmt.Errorf("faixa %d: porcentagem fora de 0-100", i+1)
		}
		last := i == len(tiers)-1
		if last {
			if t.MaxSalesValue != nil {
				return fmt.Errorf("faixa %d: a última faixa deve ser aberta", i+1)
			}
			continue
		}
		if t.MaxSalesValue == nil {
			return fmt.Errorf("faixa %d: faixas intermediárias precisam de valor máximo", i+1)
		}
		if *t.MaxSalesValue <= t.MinSalesValue {
			return fmt.Errorf("faixa %d: valor máximo deve ser maior que o mínimo", i+1)
		}
		next := tiers[i+1]
		if next.MinSalesValue <= t.MinSalesValue {
			return fmt.Errorf("faixa %d: faixas fora de ordem", i+2)
		}
		if diff := next.MinSalesValue - *t.MaxSalesValue; diff < 0 || diff > step+boundTolerance(next.MinSalesValue) {
			return fmt.Errorf("faixa %d: sobreposição ou lacuna com a faixa anterior", i+2)
		}
	}
	return nil
}

// boundTolerance is the float slack allowed on the one-step contiguity check,
// scaled to the magnitude of the bound: at bounds near 1e12 a single ulp is
// larger than any fixed epsilon, so deriving min as max+step already rounds
// by more than 1e-9.
func boundTolerance(x float64) float64 {
	ulp := math.Nextafter(math.Abs(x), math.Inf(1)) - math.Abs(x)
	if tol := 4 * ulp; tol > 1e-9 {
		return tol
	}
	return 1e-9
}

// Submit validates and bulk-replaces the partition's tiers. On success the
// working list becomes the backend's canonical response (the server may
// normalize values). A second Submit while one is outstanding is rejected
// instead of racing; any failure is recoverable and keeps local state.
func (e *Editor) Submit(ctx context.Context) error {
	e.mu.Lock()
	if e.submitting {
		e.mu.Unlock()
		return ErrSubmitInFlight
	}
	if err := validate(e.tiers); err != nil {
		e.mu.Unlock()
		return err
	}
	e.submitting = true
	outgoing := append([]models.CommissionTier(nil), e.tiers...)
	e.mu.Unlock()

	saved, err := e.store.Replace(ctx, e.partition, outgoing)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.submitting = false
	if err != nil {
		return err
	}
	if saved != nil {
		e.tiers = saved
	}
	return nil
}
