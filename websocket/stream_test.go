package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameOrigin(t *testing.T) {
	cases := []struct {
		name   string
		origin string
		allow  bool
	}{
		{"no origin header", "", true},
		{"panel's own origin", "http://panel.example", true},
		{"own origin over https", "https://panel.example", true},
		{"host casing differs", "http://PANEL.example", true},
		{"cross-origin page", "http://evil.example", false},
		{"subdomain of the panel host", "http://panel.example.evil.example", false},
		{"malformed origin", "http://panel.example:bad%port", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/manager/whatsapp/stream", nil)
			r.Host = "panel.example"
			if tc.origin != "" {
				r.Header.Set("Origin", tc.origin)
			}
			assert.Equal(t, tc.allow, sameOrigin(r))
		})
	}
}

func TestUpgraderRefusesCrossOriginHandshake(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, resp, err := gws.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"http://evil.example"}})
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, resp, err = gws.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{srv.URL}})
	require.NoError(t, err)
	defer resp.Body.Close()
	conn.Close()
}
