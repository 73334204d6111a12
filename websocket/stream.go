// websocket/stream.go
package websocket

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/impulsohub/painel/whatsapp"
)

var upgrader = gws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin admits only browsers on the panel's own origin. The socket is
// cookie-authenticated, so a cross-site page must not be able to open it.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// ServeStatus streams connection-state snapshots of one machine to the panel
// page over a websocket. The stream closes when the client goes away or the
// machine is stopped; the machine itself outlives the socket.
func ServeStatus(c echo.Context, m *whatsapp.Machine, log zerolog.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := m.Subscribe()
	defer m.Unsubscribe(sub)

	done := make(chan struct{})

	// Read pump: the panel never sends data, but reading is what detects the
	// close frame and keeps pong handling alive.
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-sub:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(gws.CloseMessage, gws.FormatCloseMessage(gws.CloseNormalClosure, ""))
				return nil
			}
			if err := conn.WriteJSON(snap); err != nil {
				log.Debug().Err(err).Msg("status stream write failed")
				return nil
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(gws.PingMessage, nil); err != nil {
				return nil
			}
		case <-done:
			return nil
		}
	}
}
