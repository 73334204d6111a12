// controllers/whatsapp_controller.go
package controllers

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/impulsohub/painel/config"
	"github.com/impulsohub/painel/models"
	"github.com/impulsohub/painel/services"
	"github.com/impulsohub/painel/utils"
	"github.com/impulsohub/painel/websocket"
	"github.com/impulsohub/painel/whatsapp"
)

// WhatsappController serves the manager's connection panel. Each logged
// manager gets one connection machine, created on first visit and reaped by
// the janitor after the panel goes idle.
type WhatsappController struct {
	gw  *services.WhatsappService
	cfg config.Config
	log zerolog.Logger

	mu       sync.Mutex
	machines map[string]*panelMachine
}

// panelMachine ties a machine to the session token it was built with, so a
// re-login replaces the machine instead of driving it with a dead credential.
type panelMachine struct {
	m     *whatsapp.Machine
	token string
}

// NewWhatsappController builds the panel controller.
func NewWhatsappController(gw *services.WhatsappService, cfg config.Config, log zerolog.Logger) *WhatsappController {
	return &WhatsappController{
		gw:       gw,
		cfg:      cfg,
		log:      log.With().Str("controller", "whatsapp").Logger(),
		machines: make(map[string]*panelMachine),
	}
}

// machineFor returns the caller's machine, creating and starting one on the
// first panel visit. A session with a different token than the machine was
// built with (re-login) stops the stale machine and starts a fresh one.
func (wc *WhatsappController) machineFor(c echo.Context) (*whatsapp.Machine, bool) {
	user := utils.CurrentUser(c)
	token := utils.CurrentToken(c)
	if user == nil || token == "" {
		return nil, false
	}

	wc.mu.Lock()
	entry, ok := wc.machines[user.ID]
	var stale *whatsapp.Machine
	if ok && entry.token != token {
		stale = entry.m
		ok = false
	}
	if !ok {
		entry = &panelMachine{
			m:     whatsapp.NewMachine(wc.gw, token, wc.cfg.PollInterval, wc.log),
			token: token,
		}
		wc.machines[user.ID] = entry
	}
	wc.mu.Unlock()

	if stale != nil {
		stale.Stop()
	}
	entry.m.Touch()
	if !ok {
		entry.m.Start(c.Request().Context())
	}
	return entry.m, true
}

// PanelPage renders the connection panel with the machine's current snapshot;
// the page then follows transitions over the websocket, falling back to the
// status endpoint.
func (wc *WhatsappController) PanelPage(c echo.Context) error {
	m, ok := wc.machineFor(c)
	if !ok {
		return c.Redirect(http.StatusFound, "/login")
	}
	return c.Render(http.StatusOK, "whatsapp", echo.Map{
		"User":     utils.CurrentUser(c),
		"Snapshot": m.Snapshot(),
	})
}

// Status answers the machine's current snapshot, the polling fallback for
// clients without websocket support.
func (wc *WhatsappController) Status(c echo.Context) error {
	m, ok := wc.machineFor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Unauthorized())
	}
	return c.JSON(http.StatusOK, m.Snapshot())
}

// Connect starts or resumes a pairing and answers the resulting snapshot.
func (wc *WhatsappController) Connect(c echo.Context) error {
	m, ok := wc.machineFor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Unauthorized())
	}
	return c.JSON(http.StatusOK, m.Connect(c.Request().Context()))
}

// Cancel aborts a pairing in progress.
func (wc *WhatsappController) Cancel(c echo.Context) error {
	m, ok := wc.machineFor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Unauthorized())
	}
	return c.JSON(http.StatusOK, m.Cancel())
}

// Disconnect tears the connection down. This always lands on disconnected;
// the provider call behind it is best-effort.
func (wc *WhatsappController) Disconnect(c echo.Context) error {
	m, ok := wc.machineFor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Unauthorized())
	}
	return c.JSON(http.StatusOK, m.Disconnect(c.Request().Context()))
}

// QRImage renders the current pairing payload as a PNG. 404 when the machine
// holds no QR (not pairing, or already connected).
func (wc *WhatsappController) QRImage(c echo.Context) error {
	m, ok := wc.machineFor(c)
	if !ok {
		return c.NoContent(http.StatusUnauthorized)
	}
	snap := m.Snapshot()
	if snap.QRCode == "" {
		return c.NoContent(http.StatusNotFound)
	}
	img, err := utils.RenderQRPNG(snap.QRCode, 264)
	if err != nil {
		wc.log.Error().Err(err).Msg("failed to render QR image")
		return c.NoContent(http.StatusInternalServerError)
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, "image/png", img)
}

// Stream upgrades to a websocket and pushes snapshots until the panel closes.
func (wc *WhatsappController) Stream(c echo.Context) error {
	m, ok := wc.machineFor(c)
	if !ok {
		return c.NoContent(http.StatusUnauthorized)
	}
	return websocket.ServeStatus(c, m, wc.log)
}

// ReapIdle stops and drops machines with no panel activity for maxIdle. The
// main loop calls this periodically.
func (wc *WhatsappController) ReapIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	wc.mu.Lock()
	var stale []*whatsapp.Machine
	for id, entry := range wc.machines {
		if entry.m.IdleSince().Before(cutoff) {
			stale = append(stale, entry.m)
			delete(wc.machines, id)
		}
	}
	wc.mu.Unlock()

	for _, m := range stale {
		m.Stop()
	}
	if n := len(stale); n > 0 {
		wc.log.Info().Int("count", n).Msg("reaped idle whatsapp machines")
	}
	return len(stale)
}
