// services/whatsapp_service.go
package services

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/impulsohub/painel/models"
)

// WhatsappService is the gateway for /api/whatsapp/* plus the one direct
// call this system ever makes to the third-party messaging provider: the
// best-effort instance disconnect.
type WhatsappService struct {
	api         *Client
	providerURL string
	http        *http.Client
	log         zerolog.Logger
}

// NewWhatsappService builds the messaging gateway. providerURL is the
// third-party instance API base (no trailing slash).
func NewWhatsappService(api *Client, providerURL string, log zerolog.Logger) *WhatsappService {
	return &WhatsappService{
		api:         api,
		providerURL: providerURL,
		http:        &http.Client{Timeout: 15 * time.Second},
		log:         log.With().Str("service", "whatsapp").Logger(),
	}
}

// Status is the cheap local check: does the logged user hold an instance
// credential, and which one.
func (s *WhatsappService) Status(ctx context.Context, token string) models.WhatsappStatus {
	if token == "" {
		return models.WhatsappStatus{Result: models.Fail("Não autorizado")}
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/whatsapp/status", token, nil, nil)
	if err != nil {
		return models.WhatsappStatus{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.WhatsappStatus{Result: models.Fail(MessageFrom(body, "Falha ao buscar status"))}
	}
	doc := gjson.ParseBytes(body)
	return models.WhatsappStatus{
		Result:   models.Ok(""),
		HasToken: doc.Get("hasToken").Bool(),
		Token:    doc.Get("token").String(),
	}
}

// Initiate provisions a fresh instance for a user with no credential and
// returns the first QR payload.
func (s *WhatsappService) Initiate(ctx context.Context, token string) models.WhatsappConnection {
	return s.connection(ctx, token, "/api/whatsapp/initiate", "Falha ao iniciar conexão")
}

// Connect asks for a new QR payload on an existing instance.
func (s *WhatsappService) Connect(ctx context.Context, token string) models.WhatsappConnection {
	return s.connection(ctx, token, "/api/whatsapp/connect", "Falha ao obter QR code para reconexão")
}

func (s *WhatsappService) connection(ctx context.Context, token, path, fallback string) models.WhatsappConnection {
	if token == "" {
		return models.WhatsappConnection{Result: models.Fail("Não autorizado")}
	}
	status, body, err := s.api.Do(ctx, http.MethodPost, path, token, nil, nil)
	if err != nil {
		return models.WhatsappConnection{Result: models.ConnectionError()}
	}
	doc := gjson.ParseBytes(body)
	if status >= 400 || (doc.Get("success").Exists() && !doc.Get("success").Bool()) {
		return models.WhatsappConnection{Result: models.Fail(MessageFrom(body, fallback))}
	}
	return models.WhatsappConnection{
		Result:   models.Ok(doc.Get("message").String()),
		HasToken: doc.Get("hasToken").Bool(),
		Token:    doc.Get("token").String(),
		QRCode:   doc.Get("qrCode").String(),
	}
}

// DetailedStatus is the live provider-sourced check the polling loop relies
// on. A refreshed QR payload may come back while the session is pairing.
func (s *WhatsappService) DetailedStatus(ctx context.Context, token string) models.WhatsappDetailedStatus {
	if token == "" {
		return models.WhatsappDetailedStatus{Result: models.Fail("Não autorizado")}
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/whatsapp/detailed-status", token, nil, nil)
	if err != nil {
		return models.WhatsappDetailedStatus{Result: models.ConnectionError()}
	}
	doc := gjson.ParseBytes(body)
	if status >= 400 || (doc.Get("success").Exists() && !doc.Get("success").Bool()) {
		return models.WhatsappDetailedStatus{Result: models.Fail(MessageFrom(body, "Falha ao buscar status detalhado"))}
	}
	return models.WhatsappDetailedStatus{
		Result:   models.Ok(""),
		Status:   doc.Get("status").String(),
		LoggedIn: doc.Get("loggedIn").Bool(),
		QRCode:   doc.Get("qrCode").String(),
	}
}

// DisconnectInstance tears the instance down: a direct call to the provider
// with the instance credential, then a backend status refresh. Both legs are
// best-effort: whatever happens, the caller gets success, so a flaky
// provider can never trap the panel in a stuck state.
func (s *WhatsappService) DisconnectInstance(ctx context.Context, token, instanceToken string) models.Result {
	if instanceToken == "" {
		return models.Ok("Não há instância WhatsApp para desconectar")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.providerURL+"/instance/disconnect", nil)
	if err == nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("token", instanceToken)
		if resp, err := s.http.Do(req); err != nil {
			s.log.Warn().Err(err).Msg("provider disconnect failed, proceeding anyway")
		} else {
			resp.Body.Close()
			s.log.Debug().Int("status", resp.StatusCode).Msg("provider disconnect")
		}
	}

	// Nudge the backend so it re-reads the instance state. Outcome ignored.
	if _, _, err := s.api.Do(ctx, http.MethodGet, "/api/whatsapp/status", token, nil, nil); err != nil {
		s.log.Warn().Err(err).Msg("status refresh after disconnect failed")
	}

	return models.Ok("Instância WhatsApp desconectada com sucesso")
}
