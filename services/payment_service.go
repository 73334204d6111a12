// services/payment_service.go
package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/impulsohub/painel/models"
)

// PaymentService is the gateway for /api/commissions/payments*.
type PaymentService struct {
	api *Client
	log zerolog.Logger
}

// NewPaymentService builds the payments gateway.
func NewPaymentService(api *Client, log zerolog.Logger) *PaymentService {
	return &PaymentService{api: api, log: log.With().Str("service", "payments").Logger()}
}

// GetPayments fetches the payment listing with filters and paging.
func (s *PaymentService) GetPayments(ctx context.Context, token string, filters models.PaymentFilters) models.PaymentsResult {
	if token == "" {
		return models.PaymentsResult{Result: models.Unauthorized()}
	}
	q := url.Values{}
	if filters.Status != "" {
		q.Set("status", filters.Status)
	}
	if filters.StartDate != "" {
		q.Set("startDate", filters.StartDate)
	}
	if filters.EndDate != "" {
		q.Set("endDate", filters.EndDate)
	}
	if filters.UserID != "" {
		q.Set("userId", filters.UserID)
	}
	if filters.Page > 0 {
		q.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.Limit > 0 {
		q.Set("limit", strconv.Itoa(filters.Limit))
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/commissions/payments", token, q, nil)
	if err != nil {
		return models.PaymentsResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.PaymentsResult{Result: models.Fail(MessageFrom(body, "Falha ao obter pagamentos"))}
	}
	doc := gjson.ParseBytes(body)
	return models.PaymentsResult{
		Result:   models.Ok(""),
		Payments: json.RawMessage(doc.Get("payments").Raw),
		Pagination: models.Pagination{
			Page:  int(doc.Get("pagination.page").Int()),
			Pages: int(doc.Get("pagination.pages").Int()),
			Total: int(doc.Get("pagination.total").Int()),
		},
	}
}

// GetPayment fetches one payment by id.
func (s *PaymentService) GetPayment(ctx context.Context, token, id string) models.PaymentResult {
	if token == "" {
		return models.PaymentResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/commissions/payments/"+id, token, nil, nil)
	if err != nil {
		return models.PaymentResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.PaymentResult{Result: models.Fail(MessageFrom(body, "Falha ao obter detalhes do pagamento"))}
	}
	return models.PaymentResult{Result: models.Ok(""), Payment: body}
}

// GetPendingSummary fetches the pending-payments summary used by the admin
// dashboard cards.
func (s *PaymentService) GetPendingSummary(ctx context.Context, token string) models.RawResult {
	if token == "" {
		return models.RawResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/commissions/payments/pending-summary", token, nil, nil)
	if err != nil {
		return models.RawResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.RawResult{Result: models.Fail(MessageFrom(body, "Falha ao obter resumo de pagamentos"))}
	}
	return models.RawResult{Result: models.Ok(""), Data: body}
}

// UpdatePayment updates arbitrary payment fields (notes, payment data).
func (s *PaymentService) UpdatePayment(ctx context.Context, token, id string, fields map[string]interface{}) models.PaymentResult {
	if token == "" {
		return models.PaymentResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodPut, "/api/commissions/payments/"+id, token, nil, fields)
	if err != nil {
		return models.PaymentResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.PaymentResult{Result: models.Fail(MessageFrom(body, "Falha ao atualizar pagamento"))}
	}
	return models.PaymentResult{Result: models.Ok(""), Payment: body}
}

// UpdateStatus moves one payment between pending/paid/failed.
func (s *PaymentService) UpdateStatus(ctx context.Context, token, id, paymentStatus, transactionID string) models.PaymentResult {
	if token == "" {
		return models.PaymentResult{Result: models.Unauthorized()}
	}
	payload := map[string]string{"status": paymentStatus}
	if transactionID != "" {
		payload["transactionId"] = transactionID
	}
	status, body, err := s.api.Do(ctx, http.MethodPut, "/api/commissions/payments/"+id+"/status", token, nil, payload)
	if err != nil {
		return models.PaymentResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.PaymentResult{Result: models.Fail(MessageFrom(body, "Falha ao atualizar status do pagamento"))}
	}
	return models.PaymentResult{Result: models.Ok(""), Payment: body}
}

// MarkPaid marks a batch of payments as paid in one call.
func (s *PaymentService) MarkPaid(ctx context.Context, token string, ids []string, transactionID string) models.RawResult {
	if token == "" {
		return models.RawResult{Result: models.Unauthorized()}
	}
	payload := map[string]interface{}{"paymentIds": ids, "status": "paid"}
	if transactionID != "" {
		payload["transactionId"] = transactionID
	}
	status, body, err := s.api.Do(ctx, http.MethodPut, "/api/commissions/payments/batch-update", token, nil, payload)
	if err != nil {
		return models.RawResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.RawResult{Result: models.Fail(MessageFrom(body, "Falha ao marcar pagamentos como pagos"))}
	}
	return models.RawResult{Result: models.Ok(""), Data: body}
}

// GenerateReport asks the backend for a payments report and returns its URL.
func (s *PaymentService) GenerateReport(ctx context.Context, token, startDate, endDate, paymentStatus string) models.ReportResult {
	if token == "" {
		return models.ReportResult{Result: models.Unauthorized()}
	}
	payload := map[string]string{"startDate": startDate, "endDate": endDate}
	if paymentStatus != "" {
		payload["status"] = paymentStatus
	}
	status, body, err := s.api.Do(ctx, http.MethodPost, "/api/commissions/payments/report", token, nil, payload)
	if err != nil {
		return models.ReportResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.ReportResult{Result: models.Fail(MessageFrom(body, "Falha ao gerar relatório"))}
	}
	return models.ReportResult{Result: models.Ok(""), ReportURL: gjson.GetBytes(body, "reportUrl").String()}
}
