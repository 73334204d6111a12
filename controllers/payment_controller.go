// controllers/payment_controller.go
package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/impulsohub/painel/models"
	"github.com/impulsohub/painel/services"
	"github.com/impulsohub/painel/utils"
)

// PaymentController serves the admin payments screen: listing, status moves,
// batch mark-as-paid and report generation.
type PaymentController struct {
	payments *services.PaymentService
	log      zerolog.Logger
}

// NewPaymentController builds the payments controller.
func NewPaymentController(payments *services.PaymentService, log zerolog.Logger) *PaymentController {
	return &PaymentController{payments: payments, log: log.With().Str("controller", "payments").Logger()}
}

// PaymentsPage renders the payments listing with filters and the pending
// summary cards.
func (pc *PaymentController) PaymentsPage(c echo.Context) error {
	token := utils.CurrentToken(c)
	filters := models.PaymentFilters{
		Status:    c.QueryParam("status"),
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
		UserID:    c.QueryParam("userId"),
		Page:      atoiOrZero(c.QueryParam("page")),
	}

	result := pc.payments.GetPayments(c.Request().Context(), token, filters)
	summary := pc.payments.GetPendingSummary(c.Request().Context(), token)

	return c.Render(http.StatusOK, "payments", echo.Map{
		"User":       utils.CurrentUser(c),
		"Payments":   string(result.Payments),
		"Pagination": result.Pagination,
		"Summary":    string(summary.Data),
		"Filters":    filters,
		"Error":      errorMessage(result.Result),
	})
}

// GetPayment answers one payment's details as JSON for the detail drawer.
func (pc *PaymentController) GetPayment(c echo.Context) error {
	result := pc.payments.GetPayment(c.Request().Context(), utils.CurrentToken(c), c.Param("id"))
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSONBlob(http.StatusOK, result.Payment)
}

// UpdatePayment updates payment fields (notes, payment data).
func (pc *PaymentController) UpdatePayment(c echo.Context) error {
	var fields map[string]interface{}
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Dados inválidos"))
	}
	delete(fields, "_id")

	result := pc.payments.UpdatePayment(c.Request().Context(), utils.CurrentToken(c), c.Param("id"), fields)
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusOK, result)
}

// UpdateStatus moves one payment between pending/paid/failed.
func (pc *PaymentController) UpdateStatus(c echo.Context) error {
	paymentStatus := c.FormValue("status")
	switch paymentStatus {
	case "pending", "paid", "failed":
	default:
		return c.JSON(http.StatusBadRequest, models.Fail("Status de pagamento inválido"))
	}

	result := pc.payments.UpdateStatus(c.Request().Context(), utils.CurrentToken(c), c.Param("id"), paymentStatus, c.FormValue("transactionId"))
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusOK, result)
}

type markPaidRequest struct {
	PaymentIDs    []string `json:"paymentIds"`
	TransactionID string   `json:"transactionId"`
}

// MarkPaid marks the selected payments as paid in one batch call.
func (pc *PaymentController) MarkPaid(c echo.Context) error {
	var req markPaidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Dados inválidos"))
	}
	if len(req.PaymentIDs) == 0 {
		return c.JSON(http.StatusBadRequest, models.Fail("Selecione ao menos um pagamento"))
	}

	result := pc.payments.MarkPaid(c.Request().Context(), utils.CurrentToken(c), req.PaymentIDs, req.TransactionID)
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusOK, result)
}

// GenerateReport asks the backend for a payments report for a period.
func (pc *PaymentController) GenerateReport(c echo.Context) error {
	startDate := c.FormValue("startDate")
	endDate := c.FormValue("endDate")
	if startDate == "" || endDate == "" {
		return c.JSON(http.StatusBadRequest, models.Fail("Período é obrigatório"))
	}

	result := pc.payments.GenerateReport(c.Request().Context(), utils.CurrentToken(c), startDate, endDate, c.FormValue("status"))
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusOK, result)
}
