// controllers/commission_controller.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/impulsohub/painel/models"
	"github.com/impulsohub/painel/services"
	"github.com/impulsohub/painel/tiers"
	"github.com/impulsohub/painel/utils"
)

// CommissionController serves the admin commission screens: the tier editor
// per partition, the sales listing and the processing triggers.
type CommissionController struct {
	commissions *services.CommissionService
	log         zerolog.Logger

	mu     sync.Mutex
	saving map[string]bool // userID+partition with a bulk save outstanding
}

// NewCommissionController builds the commissions controller.
func NewCommissionController(commissions *services.CommissionService, log zerolog.Logger) *CommissionController {
	return &CommissionController{
		commissions: commissions,
		log:         log.With().Str("controller", "commissions").Logger(),
		saving:      make(map[string]bool),
	}
}

// tierStore adapts the commissions gateway to the editor's Store, carrying
// the caller's bearer token.
type tierStore struct {
	svc   *services.CommissionService
	token string
}

func (s tierStore) Load(ctx context.Context, partition string) ([]models.CommissionTier, error) {
	result := s.svc.GetTiers(ctx, s.token, partition, nil)
	if !result.Success {
		return nil, errors.New(result.Message)
	}
	return result.Tiers, nil
}

func (s tierStore) Replace(ctx context.Context, partition string, list []models.CommissionTier) ([]models.CommissionTier, error) {
	result := s.svc.SaveTiersBulk(ctx, s.token, partition, list)
	if !result.Success {
		return nil, errors.New(result.Message)
	}
	return result.Tiers, nil
}

func partitionOf(c echo.Context) (string, error) {
	p := c.QueryParam("appliesTo")
	if p == "" {
		p = c.FormValue("appliesTo")
	}
	switch p {
	case models.AppliesToInfluencer, models.AppliesToManager:
		return p, nil
	case "":
		return models.AppliesToInfluencer, nil
	default:
		return "", errors.New("Partição de comissão desconhecida")
	}
}

// CommissionsPage renders the tier editor with the influencer partition
// loaded; the page swaps partitions through the JSON endpoints.
func (cc *CommissionController) CommissionsPage(c echo.Context) error {
	partition, err := partitionOf(c)
	if err != nil {
		partition = models.AppliesToInfluencer
	}
	editor := tiers.NewEditor(partition, tierStore{cc.commissions, utils.CurrentToken(c)})
	loadErr := editor.Load(c.Request().Context())

	data := echo.Map{
		"User":      utils.CurrentUser(c),
		"Partition": partition,
		"Tiers":     editor.Tiers(),
	}
	if loadErr != nil {
		data["Error"] = loadErr.Error()
	}
	return c.Render(http.StatusOK, "commissions", data)
}

// GetTiers answers the current tier list of a partition as JSON.
func (cc *CommissionController) GetTiers(c echo.Context) error {
	partition, err := partitionOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail(err.Error()))
	}
	result := cc.commissions.GetTiers(c.Request().Context(), utils.CurrentToken(c), partition, nil)
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusOK, result)
}

// tierOpRequest is one editing step posted by the page: the whole working
// list plus the operation to apply. The server owns the invariant logic; the
// page only renders what comes back.
type tierOpRequest struct {
	AppliesTo string                  `json:"appliesTo"`
	Tiers     []models.CommissionTier `json:"tiers"`
	Op        string                  `json:"op"`
	Index     int                     `json:"index"`
	Field     string                  `json:"field"`
	Value     string                  `json:"value"`
}

// EditTiers applies one editor operation (add/remove/edit) to the posted
// working list and answers the recomputed list. Rejections answer 422 with
// the user-facing message and the unchanged list.
func (cc *CommissionController) EditTiers(c echo.Context) error {
	var req tierOpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Dados inválidos"))
	}
	partition := req.AppliesTo
	if partition != models.AppliesToInfluencer && partition != models.AppliesToManager {
		return c.JSON(http.StatusBadRequest, models.Fail("Partição de comissão desconhecida"))
	}

	editor := tiers.NewEditorWith(partition, tierStore{cc.commissions, utils.CurrentToken(c)}, req.Tiers)

	var opErr error
	switch req.Op {
	case "add":
		opErr = editor.AddInput(req.Value)
	case "remove":
		opErr = editor.Remove(req.Index)
	case "edit":
		opErr = cc.editField(editor, req)
	default:
		return c.JSON(http.StatusBadRequest, models.Fail("Operação desconhecida"))
	}

	if opErr != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"success": false,
			"message": opErr.Error(),
			"tiers":   editor.Tiers(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "tiers": editor.Tiers()})
}

func (cc *CommissionController) editField(editor *tiers.Editor, req tierOpRequest) error {
	value, err := parseDecimal(req.Value)
	if err != nil {
		return errors.New("Deve ser número")
	}
	switch req.Field {
	case "commissionPercentage":
		return editor.SetPercentage(req.Index, value)
	case "minSalesValue":
		return editor.SetMin(req.Index, value)
	case "maxSalesValue":
		return editor.SetMax(req.Index, value)
	default:
		return errors.New("Campo desconhecido")
	}
}

// SaveTiers validates the posted list and bulk-replaces the partition. A
// second save for the same user and partition while one is outstanding is
// rejected instead of racing; the last response can then never silently win.
func (cc *CommissionController) SaveTiers(c echo.Context) error {
	var req tierOpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Dados inválidos"))
	}
	partition := req.AppliesTo
	if partition != models.AppliesToInfluencer && partition != models.AppliesToManager {
		return c.JSON(http.StatusBadRequest, models.Fail("Partição de comissão desconhecida"))
	}

	key := partition
	if user := utils.CurrentUser(c); user != nil {
		key = user.ID + ":" + partition
	}
	cc.mu.Lock()
	if cc.saving[key] {
		cc.mu.Unlock()
		return c.JSON(http.StatusConflict, models.Fail(tiers.ErrSubmitInFlight.Error()))
	}
	cc.saving[key] = true
	cc.mu.Unlock()
	defer func() {
		cc.mu.Lock()
		delete(cc.saving, key)
		cc.mu.Unlock()
	}()

	editor := tiers.NewEditorWith(partition, tierStore{cc.commissions, utils.CurrentToken(c)}, req.Tiers)
	if err := editor.Submit(c.Request().Context()); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, models.Fail(err.Error()))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "tiers": editor.Tiers()})
}

// parseDecimal accepts both "1234.56" and the pt-BR "1234,56" the page's
// number inputs can produce.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}

// SalesPage renders the sales listing with filters.
func (cc *CommissionController) SalesPage(c echo.Context) error {
	filters := models.SaleFilters{
		StartDate:    c.QueryParam("startDate"),
		EndDate:      c.QueryParam("endDate"),
		InfluencerID: c.QueryParam("influencerId"),
		ManagerID:    c.QueryParam("managerId"),
		Page:         atoiOrZero(c.QueryParam("page")),
	}
	result := cc.commissions.GetSales(c.Request().Context(), utils.CurrentToken(c), filters)

	return c.Render(http.StatusOK, "sales", echo.Map{
		"User":       utils.CurrentUser(c),
		"Sales":      string(result.Sales),
		"Pagination": result.Pagination,
		"Filters":    filters,
		"Error":      errorMessage(result.Result),
	})
}

// ProcessCommissions triggers backend commission calculation.
func (cc *CommissionController) ProcessCommissions(c echo.Context) error {
	result := cc.commissions.ProcessCommissions(c.Request().Context(), utils.CurrentToken(c))
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusOK, result)
}

// GeneratePayments asks the backend to create payment records for a period.
func (cc *CommissionController) GeneratePayments(c echo.Context) error {
	startDate := c.FormValue("startDate")
	endDate := c.FormValue("endDate")
	if startDate == "" || endDate == "" {
		return c.JSON(http.StatusBadRequest, models.Fail("Período é obrigatório"))
	}
	result := cc.commissions.GeneratePayments(c.Request().Context(), utils.CurrentToken(c), startDate, endDate)
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusOK, result)
}
