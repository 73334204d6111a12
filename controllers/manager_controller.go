// controllers/manager_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/impulsohub/painel/models"
	"github.com/impulsohub/painel/services"
	"github.com/impulsohub/painel/utils"
)

// ManagerController serves the manager area: the influencer roster with its
// coupons and notification preferences.
type ManagerController struct {
	manager *services.ManagerService
	coupons *services.CouponService
	log     zerolog.Logger
}

// NewManagerController builds the manager controller.
func NewManagerController(manager *services.ManagerService, coupons *services.CouponService, log zerolog.Logger) *ManagerController {
	return &ManagerController{manager: manager, coupons: coupons, log: log.With().Str("controller", "manager").Logger()}
}

// InfluencersPage renders the manager's influencer roster.
func (mc *ManagerController) InfluencersPage(c echo.Context) error {
	result := mc.manager.GetMyInfluencers(c.Request().Context(), utils.CurrentToken(c))
	return c.Render(http.StatusOK, "influencers", echo.Map{
		"User":        utils.CurrentUser(c),
		"Influencers": result.Influencers,
		"Error":       errorMessage(result.Result),
	})
}

// InfluencerPage renders one influencer's detail with their coupons.
func (mc *ManagerController) InfluencerPage(c echo.Context) error {
	token := utils.CurrentToken(c)
	id := c.Param("id")

	result := mc.manager.GetInfluencer(c.Request().Context(), token, id)
	if !result.Success {
		return c.Render(http.StatusOK, "influencer_detail", echo.Map{
			"User":  utils.CurrentUser(c),
			"Error": result.Message,
		})
	}
	coupons := mc.coupons.GetInfluencerCoupons(c.Request().Context(), token, id)

	return c.Render(http.StatusOK, "influencer_detail", echo.Map{
		"User":       utils.CurrentUser(c),
		"Influencer": result.Influencer,
		"Coupons":    coupons.Coupons,
		"Error":      errorMessage(coupons.Result),
	})
}

// CreateInfluencer registers a new influencer under the logged manager.
func (mc *ManagerController) CreateInfluencer(c echo.Context) error {
	var req models.InfluencerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Dados inválidos"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Preencha nome e email do influencer"))
	}

	result := mc.manager.CreateInfluencer(c.Request().Context(), utils.CurrentToken(c), req)
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusCreated, result)
}

// UpdateInfluencer updates one of the manager's influencers.
func (mc *ManagerController) UpdateInfluencer(c echo.Context) error {
	var req models.InfluencerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Dados inválidos"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Preencha nome e email do influencer"))
	}

	result := mc.manager.UpdateInfluencer(c.Request().Context(), utils.CurrentToken(c), c.Param("id"), req)
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusOK, result)
}

// DeleteInfluencer removes one of the manager's influencers.
func (mc *ManagerController) DeleteInfluencer(c echo.Context) error {
	result := mc.manager.DeleteInfluencer(c.Request().Context(), utils.CurrentToken(c), c.Param("id"))
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result)
	}
	return c.JSON(http.StatusOK, result)
}

// CheckCoupon answers whether a coupon code is still free, for the inline
// availability hint on the create form.
func (mc *ManagerController) CheckCoupon(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, models.Fail("Informe o código do cupom"))
	}
	result := mc.manager.CheckCouponAvailability(c.Request().Context(), utils.CurrentToken(c), code)
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateCoupon registers a new coupon for one of the manager's influencers.
func (mc *ManagerController) CreateCoupon(c echo.Context) error {
	var req models.CouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Dados inválidos"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Preencha código, desconto e influencer"))
	}

	result := mc.coupons.CreateCoupon(c.Request().Context(), utils.CurrentToken(c), req)
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusCreated, result)
}

// ToggleCoupon confirms an optimistic active/inactive flip. The page flips
// the switch immediately; a failure here tells it to flip back and show the
// message.
func (mc *ManagerController) ToggleCoupon(c echo.Context) error {
	isActive, err := strconv.ParseBool(c.FormValue("isActive"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Dados inválidos"))
	}
	result := mc.coupons.SetActive(c.Request().Context(), utils.CurrentToken(c), c.Param("id"), isActive)
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusOK, result)
}

// DeleteCoupon removes a coupon.
func (mc *ManagerController) DeleteCoupon(c echo.Context) error {
	result := mc.coupons.DeleteCoupon(c.Request().Context(), utils.CurrentToken(c), c.Param("id"))
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result)
	}
	return c.JSON(http.StatusOK, result)
}

// SaveNotifications saves per-influencer notification preferences.
func (mc *ManagerController) SaveNotifications(c echo.Context) error {
	var settings models.NotificationSettings
	if err := c.Bind(&settings); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Dados inválidos"))
	}
	result := mc.manager.SaveNotificationSettings(c.Request().Context(), utils.CurrentToken(c), c.Param("id"), settings)
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result)
	}
	return c.JSON(http.StatusOK, result)
}
