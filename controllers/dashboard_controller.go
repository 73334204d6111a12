// controllers/dashboard_controller.go
package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/impulsohub/painel/models"
	"github.com/impulsohub/painel/services"
	"github.com/impulsohub/painel/utils"
)

// DashboardController serves the three role dashboards and the JSON data
// endpoints their charts poll.
type DashboardController struct {
	dashboard *services.DashboardService
	manager   *services.ManagerService
	log       zerolog.Logger
}

// NewDashboardController builds the dashboard controller.
func NewDashboardController(dashboard *services.DashboardService, manager *services.ManagerService, log zerolog.Logger) *DashboardController {
	return &DashboardController{dashboard: dashboard, manager: manager, log: log.With().Str("controller", "dashboard").Logger()}
}

// AdminDashboard renders the admin landing page with its stat cards and the
// pending-commissions summary.
func (dc *DashboardController) AdminDashboard(c echo.Context) error {
	token := utils.CurrentToken(c)
	stats := dc.dashboard.AdminStats(c.Request().Context(), token)
	pending := dc.dashboard.PendingCommissions(c.Request().Context(), token)

	return c.Render(http.StatusOK, "dashboard_admin", echo.Map{
		"User":    utils.CurrentUser(c),
		"Stats":   stats.Stats,
		"Pending": string(pending.Data),
		"Error":   errorMessage(stats.Result),
	})
}

// ManagerDashboard renders the manager landing page: own stats plus the
// period sales overview.
func (dc *DashboardController) ManagerDashboard(c echo.Context) error {
	token := utils.CurrentToken(c)
	period := c.QueryParam("period")
	if period == "" {
		period = "month"
	}
	stats := dc.dashboard.ManagerStats(c.Request().Context(), token)
	sales := dc.manager.GetSales(c.Request().Context(), token, period)

	return c.Render(http.StatusOK, "dashboard_manager", echo.Map{
		"User":   utils.CurrentUser(c),
		"Stats":  stats.Stats,
		"Sales":  string(sales.Data),
		"Period": period,
		"Error":  errorMessage(stats.Result),
	})
}

// InfluencerDashboard renders the influencer landing page.
func (dc *DashboardController) InfluencerDashboard(c echo.Context) error {
	stats := dc.dashboard.InfluencerStats(c.Request().Context(), utils.CurrentToken(c))

	return c.Render(http.StatusOK, "dashboard_influencer", echo.Map{
		"User":  utils.CurrentUser(c),
		"Stats": stats.Stats,
		"Error": errorMessage(stats.Result),
	})
}

// PerformancePage renders the performance comparison screen.
func (dc *DashboardController) PerformancePage(c echo.Context) error {
	params := performanceParams(c)
	overview := dc.dashboard.PerformanceOverview(c.Request().Context(), utils.CurrentToken(c), params)

	return c.Render(http.StatusOK, "performance", echo.Map{
		"User":     utils.CurrentUser(c),
		"Overview": string(overview.Data),
		"Params":   params,
		"Error":    errorMessage(overview.Result),
	})
}

// SalesChart answers the chart series as JSON.
func (dc *DashboardController) SalesChart(c echo.Context) error {
	period := c.QueryParam("period")
	if period == "" {
		period = "month"
	}
	result := dc.dashboard.SalesChart(c.Request().Context(), utils.CurrentToken(c), period, c.QueryParam("userId"))
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSONBlob(http.StatusOK, result.Data)
}

// InfluencerRanking answers the top-influencers list as JSON.
func (dc *DashboardController) InfluencerRanking(c echo.Context) error {
	result := dc.dashboard.InfluencerRanking(c.Request().Context(), utils.CurrentToken(c), atoiOrZero(c.QueryParam("limit")), c.QueryParam("period"))
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusOK, result)
}

// ManagerRanking answers the top-managers list as JSON.
func (dc *DashboardController) ManagerRanking(c echo.Context) error {
	result := dc.dashboard.ManagerRanking(c.Request().Context(), utils.CurrentToken(c), atoiOrZero(c.QueryParam("limit")), c.QueryParam("period"))
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusOK, result)
}

// PerformanceOverview answers the comparison aggregate as JSON.
func (dc *DashboardController) PerformanceOverview(c echo.Context) error {
	result := dc.dashboard.PerformanceOverview(c.Request().Context(), utils.CurrentToken(c), performanceParams(c))
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSONBlob(http.StatusOK, result.Data)
}

// PerformanceTimeline answers the timeline series as JSON.
func (dc *DashboardController) PerformanceTimeline(c echo.Context) error {
	result := dc.dashboard.PerformanceTimeline(c.Request().Context(), utils.CurrentToken(c), performanceParams(c))
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSONBlob(http.StatusOK, result.Data)
}

// PendingCommissions answers the pending-commissions summary as JSON.
func (dc *DashboardController) PendingCommissions(c echo.Context) error {
	result := dc.dashboard.PendingCommissions(c.Request().Context(), utils.CurrentToken(c))
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSONBlob(http.StatusOK, result.Data)
}

func performanceParams(c echo.Context) models.PerformanceParams {
	return models.PerformanceParams{
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
		UserID:    c.QueryParam("userId"),
		Role:      c.QueryParam("role"),
		Period:    c.QueryParam("period"),
	}
}
