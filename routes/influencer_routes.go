package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/impulsohub/painel/controllers"
	"github.com/impulsohub/painel/middleware"
	"github.com/impulsohub/painel/models"
)

// RegisterInfluencerRoutes sets up the influencer area: own dashboard and its
// chart data.
func RegisterInfluencerRoutes(e *echo.Echo, dashboardController *controllers.DashboardController) {
	influencer := e.Group("/influencer")
	influencer.Use(middleware.RequireRole(models.RoleInfluencer))

	influencer.GET("/dashboard", dashboardController.InfluencerDashboard)
	influencer.GET("/data/sales-chart", dashboardController.SalesChart)
}
