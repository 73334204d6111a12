package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/impulsohub/painel/controllers"
	"github.com/impulsohub/painel/middleware"
	"github.com/impulsohub/painel/models"
)

// RegisterManagerRoutes sets up the manager area: own dashboard, influencer
// roster with coupons, and the WhatsApp connection panel.
func RegisterManagerRoutes(
	e *echo.Echo,
	dashboardController *controllers.DashboardController,
	managerController *controllers.ManagerController,
	whatsappController *controllers.WhatsappController,
) {
	manager := e.Group("/manager")
	manager.Use(middleware.RequireRole(models.RoleManager))

	// Pages
	manager.GET("/dashboard", dashboardController.ManagerDashboard)
	manager.GET("/influencers", managerController.InfluencersPage)
	manager.GET("/influencers/:id", managerController.InfluencerPage)
	manager.GET("/whatsapp", whatsappController.PanelPage)

	// Influencer roster
	manager.POST("/influencers", managerController.CreateInfluencer)
	manager.PUT("/influencers/:id", managerController.UpdateInfluencer)
	manager.DELETE("/influencers/:id", managerController.DeleteInfluencer)
	manager.PUT("/influencers/:id/notifications", managerController.SaveNotifications)

	// Coupons
	manager.GET("/coupons/availability", managerController.CheckCoupon)
	manager.POST("/coupons", managerController.CreateCoupon)
	manager.PUT("/coupons/:id/toggle", managerController.ToggleCoupon)
	manager.DELETE("/coupons/:id", managerController.DeleteCoupon)

	// Connection panel
	manager.GET("/whatsapp/status", whatsappController.Status)
	manager.POST("/whatsapp/connect", whatsappController.Connect)
	manager.POST("/whatsapp/cancel", whatsappController.Cancel)
	manager.POST("/whatsapp/disconnect", whatsappController.Disconnect)
	manager.GET("/whatsapp/qr.png", whatsappController.QRImage)
	manager.GET("/whatsapp/stream", whatsappController.Stream)

	// Dashboard data
	manager.GET("/data/sales-chart", dashboardController.SalesChart)
	manager.GET("/data/influencer-ranking", dashboardController.InfluencerRanking)
}
