package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/impulsohub/painel/controllers"
	"github.com/impulsohub/painel/middleware"
	"github.com/impulsohub/painel/models"
)

// RegisterAdminRoutes sets up the admin area: dashboards, user management,
// commission tiers, sales and payments.
func RegisterAdminRoutes(
	e *echo.Echo,
	dashboardController *controllers.DashboardController,
	userController *controllers.UserController,
	commissionController *controllers.CommissionController,
	paymentController *controllers.PaymentController,
) {
	admin := e.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))

	// Pages
	admin.GET("/dashboard", dashboardController.AdminDashboard)
	admin.GET("/users", userController.UsersPage)
	admin.GET("/commissions", commissionController.CommissionsPage)
	admin.GET("/sales", commissionController.SalesPage)
	admin.GET("/payments", paymentController.PaymentsPage)
	admin.GET("/performance", dashboardController.PerformancePage)

	// User management
	admin.POST("/users", userController.CreateUser)
	admin.PUT("/users/:id", userController.UpdateUser)
	admin.DELETE("/users/:id", userController.DeleteUser)
	admin.PUT("/users/:id/deactivate", userController.DeactivateUser)

	// Commission tiers
	admin.GET("/commissions/tiers", commissionController.GetTiers)
	admin.POST("/commissions/tiers/edit", commissionController.EditTiers)
	admin.POST("/commissions/tiers/save", commissionController.SaveTiers)
	admin.POST("/commissions/process", commissionController.ProcessCommissions)
	admin.POST("/commissions/generate-payments", commissionController.GeneratePayments)

	// Payments
	admin.GET("/payments/:id", paymentController.GetPayment)
	admin.PUT("/payments/:id", paymentController.UpdatePayment)
	admin.PUT("/payments/:id/status", paymentController.UpdateStatus)
	admin.POST("/payments/mark-paid", paymentController.MarkPaid)
	admin.POST("/payments/report", paymentController.GenerateReport)

	// Dashboard data
	admin.GET("/data/sales-chart", dashboardController.SalesChart)
	admin.GET("/data/influencer-ranking", dashboardController.InfluencerRanking)
	admin.GET("/data/manager-ranking", dashboardController.ManagerRanking)
	admin.GET("/data/performance-overview", dashboardController.PerformanceOverview)
	admin.GET("/data/performance-timeline", dashboardController.PerformanceTimeline)
	admin.GET("/data/pending-commissions", dashboardController.PendingCommissions)
}
