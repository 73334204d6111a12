package main

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/impulsohub/painel/config"
	"github.com/impulsohub/painel/controllers"
	"github.com/impulsohub/painel/middleware"
	"github.com/impulsohub/painel/routes"
	"github.com/impulsohub/painel/services"
	"github.com/impulsohub/painel/utils"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// machineMaxIdle is how long a connection machine survives without panel
// activity before the janitor reaps it.
const machineMaxIdle = 30 * time.Minute

func main() {
	// Load .env file
	envErr := godotenv.Load()

	cfg := config.Load()
	log := cfg.NewLogger()
	if envErr != nil {
		log.Warn().Msg(".env file not found, using environment")
	}

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true

	// Initialize custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	renderer, err := utils.NewRenderer("views/*.html")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse view templates")
	}
	e.Renderer = renderer

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{},
		AllowInlineJS:  !cfg.IsProduction(),
	}))
	e.Use(middleware.SessionGuard())

	e.Static("/static", "static")

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "healthy"})
	})

	// Gateway client and services
	api := services.NewClient(cfg.APIURL, log)
	authService := services.NewAuthService(api, log)
	userService := services.NewUserService(api, log)
	commissionService := services.NewCommissionService(api, log)
	paymentService := services.NewPaymentService(api, log)
	managerService := services.NewManagerService(api, log)
	couponService := services.NewCouponService(api, log)
	dashboardService := services.NewDashboardService(api, log)
	whatsappService := services.NewWhatsappService(api, cfg.WhatsappProviderURL, log)

	// Controllers
	authController := controllers.NewAuthController(authService, cfg, log)
	userController := controllers.NewUserController(userService, authService, cfg, log)
	commissionController := controllers.NewCommissionController(commissionService, log)
	paymentController := controllers.NewPaymentController(paymentService, log)
	managerController := controllers.NewManagerController(managerService, couponService, log)
	dashboardController := controllers.NewDashboardController(dashboardService, managerService, log)
	whatsappController := controllers.NewWhatsappController(whatsappService, cfg, log)

	// Routes
	routes.RegisterAuthRoutes(e, authController)
	routes.RegisterAdminRoutes(e, dashboardController, userController, commissionController, paymentController)
	routes.RegisterManagerRoutes(e, dashboardController, managerController, whatsappController)
	routes.RegisterInfluencerRoutes(e, dashboardController)
	routes.SetupRoutes(e, userController)

	// Janitor: reap connection machines whose panels went away.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			whatsappController.ReapIdle(machineMaxIdle)
		}
	}()

	log.Info().Str("port", cfg.Port).Str("api", cfg.APIURL).Msg("panel listening")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
