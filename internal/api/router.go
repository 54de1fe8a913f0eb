package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tableserve/pos-portal/internal/api/handler"
	"github.com/tableserve/pos-portal/internal/api/middleware"
	"github.com/tableserve/pos-portal/internal/core/domain"
	"github.com/tableserve/pos-portal/internal/core/ports"
)

// RouterDeps carries the constructed services the router wires to routes.
// Service construction stays in main so the heartbeat dispatcher lifecycle
// can be tied to the process context.
type RouterDeps struct {
	Portal    ports.PortalService
	Devices   ports.DeviceService
	Auth      ports.AuthService
	Queue     handler.HeartbeatQueue
	DB        *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("pos"))

	authMiddleware := middleware.Auth(deps.JWTSecret)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Portal track: device-scoped catalog for POS terminals ---
	portalHandler := handler.NewPortalHandler(deps.Portal)
	menu := e.Group("/v1/menu", authMiddleware,
		middleware.RBAC(string(domain.RoleCashier), string(domain.RoleBranchManager)))
	menu.GET("", portalHandler.GetMenu)
	menu.GET("/categories", portalHandler.GetCategories)
	menu.GET("/products", portalHandler.GetProducts)
	menu.GET("/devices", portalHandler.GetDevices)
	menu.GET("/search", portalHandler.Search)

	// --- Admin track: device lifecycle and liveness ---
	deviceHandler := handler.NewDeviceHandler(deps.Devices, deps.Queue)
	devices := e.Group("/v1/devices", authMiddleware,
		middleware.RBAC(string(domain.RolePlatformOwner), string(domain.RoleTenantAdmin)))
	devices.GET("", deviceHandler.List)
	devices.POST("/heartbeats", deviceHandler.BatchHeartbeats)
	devices.POST("/:id/activate", deviceHandler.Activate)
	devices.POST("/:id/deactivate", deviceHandler.Deactivate)
	devices.POST("/:id/heartbeat", deviceHandler.Heartbeat)
	devices.POST("/:id/maintenance", deviceHandler.Maintenance)
	devices.POST("/:id/suspend", deviceHandler.Suspend)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness)  // readiness – are dependencies up?

	// --- Operational surface ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
