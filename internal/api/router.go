package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/accesskeeper/identity-system/internal/api/handler"
	"github.com/accesskeeper/identity-system/internal/api/middleware"
	"github.com/accesskeeper/identity-system/internal/core/domain"
	"github.com/accesskeeper/identity-system/internal/core/ports"
)

// operationRoles is the statically declared mapping from operation to the
// role set allowed to invoke it. An empty set means any authenticated
// caller. requireRoles panics on an operation missing from this table, so
// the route registrations below are checked at startup.
var operationRoles = map[string][]domain.Role{
	"roles.change":           {domain.RoleSuperAdmin},
	"roles.issue_promotion":  {domain.RoleSuperAdmin},
	"roles.redeem_promotion": {},
	"roles.list_changes":     {domain.RoleSuperAdmin},
}

func requireRoles(operation string) echo.MiddlewareFunc {
	roles, ok := operationRoles[operation]
	if !ok {
		panic("api: operation " + operation + " has no declared role requirement")
	}
	return middleware.RequireRoles(roles...)
}

// Deps carries everything the router wires together.
type Deps struct {
	AuthService ports.AuthService
	RoleService ports.RoleService
	TokenIssuer ports.TokenIssuer
	Throttle    handler.Throttle
	Mongo       *mongo.Database
	Redis       *redis.Client
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("identity"))

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Throttle, deps.Logger)
	roleHandler := handler.NewRoleHandler(deps.RoleService)
	authMiddleware := middleware.Auth(deps.TokenIssuer)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)

	// --- Role authority routes (authenticated) ---
	roles := e.Group("/roles", authMiddleware)
	roles.POST("/change", roleHandler.ChangeRole, requireRoles("roles.change"))
	roles.POST("/promotion-tokens", roleHandler.IssuePromotionToken, requireRoles("roles.issue_promotion"))
	roles.POST("/promotion-tokens/redeem", roleHandler.RedeemPromotionToken, requireRoles("roles.redeem_promotion"))
	roles.GET("/changes", roleHandler.ListRoleChanges, requireRoles("roles.list_changes"))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
