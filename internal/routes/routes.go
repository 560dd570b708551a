package routes

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/c14220110/hospital-dashboard/config"
	authControllers "github.com/c14220110/hospital-dashboard/internal/auth/controllers"
	authRoutes "github.com/c14220110/hospital-dashboard/internal/auth/routes"
	authServices "github.com/c14220110/hospital-dashboard/internal/auth/services"
	"github.com/c14220110/hospital-dashboard/internal/common/middlewares"
	"github.com/c14220110/hospital-dashboard/internal/common/session"
	overviewControllers "github.com/c14220110/hospital-dashboard/internal/overview/controllers"
	overviewRoutes "github.com/c14220110/hospital-dashboard/internal/overview/routes"
	overviewServices "github.com/c14220110/hospital-dashboard/internal/overview/services"
	resourceRoutes "github.com/c14220110/hospital-dashboard/internal/resources/routes"
	"github.com/c14220110/hospital-dashboard/ws"
)

// Deps are the long-lived objects the handlers share.
type Deps struct {
	DB       *sql.DB
	Config   *config.Config
	Sessions *session.Manager
	Hub      *ws.Hub
	Upgrader *websocket.Upgrader
}

// Init registers every route on e.
func Init(e *echo.Echo, d Deps) {
	guard := middlewares.RequireSession(d.Sessions)

	authService := authServices.NewAuthService(d.DB, d.Config.MaxLoginAttempts, d.Config.LockoutDuration)
	overviewService := overviewServices.NewOverviewService(d.DB, d.Config.OverviewDemoFallback)

	authController := authControllers.NewAuthController(authService, d.Sessions)
	overviewController := overviewControllers.NewOverviewController(overviewService)

	e.GET("/health", Health(d.DB))
	e.GET("/ws", ws.ServeWS(d.Hub, d.Upgrader), guard)

	api := e.Group("/api")
	authRoutes.RegisterAuthRoutes(api, authController)
	overviewRoutes.RegisterOverviewRoutes(api, overviewController, guard)
	resourceRoutes.RegisterResourceRoutes(api, d.DB, d.Hub, d.Config.DebugSQL, guard)
}

// Health pings the database.
func Health(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			log.Error().Err(err).Msg("health check: database ping failed")
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"success":  false,
				"status":   "unavailable",
				"database": "down",
			})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"success":  true,
			"status":   "ok",
			"database": "up",
		})
	}
}
