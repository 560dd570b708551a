package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/hospital-dashboard/internal/overview/controllers"
)

func RegisterOverviewRoutes(api *echo.Group, oc *controllers.OverviewController, guard echo.MiddlewareFunc) {
	api.GET("/overview", oc.GetOverview, guard)
}
