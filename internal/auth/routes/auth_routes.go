package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/hospital-dashboard/internal/auth/controllers"
)

func RegisterAuthRoutes(api *echo.Group, ac *controllers.AuthController) {
	auth := api.Group("/auth")
	auth.GET("", ac.Handle)
	auth.POST("", ac.Handle)
}
