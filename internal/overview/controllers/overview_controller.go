package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/hospital-dashboard/internal/common/response"
	"github.com/c14220110/hospital-dashboard/internal/overview/services"
)

type OverviewController struct {
	Service *services.OverviewService
}

func NewOverviewController(svc *services.OverviewService) *OverviewController {
	return &OverviewController{Service: svc}
}

// GetOverview handles GET /api/overview.
func (oc *OverviewController) GetOverview(c echo.Context) error {
	ov, err := oc.Service.Overview(c.Request().Context())
	if err != nil {
		return response.FailWithStatus(c, http.StatusServiceUnavailable, err, nil)
	}

	body := echo.Map{
		"stats":        ov.Stats,
		"generated_at": ov.GeneratedAt,
	}
	if ov.Demo {
		body["demo"] = true
	}
	return response.OK(c, body)
}
