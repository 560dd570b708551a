package routes

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/hospital-dashboard/internal/resources/controllers"
	"github.com/c14220110/hospital-dashboard/internal/resources/services"
)

// RegisterResourceRoutes mounts one action endpoint per resource schema under
// api, e.g. GET/POST /api/patients.
func RegisterResourceRoutes(api *echo.Group, db *sql.DB, pub controllers.Publisher, debugSQL bool, guard echo.MiddlewareFunc) {
	for _, schema := range services.All() {
		rc := controllers.NewResourceController(services.NewTableService(db, schema), pub, debugSQL)
		path := "/" + schema.Resource
		api.GET(path, rc.Handle, guard)
		api.POST(path, rc.Handle, guard)
	}
}
