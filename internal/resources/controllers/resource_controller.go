package controllers

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/hospital-dashboard/internal/common/apperror"
	"github.com/c14220110/hospital-dashboard/internal/common/request"
	"github.com/c14220110/hospital-dashboard/internal/common/response"
	"github.com/c14220110/hospital-dashboard/internal/resources/services"
)

// Publisher receives a notification after every successful write.
type Publisher interface {
	Publish(resource, action string, id int64)
}

type ResourceController struct {
	Service   *services.TableService
	Publisher Publisher
	// DebugSQL adds the rendered query to list and filter responses.
	DebugSQL bool
}

func NewResourceController(service *services.TableService, publisher Publisher, debugSQL bool) *ResourceController {
	return &ResourceController{Service: service, Publisher: publisher, DebugSQL: debugSQL}
}

// Handle dispatches on the action parameter.
func (rc *ResourceController) Handle(c echo.Context) error {
	req, err := request.Read(c)
	if err != nil {
		return response.FailWithStatus(c, http.StatusBadRequest, apperror.Validation("Invalid JSON payload"), nil)
	}
	c.Set("action", req.Action)

	switch req.Action {
	case "list":
		return rc.list(c, nil)
	case "filter":
		return rc.list(c, req.Params)
	case "get":
		return rc.get(c, req)
	case "create":
		return rc.create(c, req)
	case "edit", "update":
		return rc.edit(c, req)
	case "delete":
		return rc.delete(c, req)
	case "get_filter_options":
		return rc.filterOptions(c)
	case "export_csv":
		return rc.exportCSV(c, req)
	case "export_xlsx":
		return rc.exportXLSX(c, req)
	case "":
		return response.Fail(c, apperror.Validation("Action is required"))
	default:
		return response.Fail(c, apperror.Validation("Invalid action: %s", req.Action))
	}
}

func (rc *ResourceController) list(c echo.Context, params map[string]string) error {
	res, err := rc.Service.Filter(c.Request().Context(), params)
	if err != nil {
		return rc.fail(c, err, res.Query)
	}

	body := echo.Map{
		rc.Service.Schema.EnvelopeKey(): res.Rows,
		"stats":                         echo.Map{"total": len(res.Rows)},
	}
	if rc.DebugSQL {
		body["sql_code"] = res.Query.Debug()
	}
	return response.OK(c, body)
}

func (rc *ResourceController) fail(c echo.Context, err error, q services.Query) error {
	if rc.DebugSQL && q.SQL != "" {
		return response.FailWithStatus(c, http.StatusOK, err, echo.Map{"sql_code": q.Debug()})
	}
	return response.Fail(c, err)
}

func (rc *ResourceController) get(c echo.Context, req request.ActionRequest) error {
	row, err := rc.Service.Get(c.Request().Context(), req.ID())
	if err != nil {
		return response.Fail(c, err)
	}
	return response.OK(c, echo.Map{"data": row})
}

func (rc *ResourceController) create(c echo.Context, req request.ActionRequest) error {
	id, err := rc.Service.Create(c.Request().Context(), req.Input)
	if err != nil {
		return response.Fail(c, err)
	}
	rc.publish("create", id)
	return response.OK(c, echo.Map{
		"message": rc.Service.Schema.Entity + " created successfully",
		"id":      id,
	})
}

func (rc *ResourceController) edit(c echo.Context, req request.ActionRequest) error {
	id := req.ID()
	delete(req.Input, "id")
	if err := rc.Service.Edit(c.Request().Context(), id, req.Input); err != nil {
		return response.Fail(c, err)
	}
	rc.publish("edit", id)
	return response.OK(c, echo.Map{
		"message": rc.Service.Schema.Entity + " updated successfully",
		"id":      id,
	})
}

func (rc *ResourceController) delete(c echo.Context, req request.ActionRequest) error {
	id := req.ID()
	if err := rc.Service.Delete(c.Request().Context(), id); err != nil {
		return response.Fail(c, err)
	}
	rc.publish("delete", id)
	return response.OK(c, echo.Map{
		"message": rc.Service.Schema.Entity + " deleted successfully",
		"id":      id,
	})
}

func (rc *ResourceController) filterOptions(c echo.Context) error {
	opts, err := rc.Service.FilterOptions(c.Request().Context())
	if err != nil {
		return response.Fail(c, err)
	}
	return response.OK(c, echo.Map{"data": opts})
}

func (rc *ResourceController) exportCSV(c echo.Context, req request.ActionRequest) error {
	res, err := rc.Service.Filter(c.Request().Context(), req.Params)
	if err != nil {
		return response.Fail(c, err)
	}

	var buf bytes.Buffer
	if err := services.WriteCSV(&buf, rc.Service.Schema, res.Rows); err != nil {
		return response.Fail(c, apperror.Store("Failed to export", err))
	}
	rc.attachment(c, "csv")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (rc *ResourceController) exportXLSX(c echo.Context, req request.ActionRequest) error {
	res, err := rc.Service.Filter(c.Request().Context(), req.Params)
	if err != nil {
		return response.Fail(c, err)
	}

	data, err := services.XLSX(rc.Service.Schema, res.Rows)
	if err != nil {
		return response.Fail(c, apperror.Store("Failed to export", err))
	}
	rc.attachment(c, "xlsx")
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (rc *ResourceController) attachment(c echo.Context, ext string) {
	name := rc.Service.Schema.ExportFilename(ext, time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
}

func (rc *ResourceController) publish(action string, id int64) {
	if rc.Publisher == nil {
		return
	}
	rc.Publisher.Publish(strings.ReplaceAll(rc.Service.Schema.Resource, "-", "_"), action, id)
}
