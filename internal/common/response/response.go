package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/c14220110/hospital-dashboard/internal/common/apperror"
)

// OK writes {"success": true, ...fields}.
func OK(c echo.Context, fields echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(http.StatusOK, body)
}

// Fail writes {"success": false, "error": ...}. Action failures still answer
// 200; callers check the success flag.
func Fail(c echo.Context, err error) error {
	return FailWithStatus(c, http.StatusOK, err, nil)
}

// FailWithStatus is Fail with an explicit status code and extra fields.
func FailWithStatus(c echo.Context, status int, err error, extra echo.Map) error {
	kind := apperror.KindOf(err)
	if kind == apperror.KindStore || kind == apperror.KindUnknown {
		rid, _ := c.Get("request_id").(string)
		log.Error().Err(err).
			Str("request_id", rid).
			Str("path", c.Request().URL.Path).
			Msg("request failed")
	}

	body := echo.Map{
		"success": false,
		"error":   apperror.Message(err),
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(status, body)
}
