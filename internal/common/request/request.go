// Package request reads the action protocol shared by every API endpoint.
package request

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// ActionRequest is one call to an action endpoint. GET requests carry
// everything in the query string, POST requests in a JSON body; query values
// fill in whatever the body leaves out.
type ActionRequest struct {
	Action string
	Params map[string]string
	Input  map[string]interface{}
}

// ErrMalformedBody is returned when a POST body cannot be decoded.
var ErrMalformedBody = errors.New("malformed request body")

// Read decodes the action, params and input of the request.
func Read(c echo.Context) (ActionRequest, error) {
	req := ActionRequest{
		Params: map[string]string{},
		Input:  map[string]interface{}{},
	}

	if c.Request().Method == http.MethodPost && c.Request().ContentLength != 0 {
		if err := (&echo.DefaultBinder{}).BindBody(c, &req.Input); err != nil {
			return req, ErrMalformedBody
		}
	}
	for k, v := range req.Input {
		if s, ok := flatten(v); ok {
			req.Params[k] = s
		}
	}
	for k, vs := range c.QueryParams() {
		if _, ok := req.Params[k]; ok || len(vs) == 0 {
			continue
		}
		req.Params[k] = vs[0]
		if _, ok := req.Input[k]; !ok {
			req.Input[k] = vs[0]
		}
	}

	req.Action = strings.TrimSpace(req.Params["action"])
	delete(req.Params, "action")
	delete(req.Input, "action")
	return req, nil
}

// String returns the trimmed param value.
func (r ActionRequest) String(key string) string {
	return strings.TrimSpace(r.Params[key])
}

// Raw returns the untrimmed param value, for secrets such as passwords.
func (r ActionRequest) Raw(key string) string {
	return r.Params[key]
}

// ID returns the id param, or zero when it is absent or not a number.
func (r ActionRequest) ID() int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(r.Params["id"]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func flatten(v interface{}) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}
