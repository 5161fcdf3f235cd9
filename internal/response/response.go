package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the uniform response body used by every route.
type Envelope struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func OK(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, Envelope{Success: true, Code: code, Message: message, Data: data})
}

func Error(c echo.Context, code int, message string) error {
	return c.JSON(code, Envelope{Success: false, Code: code, Message: message})
}

// HTTPErrorHandler renders echo.HTTPError values (middleware
// rejections, bind failures, unknown routes) through the envelope so
// error bodies have the same shape as handler responses.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = Error(c, code, message)
}
