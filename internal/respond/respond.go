package respond

import (
	"github.com/labstack/echo/v4"
)

// Envelope is the shape every endpoint replies with, success or failure.
// Search and signin carry their own inherited shapes and are the only
// exceptions.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func Success(c echo.Context, code int, data any, message string) error {
	if message == "" {
		message = "Success"
	}
	return c.JSON(code, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Error(c echo.Context, code int, message string) error {
	return c.JSON(code, Envelope{
		Success: false,
		Message: message,
	})
}
