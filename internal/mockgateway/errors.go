package mockgateway

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/peekdata/datagateway-go/internal/logging"
)

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// HealthResponse is the healthcheck body
type HealthResponse struct {
	Status string `json:"status"`
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	}
	return "ERROR"
}

// ErrorHandler renders every handler error as an ErrorResponse
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		switch {
		case errors.As(err, &fe):
			code = fe.Code
			message = fe.Message
		case errors.Is(err, ErrInvalidQuery):
			code = fiber.StatusBadRequest
			message = err.Error()
		}

		ctx := logging.WithLogger(c.UserContext(), logger)
		fields := []interface{}{
			"path", c.Path(),
			"method", c.Method(),
			"status", code,
			"error", err,
		}
		if code >= fiber.StatusInternalServerError {
			logging.ErrorCtx(ctx, "Request error", fields...)
		} else {
			logging.WarnCtx(ctx, "Request rejected", fields...)
		}

		return c.Status(code).JSON(ErrorResponse{
			Error: ErrorDetail{
				Code:    errorCode(code),
				Message: message,
				Path:    c.Path(),
			},
		})
	}
}
