package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// AppError is the service-layer error surfaced to clients. Retryable marks
// store-boundary failures the caller may simply retry: local mode and
// pointer state were left unchanged.
type AppError struct {
	Code      int
	Message   string
	Fields    map[string]string
	Retryable bool
}

func (e *AppError) Error() string {
	return e.Message
}

func NewValidationError(field, message string) *AppError {
	return &AppError{
		Code:    fiber.StatusBadRequest,
		Message: message,
		Fields:  map[string]string{field: message},
	}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: fiber.StatusNotFound, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: fiber.StatusConflict, Message: message}
}

func NewRetryableError(message string) *AppError {
	return &AppError{Code: fiber.StatusBadGateway, Message: message, Retryable: true}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: fiber.StatusForbidden, Message: message}
}

// ErrorHandlerMiddleware converts service errors into the response
// envelope. Unknown errors become opaque 500s.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			resp := FailResponse(appErr.Message, appErr.Fields)
			return ctx.Status(appErr.Code).JSON(resp)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(FailResponse(fiberErr.Message, nil))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(FailResponse("Internal server error", nil))
	}
}
