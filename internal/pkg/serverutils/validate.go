package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and maps failures to per-field
// messages so clients can keep the form open with the offending field
// indicated.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return &AppError{Code: fiber.StatusBadRequest, Message: "Invalid request"}
	}

	fields := make(map[string]string)
	for _, fieldErr := range validationErrors {
		name := strings.ToLower(fieldErr.Field())
		switch fieldErr.Tag() {
		case "required":
			fields[name] = fmt.Sprintf("%s is required", name)
		default:
			fields[name] = fmt.Sprintf("%s is invalid", name)
		}
	}

	return &AppError{
		Code:    fiber.StatusBadRequest,
		Message: "Validation failed",
		Fields:  fields,
	}
}
