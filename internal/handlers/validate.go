package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/smartgoals-api/internal/breakdown"
	"github.com/arnold/smartgoals-api/internal/i18n"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("locale", func(fl validator.FieldLevel) bool {
		return i18n.IsSupported(fl.Field().String())
	})
	_ = v.RegisterValidation("deadline", func(fl validator.FieldLevel) bool {
		_, err := breakdown.ParseDeadline(fl.Field().String())
		return err == nil
	})
	return v
}

// bind parses the JSON body into req and validates it. The returned error
// is rendered by ErrorHandler.
func bind(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return check(req)
}

func check(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := verrs[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	return &ValidationError{Field: field, Message: fieldMessage(field, fe)}
}

func fieldMessage(field string, fe validator.FieldError) string {
	numeric := false
	switch fe.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Float32, reflect.Float64:
		numeric = true
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if numeric {
			return fmt.Sprintf("%s must be at least %s", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		if numeric {
			return fmt.Sprintf("%s must be at most %s", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "locale":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(i18n.Supported(), ", "))
	case "deadline":
		return fmt.Sprintf("%s must be an RFC3339 timestamp or a YYYY-MM-DD date", field)
	case "datetime":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}
