package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/arnold/smartgoals-api/internal/logger"
	"github.com/arnold/smartgoals-api/internal/middleware"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeValidation      = "VALIDATION_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
	CodeExternalService = "EXTERNAL_SERVICE_ERROR"
)

var statusCodes = map[int]string{
	fiber.StatusBadRequest:            CodeBadRequest,
	fiber.StatusUnauthorized:          CodeUnauthorized,
	fiber.StatusForbidden:             CodeForbidden,
	fiber.StatusNotFound:              CodeNotFound,
	fiber.StatusMethodNotAllowed:      CodeBadRequest,
	fiber.StatusConflict:              CodeConflict,
	fiber.StatusRequestEntityTooLarge: CodeBadRequest,
	fiber.StatusUnprocessableEntity:   CodeValidation,
	fiber.StatusServiceUnavailable:    CodeExternalService,
}

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func fail(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
		"code":  code,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusBadRequest, CodeBadRequest, msg)
}

func notFound(c *fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusNotFound, CodeNotFound, msg)
}

func validationFailed(c *fiber.Ctx, field, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   msg,
		"code":    CodeValidation,
		"details": fiber.Map{"field": field},
	})
}

// internalError logs err with the request id and answers with a generic 500.
func internalError(c *fiber.Ctx, msg string, err error) error {
	logger.L().Error(msg, "rid", middleware.RequestID(c), "path", c.Path(), "error", err)
	return fail(c, fiber.StatusInternalServerError, CodeInternal, msg)
}

func serviceUnavailable(c *fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusServiceUnavailable, CodeExternalService, msg)
}

// ErrorHandler turns errors returned from handlers into the JSON envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return validationFailed(c, verr.Field, verr.Message)
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code, ok := statusCodes[ferr.Code]
		if !ok {
			code = CodeInternal
			if ferr.Code < fiber.StatusInternalServerError {
				code = CodeBadRequest
			}
		}
		return fail(c, ferr.Code, code, ferr.Message)
	}

	logger.L().Error("unhandled error", "rid", middleware.RequestID(c), "path", c.Path(), "error", err)
	return fail(c, fiber.StatusInternalServerError, CodeInternal, "Internal server error")
}
