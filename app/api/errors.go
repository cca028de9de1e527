package api

import (
	"errors"
	"log"

	"paperchat/types"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler maps the pipeline error taxonomy onto HTTP statuses. Nothing
// is swallowed on the way here; this is where user-facing messaging is
// decided.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var apiErr Error
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.Code).JSON(apiErr)
	}

	var valErr ValidationError
	if errors.As(err, &valErr) {
		return c.Status(valErr.Status).JSON(valErr)
	}

	var extractErr *types.ExtractionError
	if errors.As(err, &extractErr) {
		return c.Status(fiber.StatusBadRequest).JSON(NewError(fiber.StatusBadRequest, "document could not be parsed as a PDF"))
	}

	var embedErr *types.EmbeddingError
	if errors.As(err, &embedErr) {
		log.Printf("embedding provider failure: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(NewError(fiber.StatusBadGateway, "embedding provider unavailable"))
	}

	var storeErr *types.StoreError
	if errors.As(err, &storeErr) {
		log.Printf("vector store failure: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(NewError(fiber.StatusServiceUnavailable, "vector store unavailable"))
	}

	var cfgErr *types.ConfigError
	if errors.As(err, &cfgErr) {
		log.Printf("invalid pipeline configuration: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(NewError(fiber.StatusInternalServerError, "invalid pipeline configuration"))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(NewError(fiberErr.Code, fiberErr.Message))
	}

	log.Printf("request failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(NewError(fiber.StatusInternalServerError, "internal error"))
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

func ErrBadRequest(msg string) Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: msg,
	}
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: errors,
	}
}
