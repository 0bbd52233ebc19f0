package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/tagstash/pkg/record"
	"github.com/papercomputeco/tagstash/pkg/stash"
	"github.com/papercomputeco/tagstash/pkg/storage"
	"github.com/papercomputeco/tagstash/pkg/tag"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps the record and storage error taxonomy to an HTTP status.
func statusFor(err error) int {
	var (
		fiberErr      *fiber.Error
		invalidQuery  *stash.InvalidQueryError
		invalidBody   *record.InvalidContentError
		invalidTag    *tag.InvalidTagError
		emptyTag      *tag.EmptyTagError
		notFound      storage.NotFoundError
		duplicate     *storage.DuplicateRecordError
		connectionErr *storage.ConnectionError
	)

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &invalidQuery),
		errors.As(err, &invalidBody),
		errors.As(err, &invalidTag),
		errors.As(err, &emptyTag):
		return fiber.StatusBadRequest
	case errors.As(err, &notFound):
		return fiber.StatusNotFound
	case errors.As(err, &duplicate):
		return fiber.StatusConflict
	case errors.As(err, &connectionErr):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// errorHandler renders handler errors as JSON with the mapped status.
// Internal errors are logged and their details withheld.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := statusFor(err)
		msg := err.Error()
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"error", err,
			)
			if status == fiber.StatusInternalServerError {
				msg = "internal error"
			}
		}
		return c.Status(status).JSON(ErrorResponse{Error: msg})
	}
}
