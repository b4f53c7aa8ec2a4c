package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/domain"
)

// errorStatus traduce la taxonomía de errores de dominio a status y código HTTP.
// internal indica que el mensaje original no debe llegar al cliente.
func errorStatus(err error) (status int, code string, internal bool) {
	var (
		notFound   *domain.NotFoundError
		validation *domain.ValidationError
		stock      *domain.InsufficientStockError
		conflict   *domain.ConflictError
		parseErr   *domain.ParseError
		schema     *domain.SchemaError
	)
	switch {
	case errors.As(err, &notFound), errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", false
	case errors.As(err, &stock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK", false
	case errors.As(err, &conflict), errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT", false
	case errors.As(err, &schema):
		return fiber.StatusUnprocessableEntity, "SCHEMA_ERROR", false
	case errors.As(err, &parseErr):
		return fiber.StatusBadRequest, "PARSE_ERROR", false
	case errors.Is(err, domain.ErrInvalidFormat):
		return fiber.StatusBadRequest, "INVALID_FORMAT", false
	case errors.As(err, &validation), errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION", false
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED", false
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN", false
	case errors.Is(err, domain.ErrMergeFailed):
		return fiber.StatusInternalServerError, "MERGE_FAILED", true
	case errors.Is(err, domain.ErrPersistence):
		return fiber.StatusInternalServerError, "PERSISTENCE", true
	}
	return fiber.StatusInternalServerError, "INTERNAL", true
}

// errorBody arma el cuerpo de error. Los errores internos se registran y se responden genéricos.
func errorBody(c *fiber.Ctx, log zerolog.Logger, err error) (int, dto.ErrorResponse) {
	status, code, internal := errorStatus(err)
	msg := err.Error()
	if internal {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		msg = "error interno"
		if code == "MERGE_FAILED" {
			msg = domain.ErrMergeFailed.Error()
		}
	}
	return status, dto.ErrorResponse{Code: code, Message: msg}
}

// writeError responde el error de dominio con su status.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	status, body := errorBody(c, log, err)
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
