package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/fieldservice-api/internal/application/dto"
	"github.com/jhoicas/fieldservice-api/internal/domain"
)

// errorWriter traduce errores de dominio a respuestas HTTP.
type errorWriter struct {
	log zerolog.Logger
	dev bool // incluye el error crudo en la respuesta
}

func (w errorWriter) write(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos de cliente inválidos", Details: ve.Fields})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "tenant no identificado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el cliente pertenece a otro tenant"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cliente no encontrado"})
	}

	resp := dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	switch {
	case errors.Is(err, domain.ErrConflict):
		resp = dto.ErrorResponse{Code: "CONFLICT", Message: "colisión de identificador, reintente"}
	case errors.Is(err, domain.ErrStore):
		resp = dto.ErrorResponse{Code: "STORE", Message: "error del almacén de datos"}
	}
	w.log.Error().Err(err).Str("code", resp.Code).Str("path", c.Path()).Msg("fallo del servidor")
	if w.dev {
		resp.Error = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(resp)
}
