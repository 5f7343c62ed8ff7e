package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lifeflow-api/internal/application/dto"
	"github.com/jhoicas/lifeflow-api/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Orden relevante: los errores específicos antes que los genéricos.
var errorMappings = []errorMapping{
	{domain.ErrRequestNotFound, fiber.StatusNotFound, "REQUEST_NOT_FOUND"},
	{domain.ErrAppointmentNotFound, fiber.StatusNotFound, "APPOINTMENT_NOT_FOUND"},
	{domain.ErrDonorNotFound, fiber.StatusNotFound, "DONOR_NOT_FOUND"},
	{domain.ErrHospitalNotFound, fiber.StatusNotFound, "HOSPITAL_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrRequestNotPending, fiber.StatusConflict, "REQUEST_NOT_PENDING"},
	{domain.ErrAppointmentNotScheduled, fiber.StatusConflict, "APPOINTMENT_NOT_SCHEDULED"},
	{domain.ErrAppointmentAlreadyScheduled, fiber.StatusConflict, "APPOINTMENT_ALREADY_SCHEDULED"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrBusy, fiber.StatusServiceUnavailable, "BUSY"},
	{domain.ErrTimeout, fiber.StatusGatewayTimeout, "TIMEOUT"},
}

// writeError traduce errores de dominio a respuestas HTTP; el resto es 500 sin detalles internos.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.status == fiber.StatusServiceUnavailable {
				c.Set(fiber.HeaderRetryAfter, "1")
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.target.Error()})
		}
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
