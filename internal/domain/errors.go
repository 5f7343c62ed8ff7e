package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Solicitudes de sangre.
	ErrRequestNotFound   = errors.New("solicitud no encontrada")
	ErrRequestNotPending = errors.New("la solicitud ya no está pendiente")

	// Citas de donación.
	ErrAppointmentNotFound         = errors.New("cita no encontrada")
	ErrAppointmentNotScheduled     = errors.New("la cita ya no está programada")
	ErrAppointmentAlreadyScheduled = errors.New("el donante ya tiene una cita programada")
	ErrDonorNotFound               = errors.New("donante no encontrado")
	ErrHospitalNotFound            = errors.New("hospital no encontrado")

	// Concurrencia: ErrConflict lo reintenta el coordinador; ErrBusy y ErrTimeout llegan al caller.
	ErrConflict = errors.New("conflicto con el estado actual")
	ErrBusy     = errors.New("ledger ocupado, intente más tarde")
	ErrTimeout  = errors.New("tiempo de espera agotado")
)
