package repository

import (
	"context"

	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
)

// AppointmentRepository puerto para citas de donación.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *entity.Appointment) error
	// GetForUpdate bloquea la cita; nil, nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Appointment, error)
	// HasScheduled indica si el donante ya tiene una cita en estado scheduled.
	HasScheduled(ctx context.Context, donorID string) (bool, error)
	UpdateStatus(ctx context.Context, appt *entity.Appointment) error
}
