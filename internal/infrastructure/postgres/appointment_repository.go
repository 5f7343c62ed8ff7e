package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/lifeflow-api/internal/domain"
	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
	"github.com/jhoicas/lifeflow-api/internal/domain/repository"
)

var _ repository.AppointmentRepository = (*AppointmentRepo)(nil)

// AppointmentRepo citas de donación sobre PostgreSQL.
type AppointmentRepo struct {
	q Querier
}

// NewAppointmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAppointmentRepository(q Querier) *AppointmentRepo {
	return &AppointmentRepo{q: q}
}

// Create persiste la cita. El índice único parcial impide una segunda cita scheduled por donante.
func (r *AppointmentRepo) Create(ctx context.Context, a *entity.Appointment) error {
	query := `
		INSERT INTO appointments (id, donor_id, center_id, scheduled_date, time_slot, status, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.DonorID, a.CenterID, a.ScheduledDate, a.TimeSlot, string(a.Status), a.UpdatedBy, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAppointmentAlreadyScheduled
		}
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

// GetForUpdate obtiene y bloquea la cita; nil, nil si no existe.
func (r *AppointmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Appointment, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `
		SELECT id, donor_id, center_id, scheduled_date, time_slot, status, updated_by, created_at, updated_at
		FROM appointments WHERE id = $1
		FOR UPDATE`
	var (
		a      entity.Appointment
		status string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.DonorID, &a.CenterID, &a.ScheduledDate, &a.TimeSlot, &status, &a.UpdatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment for update: %w", err)
	}
	a.Status = entity.AppointmentStatus(status)
	return &a, nil
}

// HasScheduled indica si el donante ya tiene una cita scheduled.
func (r *AppointmentRepo) HasScheduled(ctx context.Context, donorID string) (bool, error) {
	if !validID(donorID) {
		return false, nil
	}
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM appointments WHERE donor_id = $1 AND status = 'scheduled')`,
		donorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check scheduled appointment: %w", err)
	}
	return exists, nil
}

// UpdateStatus persiste el estado de la cita.
func (r *AppointmentRepo) UpdateStatus(ctx context.Context, a *entity.Appointment) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE appointments SET status = $2, updated_by = $3, updated_at = $4 WHERE id = $1`,
		a.ID, string(a.Status), a.UpdatedBy, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAppointmentNotFound
	}
	return nil
}
