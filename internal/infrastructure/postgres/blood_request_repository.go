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

var _ repository.BloodRequestRepository = (*BloodRequestRepo)(nil)

// BloodRequestRepo solicitudes de hospitales sobre PostgreSQL.
type BloodRequestRepo struct {
	q Querier
}

// NewBloodRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBloodRequestRepository(q Querier) *BloodRequestRepo {
	return &BloodRequestRepo{q: q}
}

// Create persiste una solicitud pendiente.
func (r *BloodRequestRepo) Create(ctx context.Context, req *entity.BloodRequest) error {
	query := `
		INSERT INTO blood_requests (id, hospital_id, blood_type, units_needed, urgency, status, requested_date, fulfilled_date, decided_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))`
	_, err := r.q.Exec(ctx, query,
		req.ID, req.HospitalID, string(req.BloodType), req.UnitsNeeded, string(req.Urgency),
		string(req.Status), req.RequestedDate, req.FulfilledDate, req.DecidedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert blood request: %w", err)
	}
	return nil
}

// GetForUpdate obtiene y bloquea la solicitud; nil, nil si no existe.
func (r *BloodRequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.BloodRequest, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `
		SELECT id, hospital_id, blood_type, units_needed, urgency, status, requested_date, fulfilled_date, COALESCE(decided_by, '')
		FROM blood_requests WHERE id = $1
		FOR UPDATE`
	var (
		req                        entity.BloodRequest
		bloodType, urgency, status string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.HospitalID, &bloodType, &req.UnitsNeeded, &urgency, &status,
		&req.RequestedDate, &req.FulfilledDate, &req.DecidedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get blood request for update: %w", err)
	}
	req.BloodType = entity.BloodType(bloodType)
	req.Urgency = entity.Urgency(urgency)
	req.Status = entity.RequestStatus(status)
	return &req, nil
}

// UpdateStatus persiste status, fulfilled_date y decided_by.
func (r *BloodRequestRepo) UpdateStatus(ctx context.Context, req *entity.BloodRequest) error {
	query := `
		UPDATE blood_requests
		SET status = $2, fulfilled_date = $3, decided_by = NULLIF($4, '')
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, req.ID, string(req.Status), req.FulfilledDate, req.DecidedBy)
	if err != nil {
		return fmt.Errorf("update blood request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}
