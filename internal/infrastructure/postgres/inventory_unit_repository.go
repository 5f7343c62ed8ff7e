package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/lifeflow-api/internal/domain"
	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
	"github.com/jhoicas/lifeflow-api/internal/domain/repository"
)

var _ repository.InventoryUnitRepository = (*InventoryUnitRepo)(nil)

// InventoryUnitRepo Ledger Store de unidades de sangre sobre PostgreSQL (usable con pool o tx).
type InventoryUnitRepo struct {
	q Querier
}

// NewInventoryUnitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryUnitRepository(q Querier) *InventoryUnitRepo {
	return &InventoryUnitRepo{q: q}
}

const unitColumns = `id, blood_type, remaining_volume, collected_date, expiry_date, status,
	current_location, donor_id, created_by, created_at, updated_at`

// FindCandidatesForUpdate bloquea las unidades elegibles en orden de ID (orden global de locks)
// y las devuelve ordenadas FEFO.
func (r *InventoryUnitRepo) FindCandidatesForUpdate(ctx context.Context, bloodType entity.BloodType, now time.Time) ([]*entity.InventoryUnit, error) {
	query := `
		SELECT ` + unitColumns + `
		FROM blood_units
		WHERE blood_type = $1 AND status = 'stored' AND expiry_date >= $2 AND remaining_volume > 0
		ORDER BY id
		FOR UPDATE`
	units, err := r.query(ctx, query, string(bloodType), now)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	entity.SortUnitsFEFO(units)
	return units, nil
}

// FindMergeTargetForUpdate bloquea la unidad stored no caducada de menor caducidad; nil si no hay.
func (r *InventoryUnitRepo) FindMergeTargetForUpdate(ctx context.Context, bloodType entity.BloodType, now time.Time) (*entity.InventoryUnit, error) {
	query := `
		SELECT ` + unitColumns + `
		FROM blood_units
		WHERE blood_type = $1 AND status = 'stored' AND expiry_date >= $2 AND remaining_volume > 0
		ORDER BY expiry_date, id
		LIMIT 1
		FOR UPDATE`
	units, err := r.query(ctx, query, string(bloodType), now)
	if err != nil {
		return nil, fmt.Errorf("find merge target: %w", err)
	}
	if len(units) == 0 {
		return nil, nil
	}
	return units[0], nil
}

// ApplyDeltas envía todas las actualizaciones en un batch; una unidad inexistente aborta la operación.
func (r *InventoryUnitRepo) ApplyDeltas(ctx context.Context, deltas []entity.UnitDelta, at time.Time) error {
	if len(deltas) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, d := range deltas {
		batch.Queue(`
			UPDATE blood_units
			SET remaining_volume = $2, status = $3, updated_at = $4
			WHERE id = $1`,
			d.UnitID, d.NewRemaining, string(d.NewStatus), at)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()

	for _, d := range deltas {
		tag, err := br.Exec()
		if err != nil {
			return fmt.Errorf("apply delta %s: %w", d.UnitID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: unidad %s", domain.ErrNotFound, d.UnitID)
		}
	}
	return br.Close()
}

// Create persiste una unidad nueva.
func (r *InventoryUnitRepo) Create(ctx context.Context, u *entity.InventoryUnit) error {
	query := `
		INSERT INTO blood_units (` + unitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		u.ID, string(u.BloodType), u.RemainingVolume, u.CollectedDate, u.ExpiryDate, string(u.Status),
		u.CurrentLocation, u.DonorID, u.CreatedBy, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert blood unit: %w", err)
	}
	return nil
}

// GetByID obtiene una unidad por ID; nil, nil si no existe.
func (r *InventoryUnitRepo) GetByID(ctx context.Context, id string) (*entity.InventoryUnit, error) {
	if !validID(id) {
		return nil, nil
	}
	row := r.q.QueryRow(ctx, `SELECT `+unitColumns+` FROM blood_units WHERE id = $1`, id)
	u, err := scanUnit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get blood unit: %w", err)
	}
	return u, nil
}

// List lista unidades ordenadas por caducidad con filtros opcionales.
func (r *InventoryUnitRepo) List(ctx context.Context, filter repository.UnitFilter) ([]*entity.InventoryUnit, error) {
	var (
		where []string
		args  []any
	)
	if filter.BloodType != "" {
		args = append(args, string(filter.BloodType))
		where = append(where, fmt.Sprintf("blood_type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + unitColumns + ` FROM blood_units`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY expiry_date, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	units, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list blood units: %w", err)
	}
	return units, nil
}

func (r *InventoryUnitRepo) query(ctx context.Context, query string, args ...any) ([]*entity.InventoryUnit, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*entity.InventoryUnit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func scanUnit(row pgx.Row) (*entity.InventoryUnit, error) {
	var (
		u                 entity.InventoryUnit
		bloodType, status string
	)
	err := row.Scan(
		&u.ID, &bloodType, &u.RemainingVolume, &u.CollectedDate, &u.ExpiryDate, &status,
		&u.CurrentLocation, &u.DonorID, &u.CreatedBy, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.BloodType = entity.BloodType(bloodType)
	u.Status = entity.UnitStatus(status)
	return &u, nil
}
