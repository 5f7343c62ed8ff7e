package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
	"github.com/jhoicas/lifeflow-api/internal/domain/repository"
)

var _ repository.ShipmentRepository = (*ShipmentRepo)(nil)

// ShipmentRepo registro append-only de envíos sobre PostgreSQL.
type ShipmentRepo struct {
	q Querier
}

// NewShipmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShipmentRepository(q Querier) *ShipmentRepo {
	return &ShipmentRepo{q: q}
}

const shipmentColumns = `id, inventory_unit_id, request_id, dispatched_volume, units_dispatched,
	source_location, destination_location, status, expected_arrival, created_by, created_at`

// CreateBatch inserta todos los envíos de una solicitud en un único batch.
func (r *ShipmentRepo) CreateBatch(ctx context.Context, shipments []*entity.Shipment) error {
	if len(shipments) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, s := range shipments {
		batch.Queue(`INSERT INTO shipments (`+shipmentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			s.ID, s.InventoryUnitID, s.RequestID, s.DispatchedVolume, s.UnitsDispatched,
			s.SourceLocation, s.DestinationLocation, string(s.Status), s.ExpectedArrival, s.CreatedBy, s.CreatedAt,
		)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for _, s := range shipments {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert shipment %s: %w", s.ID, err)
		}
	}
	return br.Close()
}

// List devuelve los envíos que cumplen el filtro, más recientes primero.
func (r *ShipmentRepo) List(ctx context.Context, filter repository.ShipmentFilter) ([]*entity.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE 1=1`
	var args []any
	if filter.RequestID != "" {
		if !validID(filter.RequestID) {
			return nil, nil
		}
		args = append(args, filter.RequestID)
		query += fmt.Sprintf(` AND request_id = $%d`, len(args))
	}
	if filter.HospitalID != "" {
		if !validID(filter.HospitalID) {
			return nil, nil
		}
		args = append(args, filter.HospitalID)
		query += fmt.Sprintf(` AND request_id IN (SELECT id FROM blood_requests WHERE hospital_id = $%d)`, len(args))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	var list []*entity.Shipment
	for rows.Next() {
		var (
			s      entity.Shipment
			status string
		)
		if err := rows.Scan(
			&s.ID, &s.InventoryUnitID, &s.RequestID, &s.DispatchedVolume, &s.UnitsDispatched,
			&s.SourceLocation, &s.DestinationLocation, &status, &s.ExpectedArrival, &s.CreatedBy, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		s.Status = entity.ShipmentStatus(status)
		list = append(list, &s)
	}
	return list, rows.Err()
}
