package repository

import (
	"context"

	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
)

// ShipmentFilter filtros del registro de tracking. Campos vacíos no filtran.
type ShipmentFilter struct {
	RequestID  string
	HospitalID string // solo envíos de solicitudes de este hospital
}

// ShipmentRepository puerto append-only para los registros de tracking.
type ShipmentRepository interface {
	CreateBatch(ctx context.Context, shipments []*entity.Shipment) error
	// List devuelve los envíos que cumplen el filtro, más recientes primero.
	List(ctx context.Context, filter ShipmentFilter) ([]*entity.Shipment, error)
}
