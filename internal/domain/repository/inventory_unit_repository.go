package repository

import (
	"context"
	"time"

	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
)

// UnitFilter filtros del listado de inventario. Campos vacíos no filtran.
type UnitFilter struct {
	BloodType entity.BloodType
	Status    entity.UnitStatus
	Limit     int
	Offset    int
}

// InventoryUnitRepository puerto del Ledger Store sobre las unidades de sangre.
// Los métodos *ForUpdate deben llamarse dentro de la transacción que luego escribe.
type InventoryUnitRepository interface {
	// FindCandidatesForUpdate bloquea las unidades elegibles (stored, expiry >= now, volumen > 0)
	// en orden de ID ascendente y las devuelve ordenadas FEFO (caducidad ASC, ID ASC).
	FindCandidatesForUpdate(ctx context.Context, bloodType entity.BloodType, now time.Time) ([]*entity.InventoryUnit, error)
	// FindMergeTargetForUpdate bloquea la unidad stored no caducada de menor caducidad; nil si no hay.
	FindMergeTargetForUpdate(ctx context.Context, bloodType entity.BloodType, now time.Time) (*entity.InventoryUnit, error)
	// ApplyDeltas actualiza volumen y estado de cada unidad; dentro de una tx es todo o nada.
	ApplyDeltas(ctx context.Context, deltas []entity.UnitDelta, at time.Time) error
	Create(ctx context.Context, unit *entity.InventoryUnit) error
	GetByID(ctx context.Context, id string) (*entity.InventoryUnit, error)
	List(ctx context.Context, filter UnitFilter) ([]*entity.InventoryUnit, error)
}
