package ledger

import (
	"context"

	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
	"github.com/jhoicas/lifeflow-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Units        repository.InventoryUnitRepository
	Requests     repository.BloodRequestRepository
	Shipments    repository.ShipmentRepository
	Appointments repository.AppointmentRepository
	Users        repository.UserRepository
}

// TxRunner ejecuta fn dentro de una transacción aislada: Commit si fn devuelve nil, Rollback en otro caso.
// Los conflictos de concurrencia (serialización, deadlock, lock timeout) deben llegar envueltos en domain.ErrConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}

// Notifier colaborador de notificaciones: best-effort y no bloqueante.
// Un error solo significa que el mensaje no se encoló; nunca afecta al ledger.
type Notifier interface {
	Notify(ctx context.Context, n entity.Notification) error
}

// Actor identidad del caller, usada para atribución en auditoría.
type Actor struct {
	UserID string
	Role   string
}

// String identificador que se persiste en created_by / decided_by / updated_by.
func (a Actor) String() string {
	if a.UserID == "" {
		return "system"
	}
	return a.UserID
}
