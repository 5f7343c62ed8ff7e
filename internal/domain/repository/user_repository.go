package repository

import (
	"context"

	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
)

// UserRepository lectura de hospitales y donantes. Alta y edición de usuarios quedan fuera del ledger.
type UserRepository interface {
	// GetByID nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetForUpdate bloquea la fila del usuario para serializar operaciones por donante.
	GetForUpdate(ctx context.Context, id string) (*entity.User, error)
}
