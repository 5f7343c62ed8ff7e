package repository

import (
	"context"

	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
)

// BloodRequestRepository puerto para solicitudes de hospitales.
type BloodRequestRepository interface {
	Create(ctx context.Context, req *entity.BloodRequest) error
	// GetForUpdate bloquea la fila de la solicitud; nil, nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.BloodRequest, error)
	// UpdateStatus persiste status, fulfilled_date y decided_by.
	UpdateStatus(ctx context.Context, req *entity.BloodRequest) error
}
