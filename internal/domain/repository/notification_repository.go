package repository

import (
	"context"

	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
)

// NotificationRepository registro de intentos de notificación (fuera de la tx del ledger).
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
}
