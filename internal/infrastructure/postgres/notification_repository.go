package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
	"github.com/jhoicas/lifeflow-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo registro de notificaciones; se usa con el pool, fuera de las transacciones del ledger.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador.
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// Create registra un intento de notificación.
func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient, subject, message, event, blood_type, units, status, error, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, NULLIF($9, ''), $10)`
	_, err := r.q.Exec(ctx, query,
		n.ID, n.Recipient, n.Subject, n.Message, n.Event, string(n.BloodType), n.Units, n.Status, n.Error, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
