package notification_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lifeflow-api/internal/application/notification"
	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
	"github.com/jhoicas/lifeflow-api/internal/infrastructure/memory"
)

type flakySender struct {
	mu       sync.Mutex
	failures int
	err      error
	calls    int
}

func (s *flakySender) Send(_ context.Context, _ entity.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return s.err
	}
	return nil
}

func (s *flakySender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func fastConfig() notification.Config {
	return notification.Config{QueueSize: 10, Workers: 2, SendTimeout: time.Second, MaxRetries: 2, RetryDelay: time.Millisecond}
}

func msg(recipient string) entity.Notification {
	return entity.Notification{Recipient: recipient, Subject: "Blood Request Rejected", Event: entity.EventRequestRejected, BloodType: entity.BloodTypeOPos, Units: 1}
}

func TestDispatcher_EntregaYRegistra(t *testing.T) {
	store := memory.NewStore()
	sender := &flakySender{failures: 1, err: errors.New("timeout smtp")}
	d := notification.NewDispatcher(sender, memory.NewNotificationRepository(store), fastConfig(), zerolog.Nop())
	d.Start()

	require.NoError(t, d.Notify(context.Background(), msg("h@test")))
	require.NoError(t, d.Close(context.Background()))

	logged := store.Notifications()
	require.Len(t, logged, 1)
	assert.Equal(t, entity.NotificationStatusSent, logged[0].Status)
	assert.NotEmpty(t, logged[0].ID)
	assert.Equal(t, 2, sender.count(), "un fallo transitorio se reintenta")
}

func TestDispatcher_RegistraFallos(t *testing.T) {
	store := memory.NewStore()
	sender := &flakySender{failures: 100, err: errors.New("smtp caído")}
	d := notification.NewDispatcher(sender, memory.NewNotificationRepository(store), fastConfig(), zerolog.Nop())
	d.Start()

	require.NoError(t, d.Notify(context.Background(), msg("h@test")))
	require.NoError(t, d.Close(context.Background()))

	logged := store.Notifications()
	require.Len(t, logged, 1)
	assert.Equal(t, entity.NotificationStatusFailed, logged[0].Status)
	assert.Contains(t, logged[0].Error, "smtp caído")
	assert.Equal(t, 3, sender.count(), "1 intento + 2 reintentos")
}

func TestDispatcher_NoReintentaErroresPermanentes(t *testing.T) {
	store := memory.NewStore()
	sender := &flakySender{failures: 100, err: fmt.Errorf("%w: circuito abierto", notification.ErrUndeliverable)}
	d := notification.NewDispatcher(sender, memory.NewNotificationRepository(store), fastConfig(), zerolog.Nop())
	d.Start()

	require.NoError(t, d.Notify(context.Background(), msg("h@test")))
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 1, sender.count())
}

func TestDispatcher_ColaLlenaNoBloquea(t *testing.T) {
	cfg := fastConfig()
	cfg.QueueSize = 1
	d := notification.NewDispatcher(&flakySender{}, nil, cfg, zerolog.Nop())

	require.NoError(t, d.Notify(context.Background(), msg("a@test")))
	assert.ErrorIs(t, d.Notify(context.Background(), msg("b@test")), notification.ErrQueueFull)

	d.Start()
	require.NoError(t, d.Close(context.Background()))
	assert.ErrorIs(t, d.Notify(context.Background(), msg("c@test")), notification.ErrClosed)
}
