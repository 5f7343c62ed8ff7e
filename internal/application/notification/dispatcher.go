// Package notification entrega las notificaciones del ledger fuera de la transacción:
// cola acotada, workers en segundo plano y registro de cada intento.
package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lifeflow-api/internal/application/ledger"
	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
	"github.com/jhoicas/lifeflow-api/internal/domain/repository"
)

var (
	// ErrQueueFull la cola está llena; la notificación se descarta.
	ErrQueueFull = errors.New("notification: cola llena")
	// ErrClosed el dispatcher ya no acepta mensajes.
	ErrClosed = errors.New("notification: dispatcher cerrado")
	// ErrUndeliverable el sender no debe reintentar (circuito abierto, destinatario inválido).
	ErrUndeliverable = errors.New("notification: entrega no reintentable")
)

// Sender canal de entrega concreto (SMTP, etc.).
type Sender interface {
	Send(ctx context.Context, n entity.Notification) error
}

// Config parámetros de la cola y de la entrega.
type Config struct {
	QueueSize   int
	Workers     int
	SendTimeout time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = 100
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 10 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 500 * time.Millisecond
	}
	return c
}

// Dispatcher implementa ledger.Notifier sin bloquear al caller.
type Dispatcher struct {
	sender Sender
	repo   repository.NotificationRepository
	cfg    Config
	log    zerolog.Logger
	now    func() time.Time

	queue  chan entity.Notification
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	start  sync.Once
}

// Verify interface compliance
var _ ledger.Notifier = (*Dispatcher)(nil)

// NewDispatcher crea el dispatcher. repo puede ser nil (sin registro).
func NewDispatcher(sender Sender, repo repository.NotificationRepository, cfg Config, log zerolog.Logger) *Dispatcher {
	cfg = cfg.withDefaults()
	return &Dispatcher{
		sender: sender,
		repo:   repo,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
		queue:  make(chan entity.Notification, cfg.QueueSize),
	}
}

// Start lanza los workers. Llamadas sucesivas no tienen efecto.
func (d *Dispatcher) Start() {
	d.start.Do(func() {
		for i := 0; i < d.cfg.Workers; i++ {
			d.wg.Add(1)
			go d.worker()
		}
	})
}

// Notify encola sin bloquear. Devuelve ErrQueueFull o ErrClosed si no pudo encolar.
func (d *Dispatcher) Notify(_ context.Context, n entity.Notification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.queue <- n:
		return nil
	default:
		d.log.Warn().Str("event", n.Event).Str("recipient", n.Recipient).Msg("cola de notificaciones llena")
		return ErrQueueFull
	}
}

// Close deja de aceptar mensajes y espera a que los workers vacíen la cola o venza ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n entity.Notification) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = d.cfg.RetryDelay
	eb.MaxElapsedTime = 0
	policy := backoff.WithMaxRetries(eb, uint64(d.cfg.MaxRetries))

	err := backoff.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
		defer cancel()
		err := d.sender.Send(ctx, n)
		if errors.Is(err, ErrUndeliverable) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)

	if err != nil {
		n.Status = entity.NotificationStatusFailed
		n.Error = err.Error()
		d.log.Warn().Err(err).Str("event", n.Event).Str("recipient", n.Recipient).Msg("notificación no entregada")
	} else {
		n.Status = entity.NotificationStatusSent
		d.log.Debug().Str("event", n.Event).Str("recipient", n.Recipient).Msg("notificación entregada")
	}

	if d.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()
	if err := d.repo.Create(ctx, &n); err != nil {
		d.log.Error().Err(err).Str("notification_id", n.ID).Msg("error registrando notificación")
	}
}
