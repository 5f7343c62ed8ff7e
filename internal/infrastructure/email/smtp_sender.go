// Package email entrega notificaciones por SMTP detrás de un circuit breaker.
package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/lifeflow-api/internal/application/notification"
	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
	"github.com/jhoicas/lifeflow-api/pkg/config"
)

// SendFunc envía un mensaje ya construido. Por defecto usa gomail.Dialer.DialAndSend.
type SendFunc func(m *gomail.Message) error

// Sender implementa notification.Sender sobre SMTP.
type Sender struct {
	from    string
	send    SendFunc
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// Verify interface compliance
var _ notification.Sender = (*Sender)(nil)

// Option configura el Sender.
type Option func(*Sender)

// WithSendFunc reemplaza el transporte (tests).
func WithSendFunc(fn SendFunc) Option {
	return func(s *Sender) { s.send = fn }
}

// NewSender construye el sender SMTP. El breaker abre tras cfg.BreakerFailures fallos consecutivos
// y deja pasar una prueba tras cfg.BreakerTimeout.
func NewSender(cfg config.SMTPConfig, log zerolog.Logger, opts ...Option) *Sender {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	s := &Sender{
		from: cfg.From,
		send: func(m *gomail.Message) error { return dialer.DialAndSend(m) },
		log:  log,
	}
	for _, opt := range opts {
		opt(s)
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	timeout := cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cambio de estado del circuit breaker")
		},
	})
	return s
}

// Send construye el correo y lo entrega a través del breaker.
func (s *Sender) Send(ctx context.Context, n entity.Notification) error {
	if n.Recipient == "" {
		return fmt.Errorf("%w: destinatario vacío", notification.ErrUndeliverable)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", n.Recipient)
	m.SetHeader("Subject", n.Subject)
	m.SetBody("text/plain", n.Message)

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.send(m)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", notification.ErrUndeliverable, err)
	}
	if err != nil {
		return fmt.Errorf("smtp: enviar a %s: %w", n.Recipient, err)
	}
	return nil
}

// State estado actual del breaker.
func (s *Sender) State() gobreaker.State {
	return s.breaker.State()
}
