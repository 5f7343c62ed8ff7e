package email

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/lifeflow-api/internal/application/notification"
	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
)

// LogSender sustituye al SMTP cuando no hay servidor configurado: solo deja traza en el log.
type LogSender struct {
	log zerolog.Logger
}

var _ notification.Sender = (*LogSender)(nil)

// NewLogSender crea el sender de desarrollo.
func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send registra la notificación y la da por entregada.
func (s *LogSender) Send(_ context.Context, n entity.Notification) error {
	if n.Recipient == "" {
		return notification.ErrUndeliverable
	}
	s.log.Info().
		Str("to", n.Recipient).
		Str("event", n.Event).
		Str("subject", n.Subject).
		Msg("notificación (SMTP deshabilitado)")
	return nil
}
