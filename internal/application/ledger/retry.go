package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jhoicas/lifeflow-api/internal/domain"
)

// RetryConfig política de reintentos ante conflictos de concurrencia.
type RetryConfig struct {
	MaxRetries       int           // reintentos tras el primer intento
	BaseDelay        time.Duration // espera inicial, crece exponencialmente con jitter
	MaxDelay         time.Duration
	OperationTimeout time.Duration // 0 = sin límite propio (solo el del ctx del caller)
}

// DefaultRetryConfig valores usados cuando la configuración no define otros.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:       5,
		BaseDelay:        20 * time.Millisecond,
		MaxDelay:         500 * time.Millisecond,
		OperationTimeout: 10 * time.Second,
	}
}

// withRetry reintenta la operación completa mientras devuelva domain.ErrConflict.
// Agotados los reintentos devuelve domain.ErrBusy; si vence el ctx, domain.ErrTimeout.
func (uc *LedgerUseCase) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if uc.retry.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.retry.OperationTimeout)
		defer cancel()
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = uc.retry.BaseDelay
	eb.MaxInterval = uc.retry.MaxDelay
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(uc.retry.MaxRetries)), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrConflict) && ctx.Err() == nil {
			uc.log.Debug().Err(err).Str("op", op).Int("attempt", attempt).Msg("conflicto de concurrencia, reintentando")
			return err
		}
		return backoff.Permanent(err)
	}, policy)

	// Un resultado definitivo de fn (stock insuficiente, no pendiente...) se devuelve tal cual
	// aunque el plazo venza después; el ctx solo decide entre timeout y busy en un conflicto.
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrConflict):
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			uc.log.Warn().Err(err).Str("op", op).Int("attempts", attempt).Msg("operación del ledger agotó el tiempo")
			return domain.ErrTimeout
		}
		uc.log.Warn().Err(err).Str("op", op).Int("attempts", attempt).Msg("ledger ocupado tras reintentos")
		return domain.ErrBusy
	case errors.Is(err, context.DeadlineExceeded):
		uc.log.Warn().Err(err).Str("op", op).Int("attempts", attempt).Msg("operación del ledger agotó el tiempo")
		return domain.ErrTimeout
	}
	return err
}
