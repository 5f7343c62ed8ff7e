package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/lifeflow-api/internal/domain"
)

// Querier interfaz común de *pgxpool.Pool y pgx.Tx; los repositorios funcionan con cualquiera de los dos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Códigos SQLSTATE que el coordinador trata de forma especial.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// validID indica si id puede existir en una columna UUID. Un ID malformado se trata como
// fila inexistente en lugar de dejar que Postgres falle con 22P02.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// isRetryable serialización, deadlock o lock_timeout: la operación completa puede reintentarse.
func isRetryable(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// classify envuelve los conflictos de concurrencia en domain.ErrConflict; el resto pasa igual.
func classify(err error) error {
	if err == nil || errors.Is(err, domain.ErrConflict) {
		return err
	}
	if isRetryable(err) {
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}
	return err
}
