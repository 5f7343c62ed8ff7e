package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/lifeflow-api/internal/domain"
)

func TestClassify_ConflictosDeConcurrencia(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03"} {
		err := classify(fmt.Errorf("find candidates: %w", &pgconn.PgError{Code: code}))
		assert.ErrorIs(t, err, domain.ErrConflict, code)

		var pgErr *pgconn.PgError
		assert.ErrorAs(t, err, &pgErr, "el error original sigue accesible")
	}
}

func TestClassify_OtrosErroresPasanIgual(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	assert.NotErrorIs(t, classify(unique), domain.ErrConflict)
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", unique)))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, classify(plain))
	assert.Nil(t, classify(nil))
	assert.Equal(t, domain.ErrInsufficientStock, classify(domain.ErrInsufficientStock))
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", migrateURL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://u@h/db", migrateURL("postgresql://u@h/db"))
	assert.Equal(t, "pgx5://u@h/db", migrateURL("pgx5://u@h/db"))
}

func TestValidID(t *testing.T) {
	assert.True(t, validID("5f0c3c1e-8a57-4d0b-9d8e-2b7a4f1c9e10"))
	assert.False(t, validID("abc"))
	assert.False(t, validID(""))
	assert.False(t, validID("req-1"))
}
