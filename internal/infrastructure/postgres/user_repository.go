package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/lifeflow-api/internal/domain"
	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
	"github.com/jhoicas/lifeflow-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo lectura de hospitales y donantes sobre PostgreSQL (usable con pool o tx).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, name, email, role, blood_type, email_notifications_enabled, created_at`

// Create persiste un usuario. El alta de usuarios no es parte del ledger; se usa para cargas iniciales.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	var bloodType *string
	if u.BloodType != nil {
		s := string(*u.BloodType)
		bloodType = &s
	}
	_, err := r.q.Exec(ctx, query, u.ID, u.Name, u.Email, u.Role, bloodType, u.EmailNotificationsEnabled, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID; nil, nil si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea la fila del usuario (SELECT FOR UPDATE).
func (r *UserRepo) GetForUpdate(ctx context.Context, id string) (*entity.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *UserRepo) get(ctx context.Context, query, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, nil
	}
	var (
		u         entity.User
		bloodType *string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.Role, &bloodType, &u.EmailNotificationsEnabled, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if bloodType != nil {
		bt := entity.BloodType(*bloodType)
		u.BloodType = &bt
	}
	return &u, nil
}
