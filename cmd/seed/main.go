// seed da de alta un usuario del ledger (admin, hospital o donante) y emite su token JWT.
// La API no expone registro ni login; este comando es la vía de operación para obtener identidades.
//
// Uso:
//
//	go run ./cmd/seed -role hospital -name "Hospital San Rafael" -email compras@sanrafael.co
//	go run ./cmd/seed -role donor -name "Ana" -email ana@mail.co -blood-type O-
//	go run ./cmd/seed -token-only -id <uuid> -role admin
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
	"github.com/jhoicas/lifeflow-api/internal/infrastructure/postgres"
	"github.com/jhoicas/lifeflow-api/pkg/config"
	"github.com/jhoicas/lifeflow-api/pkg/jwt"
)

func main() {
	role := flag.String("role", entity.RoleAdmin, "admin | hospital | donor")
	name := flag.String("name", "", "nombre visible")
	email := flag.String("email", "", "correo para notificaciones")
	bloodType := flag.String("blood-type", "", "grupo sanguíneo (solo donantes)")
	notify := flag.Bool("notify", true, "habilitar notificaciones por correo")
	id := flag.String("id", "", "ID existente (con -token-only)")
	tokenOnly := flag.Bool("token-only", false, "solo emitir token, sin escribir en la DB")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail("cargar configuración", err)
	}

	userID := *id
	if !*tokenOnly {
		u, err := buildUser(*role, *name, *email, *bloodType, *notify)
		if err != nil {
			fail("datos de usuario", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			fail("conexión a PostgreSQL", err)
		}
		defer pool.Close()
		if err := postgres.NewUserRepository(pool).Create(ctx, u); err != nil {
			fail("crear usuario", err)
		}
		userID = u.ID
		fmt.Printf("Usuario %s (%s) creado: %s\n", u.Name, u.Role, u.ID)
	}
	if userID == "" {
		fail("token", fmt.Errorf("-id requerido con -token-only"))
	}

	token, err := jwt.Generate(cfg.JWT.Secret, userID, *role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fail("emitir token", err)
	}
	fmt.Printf("Authorization: Bearer %s\n", token)
}

func buildUser(role, name, email, bloodType string, notify bool) (*entity.User, error) {
	switch role {
	case entity.RoleAdmin, entity.RoleHospital, entity.RoleDonor:
	default:
		return nil, fmt.Errorf("rol inválido %q", role)
	}
	if name == "" {
		return nil, fmt.Errorf("-name requerido")
	}
	u := &entity.User{
		ID:                        uuid.New().String(),
		Name:                      name,
		Email:                     email,
		Role:                      role,
		EmailNotificationsEnabled: notify && email != "",
		CreatedAt:                 time.Now().UTC(),
	}
	if role == entity.RoleDonor {
		bt, err := entity.ParseBloodType(bloodType)
		if err != nil {
			return nil, err
		}
		u.BloodType = &bt
	}
	return u, nil
}

func fail(step string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", step, err)
	os.Exit(1)
}
