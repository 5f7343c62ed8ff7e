//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/lifeflow-api/internal/application/ledger"
	"github.com/jhoicas/lifeflow-api/internal/domain"
	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
	"github.com/jhoicas/lifeflow-api/internal/domain/repository"
	"github.com/jhoicas/lifeflow-api/internal/infrastructure/postgres"
	"github.com/jhoicas/lifeflow-api/pkg/config"
)

// setupPostgres levanta un PostgreSQL desechable, aplica las migraciones y devuelve el pool.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("lifeflow"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(dsn, zerolog.Nop()))
	require.NoError(t, postgres.Migrate(dsn, zerolog.Nop()), "migrar dos veces no falla")

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type seed struct {
	pool       *pgxpool.Pool
	hospitalID string
	donorID    string
}

func newSeed(t *testing.T, pool *pgxpool.Pool) *seed {
	t.Helper()
	ctx := context.Background()
	users := postgres.NewUserRepository(pool)
	oPos := entity.BloodTypeOPos
	s := &seed{pool: pool, hospitalID: uuid.NewString(), donorID: uuid.NewString()}
	require.NoError(t, users.Create(ctx, &entity.User{ID: s.hospitalID, Name: "Hospital Central", Email: "central@test", Role: entity.RoleHospital, EmailNotificationsEnabled: true, CreatedAt: time.Now()}))
	require.NoError(t, users.Create(ctx, &entity.User{ID: s.donorID, Name: "Ana", Email: "ana@test", Role: entity.RoleDonor, BloodType: &oPos, CreatedAt: time.Now()}))
	return s
}

func (s *seed) unit(t *testing.T, remaining int, expiry time.Time) string {
	t.Helper()
	id := uuid.NewString()
	now := time.Now()
	require.NoError(t, postgres.NewInventoryUnitRepository(s.pool).Create(context.Background(), &entity.InventoryUnit{
		ID: id, BloodType: entity.BloodTypeOPos, RemainingVolume: remaining,
		CollectedDate: expiry.Add(-entity.ShelfLife), ExpiryDate: expiry, Status: entity.UnitStatusStored,
		CurrentLocation: entity.DefaultStorageLocation, CreatedBy: "seed", CreatedAt: now, UpdatedAt: now,
	}))
	return id
}

func (s *seed) request(t *testing.T, units int) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, postgres.NewBloodRequestRepository(s.pool).Create(context.Background(), &entity.BloodRequest{
		ID: id, HospitalID: s.hospitalID, BloodType: entity.BloodTypeOPos, UnitsNeeded: units,
		Urgency: entity.UrgencyNormal, Status: entity.RequestStatusPending, RequestedDate: time.Now(),
	}))
	return id
}

func TestLedger_Postgres(t *testing.T) {
	pool := setupPostgres(t)
	runner := postgres.NewTxRunner(pool, 2*time.Second)
	uc := ledger.NewLedgerUseCase(runner, nil)
	admin := ledger.Actor{UserID: "admin"}
	ctx := context.Background()

	t.Run("fulfill consume FEFO y registra envíos", func(t *testing.T) {
		s := newSeed(t, pool)
		_, err := pool.Exec(ctx, "UPDATE blood_units SET remaining_volume = 0, status = 'exhausted' WHERE blood_type = 'O+' AND status = 'stored'")
		require.NoError(t, err)
		early := s.unit(t, 300, time.Now().Add(5*24*time.Hour))
		late := s.unit(t, 450, time.Now().Add(10*24*time.Hour))
		reqID := s.request(t, 1)

		res, err := uc.FulfillRequest(ctx, admin, reqID)
		require.NoError(t, err)
		require.Len(t, res.Shipments, 2)

		units := postgres.NewInventoryUnitRepository(pool)
		u1, err := units.GetByID(ctx, early)
		require.NoError(t, err)
		assert.Equal(t, 0, u1.RemainingVolume)
		assert.Equal(t, entity.UnitStatusExhausted, u1.Status)
		u2, err := units.GetByID(ctx, late)
		require.NoError(t, err)
		assert.Equal(t, 300, u2.RemainingVolume)

		shipments, err := uc.ListShipments(ctx, repository.ShipmentFilter{RequestID: reqID})
		require.NoError(t, err)
		require.Len(t, shipments, 2)
		total := 0
		for _, sh := range shipments {
			total += sh.DispatchedVolume
			assert.Equal(t, "Hospital Central", sh.DestinationLocation)
		}
		assert.Equal(t, 450, total)

		_, err = uc.FulfillRequest(ctx, admin, reqID)
		assert.ErrorIs(t, err, domain.ErrRequestNotPending)
	})

	t.Run("stock insuficiente no modifica nada", func(t *testing.T) {
		s := newSeed(t, pool)
		reqID := s.request(t, 1000)

		_, err := uc.FulfillRequest(ctx, admin, reqID)
		require.ErrorIs(t, err, domain.ErrInsufficientStock)

		var status string
		require.NoError(t, pool.QueryRow(ctx, "SELECT status FROM blood_requests WHERE id = $1", reqID).Scan(&status))
		assert.Equal(t, "pending", status)
	})

	t.Run("fulfill concurrentes no sobreasignan", func(t *testing.T) {
		s := newSeed(t, pool)
		_, err := pool.Exec(ctx, "UPDATE blood_units SET remaining_volume = 0, status = 'exhausted' WHERE blood_type = 'O+' AND status = 'stored'")
		require.NoError(t, err)
		for i := 0; i < 4; i++ {
			s.unit(t, 450, time.Now().Add(time.Duration(i+1)*24*time.Hour))
		}
		var ids []string
		for i := 0; i < 10; i++ {
			ids = append(ids, s.request(t, 1))
		}

		var (
			wg                     sync.WaitGroup
			mu                     sync.Mutex
			approved, insufficient int
		)
		for _, id := range ids {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := uc.FulfillRequest(ctx, admin, id)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					approved++
				case errors.Is(err, domain.ErrInsufficientStock):
					insufficient++
				default:
					t.Errorf("error inesperado: %v", err)
				}
			}(id)
		}
		wg.Wait()

		assert.Equal(t, 4, approved)
		assert.Equal(t, 6, insufficient)

		left, err := uc.ListInventory(ctx, repository.UnitFilter{BloodType: entity.BloodTypeOPos, Status: entity.UnitStatusStored})
		require.NoError(t, err)
		assert.Empty(t, left)
	})

	t.Run("credit suma o crea unidad", func(t *testing.T) {
		s := newSeed(t, pool)
		_, err := pool.Exec(ctx, "UPDATE blood_units SET remaining_volume = 0, status = 'exhausted' WHERE blood_type = 'O+' AND status = 'stored'")
		require.NoError(t, err)

		appt, err := uc.ScheduleAppointment(ctx, admin, ledger.ScheduleAppointmentInput{DonorID: s.donorID, CenterID: "c1", ScheduledDate: time.Now(), TimeSlot: "09:00"})
		require.NoError(t, err)
		_, err = uc.ScheduleAppointment(ctx, admin, ledger.ScheduleAppointmentInput{DonorID: s.donorID, CenterID: "c1", ScheduledDate: time.Now(), TimeSlot: "10:00"})
		require.ErrorIs(t, err, domain.ErrAppointmentAlreadyScheduled)

		created, err := uc.CreditDonation(ctx, admin, appt.ID)
		require.NoError(t, err)
		assert.False(t, created.Merged)

		appt2, err := uc.ScheduleAppointment(ctx, admin, ledger.ScheduleAppointmentInput{DonorID: s.donorID, CenterID: "c1", ScheduledDate: time.Now(), TimeSlot: "11:00"})
		require.NoError(t, err)
		merged, err := uc.CreditDonation(ctx, admin, appt2.ID)
		require.NoError(t, err)
		assert.True(t, merged.Merged)
		assert.Equal(t, created.UnitID, merged.UnitID)
		assert.Equal(t, 900, merged.RemainingVolume)
	})

	t.Run("IDs que no son UUID equivalen a inexistentes", func(t *testing.T) {
		s := newSeed(t, pool)

		_, err := uc.FulfillRequest(ctx, admin, "abc")
		assert.ErrorIs(t, err, domain.ErrRequestNotFound)
		_, err = uc.RejectRequest(ctx, admin, "abc")
		assert.ErrorIs(t, err, domain.ErrRequestNotFound)
		_, err = uc.CreditDonation(ctx, admin, "abc")
		assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)
		_, err = uc.CloseAppointment(ctx, admin, "abc", entity.AppointmentStatusMissed)
		assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)

		_, err = uc.SubmitRequest(ctx, admin, ledger.SubmitRequestInput{HospitalID: "abc", BloodType: "O+", UnitsNeeded: 1})
		assert.ErrorIs(t, err, domain.ErrHospitalNotFound)
		_, err = uc.ScheduleAppointment(ctx, admin, ledger.ScheduleAppointmentInput{DonorID: "abc", CenterID: "c1", ScheduledDate: time.Now(), TimeSlot: "09:00"})
		assert.ErrorIs(t, err, domain.ErrDonorNotFound)

		shipments, err := uc.ListShipments(ctx, repository.ShipmentFilter{RequestID: "abc"})
		require.NoError(t, err)
		assert.Empty(t, shipments)

		// Un hospital válido sigue funcionando en el mismo pool.
		_, err = uc.SubmitRequest(ctx, admin, ledger.SubmitRequestInput{HospitalID: s.hospitalID, BloodType: "O+", UnitsNeeded: 1})
		assert.NoError(t, err)
	})

	t.Run("lock_timeout se reporta como conflicto", func(t *testing.T) {
		s := newSeed(t, pool)
		reqID := s.request(t, 1)

		holder, err := pool.Begin(ctx)
		require.NoError(t, err)
		defer func() { _ = holder.Rollback(ctx) }()
		_, err = holder.Exec(ctx, "SELECT 1 FROM blood_requests WHERE id = $1 FOR UPDATE", reqID)
		require.NoError(t, err)

		short := postgres.NewTxRunner(pool, 50*time.Millisecond)
		err = short.Run(ctx, func(repos ledger.Repos) error {
			_, err := repos.Requests.GetForUpdate(ctx, reqID)
			return err
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}
