// Package memory implementa el Ledger Store en proceso. Cada transacción trabaja sobre una copia
// del estado y la publica solo en el Commit, con un único escritor a la vez (serializable).
package memory

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jhoicas/lifeflow-api/internal/application/ledger"
	"github.com/jhoicas/lifeflow-api/internal/domain"
	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
)

type state struct {
	users         map[string]entity.User
	units         map[string]entity.InventoryUnit
	requests      map[string]entity.BloodRequest
	appointments  map[string]entity.Appointment
	shipments     []entity.Shipment
	notifications []entity.Notification
}

func newState() *state {
	return &state{
		users:        map[string]entity.User{},
		units:        map[string]entity.InventoryUnit{},
		requests:     map[string]entity.BloodRequest{},
		appointments: map[string]entity.Appointment{},
	}
}

func (s *state) clone() *state {
	c := &state{
		users:         make(map[string]entity.User, len(s.users)),
		units:         make(map[string]entity.InventoryUnit, len(s.units)),
		requests:      make(map[string]entity.BloodRequest, len(s.requests)),
		appointments:  make(map[string]entity.Appointment, len(s.appointments)),
		shipments:     append([]entity.Shipment(nil), s.shipments...),
		notifications: append([]entity.Notification(nil), s.notifications...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.units {
		c.units[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	for k, v := range s.appointments {
		c.appointments[k] = v
	}
	return c
}

// Store estado compartido del ledger en memoria.
type Store struct {
	sem       chan struct{}
	state     *state
	conflicts atomic.Int32
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		sem:   make(chan struct{}, 1),
		state: newState(),
	}
}

// Verify interface compliance
var _ ledger.TxRunner = (*Store)(nil)

// InjectConflicts hace que las próximas n transacciones fallen con domain.ErrConflict antes de ejecutar fn.
func (s *Store) InjectConflicts(n int) {
	s.conflicts.Store(int32(n))
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() { <-s.sem }

// Run ejecuta fn sobre una copia del estado; si fn devuelve nil la copia reemplaza al estado (Commit).
func (s *Store) Run(ctx context.Context, fn func(repos ledger.Repos) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	if s.conflicts.Load() > 0 && s.conflicts.Add(-1) >= 0 {
		return fmt.Errorf("%w: conflicto simulado", domain.ErrConflict)
	}

	tx := s.state.clone()
	if err := fn(reposFor(tx)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = tx
	return nil
}

func reposFor(st *state) ledger.Repos {
	return ledger.Repos{
		Units:        &unitRepo{st: st},
		Requests:     &requestRepo{st: st},
		Shipments:    &shipmentRepo{st: st},
		Appointments: &appointmentRepo{st: st},
		Users:        &userRepo{st: st},
	}
}

// locked ejecuta fn sobre el estado publicado con el store tomado.
func (s *Store) locked(fn func(st *state)) {
	s.sem <- struct{}{}
	defer s.release()
	fn(s.state)
}

// ── Carga de datos (seed) ────────────────────────────────────────────────────

// AddUser registra un hospital, donante o administrador.
func (s *Store) AddUser(u entity.User) {
	s.locked(func(st *state) { st.users[u.ID] = u })
}

// AddUnit registra una unidad de inventario tal cual.
func (s *Store) AddUnit(u entity.InventoryUnit) {
	s.locked(func(st *state) { st.units[u.ID] = u })
}

// AddRequest registra una solicitud tal cual.
func (s *Store) AddRequest(r entity.BloodRequest) {
	s.locked(func(st *state) { st.requests[r.ID] = r })
}

// AddAppointment registra una cita tal cual.
func (s *Store) AddAppointment(a entity.Appointment) {
	s.locked(func(st *state) { st.appointments[a.ID] = a })
}

// ── Lecturas fuera de transacción ────────────────────────────────────────────

// Unit devuelve una copia de la unidad.
func (s *Store) Unit(id string) (entity.InventoryUnit, bool) {
	var (
		u  entity.InventoryUnit
		ok bool
	)
	s.locked(func(st *state) { u, ok = st.units[id] })
	return u, ok
}

// Units devuelve todas las unidades en orden FEFO.
func (s *Store) Units() []entity.InventoryUnit {
	var out []entity.InventoryUnit
	s.locked(func(st *state) {
		ptrs := make([]*entity.InventoryUnit, 0, len(st.units))
		for _, u := range st.units {
			u := u
			ptrs = append(ptrs, &u)
		}
		entity.SortUnitsFEFO(ptrs)
		for _, p := range ptrs {
			out = append(out, *p)
		}
	})
	return out
}

// Request devuelve una copia de la solicitud.
func (s *Store) Request(id string) (entity.BloodRequest, bool) {
	var (
		r  entity.BloodRequest
		ok bool
	)
	s.locked(func(st *state) { r, ok = st.requests[id] })
	return r, ok
}

// Appointment devuelve una copia de la cita.
func (s *Store) Appointment(id string) (entity.Appointment, bool) {
	var (
		a  entity.Appointment
		ok bool
	)
	s.locked(func(st *state) { a, ok = st.appointments[id] })
	return a, ok
}

// Shipments devuelve los envíos en orden de inserción.
func (s *Store) Shipments() []entity.Shipment {
	var out []entity.Shipment
	s.locked(func(st *state) { out = append(out, st.shipments...) })
	return out
}

// Notifications devuelve el registro de notificaciones.
func (s *Store) Notifications() []entity.Notification {
	var out []entity.Notification
	s.locked(func(st *state) { out = append(out, st.notifications...) })
	return out
}
