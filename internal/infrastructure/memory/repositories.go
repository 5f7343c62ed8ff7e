package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/lifeflow-api/internal/domain"
	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
	"github.com/jhoicas/lifeflow-api/internal/domain/repository"
)

// Verify interface compliance
var (
	_ repository.InventoryUnitRepository = (*unitRepo)(nil)
	_ repository.BloodRequestRepository  = (*requestRepo)(nil)
	_ repository.ShipmentRepository      = (*shipmentRepo)(nil)
	_ repository.AppointmentRepository   = (*appointmentRepo)(nil)
	_ repository.UserRepository          = (*userRepo)(nil)
	_ repository.NotificationRepository  = (*NotificationRepository)(nil)
)

type unitRepo struct{ st *state }

func (r *unitRepo) FindCandidatesForUpdate(_ context.Context, bloodType entity.BloodType, now time.Time) ([]*entity.InventoryUnit, error) {
	var out []*entity.InventoryUnit
	for _, u := range r.st.units {
		u := u
		if u.BloodType == bloodType && u.Eligible(now) {
			out = append(out, &u)
		}
	}
	entity.SortUnitsFEFO(out)
	return out, nil
}

func (r *unitRepo) FindMergeTargetForUpdate(ctx context.Context, bloodType entity.BloodType, now time.Time) (*entity.InventoryUnit, error) {
	candidates, err := r.FindCandidatesForUpdate(ctx, bloodType, now)
	if err != nil || len(candidates) == 0 {
		return nil, err
	}
	return candidates[0], nil
}

func (r *unitRepo) ApplyDeltas(_ context.Context, deltas []entity.UnitDelta, at time.Time) error {
	for _, d := range deltas {
		u, ok := r.st.units[d.UnitID]
		if !ok {
			return fmt.Errorf("%w: unidad %s", domain.ErrNotFound, d.UnitID)
		}
		if d.NewRemaining < 0 {
			return fmt.Errorf("%w: volumen negativo para la unidad %s", domain.ErrInvalidInput, d.UnitID)
		}
		u.RemainingVolume = d.NewRemaining
		u.Status = d.NewStatus
		u.UpdatedAt = at
		r.st.units[d.UnitID] = u
	}
	return nil
}

func (r *unitRepo) Create(_ context.Context, unit *entity.InventoryUnit) error {
	if _, exists := r.st.units[unit.ID]; exists {
		return domain.ErrDuplicate
	}
	r.st.units[unit.ID] = *unit
	return nil
}

func (r *unitRepo) GetByID(_ context.Context, id string) (*entity.InventoryUnit, error) {
	u, ok := r.st.units[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *unitRepo) List(_ context.Context, filter repository.UnitFilter) ([]*entity.InventoryUnit, error) {
	var out []*entity.InventoryUnit
	for _, u := range r.st.units {
		u := u
		if filter.BloodType != "" && u.BloodType != filter.BloodType {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		out = append(out, &u)
	}
	entity.SortUnitsFEFO(out)
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type requestRepo struct{ st *state }

func (r *requestRepo) Create(_ context.Context, req *entity.BloodRequest) error {
	if _, exists := r.st.requests[req.ID]; exists {
		return domain.ErrDuplicate
	}
	r.st.requests[req.ID] = *req
	return nil
}

func (r *requestRepo) GetForUpdate(_ context.Context, id string) (*entity.BloodRequest, error) {
	req, ok := r.st.requests[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r *requestRepo) UpdateStatus(_ context.Context, req *entity.BloodRequest) error {
	if _, ok := r.st.requests[req.ID]; !ok {
		return domain.ErrRequestNotFound
	}
	if (req.Status == entity.RequestStatusApproved) != (req.FulfilledDate != nil) {
		return fmt.Errorf("%w: fulfilled_date inconsistente con el estado %s", domain.ErrInvalidInput, req.Status)
	}
	r.st.requests[req.ID] = *req
	return nil
}

type shipmentRepo struct{ st *state }

func (r *shipmentRepo) CreateBatch(_ context.Context, shipments []*entity.Shipment) error {
	for _, sh := range shipments {
		if sh.DispatchedVolume <= 0 {
			return fmt.Errorf("%w: envío sin volumen", domain.ErrInvalidInput)
		}
		r.st.shipments = append(r.st.shipments, *sh)
	}
	return nil
}

func (r *shipmentRepo) List(_ context.Context, filter repository.ShipmentFilter) ([]*entity.Shipment, error) {
	var out []*entity.Shipment
	for i := len(r.st.shipments) - 1; i >= 0; i-- {
		sh := r.st.shipments[i]
		if filter.RequestID != "" && sh.RequestID != filter.RequestID {
			continue
		}
		if filter.HospitalID != "" && r.st.requests[sh.RequestID].HospitalID != filter.HospitalID {
			continue
		}
		out = append(out, &sh)
	}
	return out, nil
}

type appointmentRepo struct{ st *state }

func (r *appointmentRepo) Create(ctx context.Context, appt *entity.Appointment) error {
	if _, exists := r.st.appointments[appt.ID]; exists {
		return domain.ErrDuplicate
	}
	if appt.Status == entity.AppointmentStatusScheduled {
		busy, _ := r.HasScheduled(ctx, appt.DonorID)
		if busy {
			return domain.ErrAppointmentAlreadyScheduled
		}
	}
	r.st.appointments[appt.ID] = *appt
	return nil
}

func (r *appointmentRepo) GetForUpdate(_ context.Context, id string) (*entity.Appointment, error) {
	a, ok := r.st.appointments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *appointmentRepo) HasScheduled(_ context.Context, donorID string) (bool, error) {
	for _, a := range r.st.appointments {
		if a.DonorID == donorID && a.Status == entity.AppointmentStatusScheduled {
			return true, nil
		}
	}
	return false, nil
}

func (r *appointmentRepo) UpdateStatus(_ context.Context, appt *entity.Appointment) error {
	if _, ok := r.st.appointments[appt.ID]; !ok {
		return domain.ErrAppointmentNotFound
	}
	r.st.appointments[appt.ID] = *appt
	return nil
}

type userRepo struct{ st *state }

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) GetForUpdate(ctx context.Context, id string) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

// NotificationRepository registro de notificaciones sobre el Store, fuera de cualquier transacción del ledger.
type NotificationRepository struct{ store *Store }

// NewNotificationRepository crea el repositorio.
func NewNotificationRepository(store *Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

// Create agrega el intento al registro.
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	if err := r.store.acquire(ctx); err != nil {
		return err
	}
	defer r.store.release()
	r.store.state.notifications = append(r.store.state.notifications, *n)
	return nil
}
