package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/lifeflow-api/internal/domain"
	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
	"github.com/jhoicas/lifeflow-api/internal/domain/repository"
)

// SubmitRequestInput datos de una solicitud nueva de un hospital.
type SubmitRequestInput struct {
	HospitalID  string
	BloodType   string
	UnitsNeeded int
	Urgency     string
}

// SubmitRequest registra una solicitud en estado pending. Debe pedir al menos 1 unidad.
func (uc *LedgerUseCase) SubmitRequest(ctx context.Context, actor Actor, in SubmitRequestInput) (*entity.BloodRequest, error) {
	bloodType, err := entity.ParseBloodType(in.BloodType)
	if err != nil || in.HospitalID == "" || in.UnitsNeeded < 1 {
		return nil, domain.ErrInvalidInput
	}
	urgency := entity.Urgency(in.Urgency)
	if urgency == "" {
		urgency = entity.UrgencyNormal
	}
	if !urgency.Valid() {
		return nil, domain.ErrInvalidInput
	}

	req := &entity.BloodRequest{
		ID:            uuid.New().String(),
		HospitalID:    in.HospitalID,
		BloodType:     bloodType,
		UnitsNeeded:   in.UnitsNeeded,
		Urgency:       urgency,
		Status:        entity.RequestStatusPending,
		RequestedDate: uc.now(),
	}
	err = uc.withRetry(ctx, "submit_request", func(ctx context.Context) error {
		return uc.txRunner.Run(ctx, func(repos Repos) error {
			hospital, err := repos.Users.GetByID(ctx, in.HospitalID)
			if err != nil {
				return err
			}
			if hospital == nil || hospital.Role != entity.RoleHospital {
				return domain.ErrHospitalNotFound
			}
			return repos.Requests.Create(ctx, req)
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("request_id", req.ID).Str("actor", actor.String()).Str("blood_type", string(bloodType)).Int("units", req.UnitsNeeded).Msg("solicitud registrada")
	return req, nil
}

// ScheduleAppointmentInput datos de una cita nueva.
type ScheduleAppointmentInput struct {
	DonorID       string
	CenterID      string
	ScheduledDate time.Time
	TimeSlot      string
}

// ScheduleAppointment crea una cita scheduled. Un donante puede tener como máximo una:
// la comprobación se hace con la fila del donante bloqueada.
func (uc *LedgerUseCase) ScheduleAppointment(ctx context.Context, actor Actor, in ScheduleAppointmentInput) (*entity.Appointment, error) {
	if in.DonorID == "" || in.CenterID == "" || in.TimeSlot == "" || in.ScheduledDate.IsZero() {
		return nil, domain.ErrInvalidInput
	}

	var appt *entity.Appointment
	err := uc.withRetry(ctx, "schedule_appointment", func(ctx context.Context) error {
		appt = nil
		return uc.txRunner.Run(ctx, func(repos Repos) error {
			now := uc.now()
			donor, err := repos.Users.GetForUpdate(ctx, in.DonorID)
			if err != nil {
				return err
			}
			if donor == nil || donor.Role != entity.RoleDonor {
				return domain.ErrDonorNotFound
			}
			busy, err := repos.Appointments.HasScheduled(ctx, in.DonorID)
			if err != nil {
				return err
			}
			if busy {
				return domain.ErrAppointmentAlreadyScheduled
			}
			appt = &entity.Appointment{
				ID:            uuid.New().String(),
				DonorID:       in.DonorID,
				CenterID:      in.CenterID,
				ScheduledDate: in.ScheduledDate,
				TimeSlot:      in.TimeSlot,
				Status:        entity.AppointmentStatusScheduled,
				UpdatedBy:     actor.String(),
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			return repos.Appointments.Create(ctx, appt)
		})
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// CloseAppointment cierra una cita sin donación (rejected, missed o cancelled).
// completed solo se alcanza a través de CreditDonation.
func (uc *LedgerUseCase) CloseAppointment(ctx context.Context, actor Actor, appointmentID string, status entity.AppointmentStatus) (*entity.Appointment, error) {
	switch status {
	case entity.AppointmentStatusRejected, entity.AppointmentStatusMissed, entity.AppointmentStatusCancelled:
	default:
		return nil, domain.ErrInvalidInput
	}
	if appointmentID == "" {
		return nil, domain.ErrAppointmentNotFound
	}

	var appt *entity.Appointment
	err := uc.withRetry(ctx, "close_appointment", func(ctx context.Context) error {
		appt = nil
		return uc.txRunner.Run(ctx, func(repos Repos) error {
			var err error
			appt, err = repos.Appointments.GetForUpdate(ctx, appointmentID)
			if err != nil {
				return err
			}
			if appt == nil {
				return domain.ErrAppointmentNotFound
			}
			if appt.Status != entity.AppointmentStatusScheduled {
				return domain.ErrAppointmentNotScheduled
			}
			if err := appt.TransitionTo(status, uc.now(), actor.String()); err != nil {
				return err
			}
			return repos.Appointments.UpdateStatus(ctx, appt)
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("appointment_id", appt.ID).Str("status", string(status)).Str("actor", actor.String()).Msg("cita cerrada")
	return appt, nil
}

// AddStockInput carga inicial de stock (unidades que no provienen de una cita).
type AddStockInput struct {
	BloodType     string
	Volume        int
	CollectedDate time.Time
	Location      string
}

// AddStock crea una unidad stored. El volumen debe estar entre 1 y la capacidad nominal (450 ml).
func (uc *LedgerUseCase) AddStock(ctx context.Context, actor Actor, in AddStockInput) (*entity.InventoryUnit, error) {
	bloodType, err := entity.ParseBloodType(in.BloodType)
	if err != nil || in.Volume < 1 || in.Volume > entity.StandardUnitVolume {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	collected := in.CollectedDate
	if collected.IsZero() {
		collected = now
	}
	if collected.After(now) {
		return nil, domain.ErrInvalidInput
	}
	location := in.Location
	if location == "" {
		location = entity.DefaultStorageLocation
	}

	unit := &entity.InventoryUnit{
		ID:              uuid.New().String(),
		BloodType:       bloodType,
		RemainingVolume: in.Volume,
		CollectedDate:   collected,
		ExpiryDate:      entity.ExpiryFor(collected),
		Status:          entity.UnitStatusStored,
		CurrentLocation: location,
		CreatedBy:       actor.String(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err = uc.withRetry(ctx, "add_stock", func(ctx context.Context) error {
		return uc.txRunner.Run(ctx, func(repos Repos) error {
			return repos.Units.Create(ctx, unit)
		})
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// ListInventory lista unidades ordenadas por caducidad.
func (uc *LedgerUseCase) ListInventory(ctx context.Context, filter repository.UnitFilter) ([]*entity.InventoryUnit, error) {
	if filter.BloodType != "" && !filter.BloodType.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	var units []*entity.InventoryUnit
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		units, err = repos.Units.List(ctx, filter)
		return err
	})
	return units, err
}

// ListShipments registro de tracking; un filtro vacío devuelve todos.
func (uc *LedgerUseCase) ListShipments(ctx context.Context, filter repository.ShipmentFilter) ([]*entity.Shipment, error) {
	var shipments []*entity.Shipment
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		shipments, err = repos.Shipments.List(ctx, filter)
		return err
	})
	return shipments, err
}
