package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lifeflow-api/internal/domain"
	"github.com/jhoicas/lifeflow-api/internal/domain/allocation"
	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
)

// LedgerUseCase coordinador transaccional del ledger de sangre: cada operación corre
// completa (leer candidatos → planificar → aplicar → registrar envío → actualizar estado)
// dentro de una única transacción, y notifica solo después del Commit.
type LedgerUseCase struct {
	txRunner TxRunner
	notifier Notifier
	retry    RetryConfig
	log      zerolog.Logger
	now      func() time.Time
}

// Option configura el caso de uso.
type Option func(*LedgerUseCase)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *LedgerUseCase) { uc.now = now }
}

// WithRetry reemplaza la política de reintentos.
func WithRetry(cfg RetryConfig) Option {
	return func(uc *LedgerUseCase) { uc.retry = cfg }
}

// WithLogger inyecta el logger.
func WithLogger(log zerolog.Logger) Option {
	return func(uc *LedgerUseCase) { uc.log = log }
}

// NewLedgerUseCase construye el coordinador. notifier puede ser nil (sin notificaciones).
func NewLedgerUseCase(txRunner TxRunner, notifier Notifier, opts ...Option) *LedgerUseCase {
	uc := &LedgerUseCase{
		txRunner: txRunner,
		notifier: notifier,
		retry:    DefaultRetryConfig(),
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// FulfillResult resultado de una solicitud despachada.
type FulfillResult struct {
	RequestID        string
	HospitalName     string
	UnitsNeeded      int
	DispatchedVolume int
	Shipments        []*entity.Shipment
}

// FulfillRequest atiende una solicitud pendiente consumiendo unidades en orden FEFO.
// Errores esperados: domain.ErrRequestNotFound, domain.ErrRequestNotPending, domain.ErrInsufficientStock
// (la solicitud sigue pendiente y sin cambios), domain.ErrBusy, domain.ErrTimeout.
func (uc *LedgerUseCase) FulfillRequest(ctx context.Context, actor Actor, requestID string) (*FulfillResult, error) {
	if requestID == "" {
		return nil, domain.ErrRequestNotFound
	}

	var (
		result   *FulfillResult
		hospital *entity.User
		req      *entity.BloodRequest
	)
	err := uc.withRetry(ctx, "fulfill_request", func(ctx context.Context) error {
		result, hospital, req = nil, nil, nil
		return uc.txRunner.Run(ctx, func(repos Repos) error {
			now := uc.now()

			var err error
			req, err = repos.Requests.GetForUpdate(ctx, requestID)
			if err != nil {
				return err
			}
			if req == nil {
				return domain.ErrRequestNotFound
			}
			if req.Status != entity.RequestStatusPending {
				return domain.ErrRequestNotPending
			}

			hospital, err = repos.Users.GetByID(ctx, req.HospitalID)
			if err != nil {
				return err
			}
			if hospital == nil {
				return domain.ErrHospitalNotFound
			}

			units, err := repos.Units.FindCandidatesForUpdate(ctx, req.BloodType, now)
			if err != nil {
				return err
			}
			plan, err := allocation.Allocate(req.RequiredVolume(), allocation.Candidates(units))
			if err != nil {
				if errors.Is(err, allocation.ErrInfeasible) {
					return domain.ErrInsufficientStock
				}
				return fmt.Errorf("planificar asignación: %w", err)
			}

			if err := repos.Units.ApplyDeltas(ctx, plan.Deltas(), now); err != nil {
				return err
			}

			locations := make(map[string]string, len(units))
			for _, u := range units {
				locations[u.ID] = u.CurrentLocation
			}
			arrival := now.Add(req.Urgency.TransitDuration())
			shipments := make([]*entity.Shipment, 0, len(plan.Steps))
			for _, step := range plan.Steps {
				shipments = append(shipments, &entity.Shipment{
					ID:                  uuid.New().String(),
					InventoryUnitID:     step.UnitID,
					RequestID:           req.ID,
					DispatchedVolume:    step.Take,
					UnitsDispatched:     entity.UnitsForVolume(step.Take),
					SourceLocation:      locations[step.UnitID],
					DestinationLocation: hospital.Name,
					Status:              entity.ShipmentStatusInTransit,
					ExpectedArrival:     arrival,
					CreatedBy:           actor.String(),
					CreatedAt:           now,
				})
			}
			if err := repos.Shipments.CreateBatch(ctx, shipments); err != nil {
				return err
			}

			if err := req.Approve(now, actor.String()); err != nil {
				return err
			}
			if err := repos.Requests.UpdateStatus(ctx, req); err != nil {
				return err
			}

			result = &FulfillResult{
				RequestID:        req.ID,
				HospitalName:     hospital.Name,
				UnitsNeeded:      req.UnitsNeeded,
				DispatchedVolume: plan.Total(),
				Shipments:        shipments,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("request_id", result.RequestID).
		Str("actor", actor.String()).
		Int("volume_ml", result.DispatchedVolume).
		Int("shipments", len(result.Shipments)).
		Msg("solicitud despachada")

	uc.notify(ctx, hospital, entity.Notification{
		Subject:   fmt.Sprintf("Your Blood Request for %s is Approved", req.BloodType),
		Message:   fmt.Sprintf("Dear %s,\n\nYour blood request for %d unit(s) of %s has been approved and is on the way.\n\nRegards,\nLifeFlow Team", hospital.Name, req.UnitsNeeded, req.BloodType),
		Event:     entity.EventRequestApproved,
		BloodType: req.BloodType,
		Units:     req.UnitsNeeded,
	})
	return result, nil
}

// RejectResult resultado de un rechazo explícito.
type RejectResult struct {
	RequestID string
}

// RejectRequest rechaza una solicitud pendiente. Sobre una solicitud ya aprobada o rechazada
// devuelve domain.ErrRequestNotPending sin escribir nada.
func (uc *LedgerUseCase) RejectRequest(ctx context.Context, actor Actor, requestID string) (*RejectResult, error) {
	if requestID == "" {
		return nil, domain.ErrRequestNotFound
	}

	var (
		hospital *entity.User
		req      *entity.BloodRequest
	)
	err := uc.withRetry(ctx, "reject_request", func(ctx context.Context) error {
		hospital, req = nil, nil
		return uc.txRunner.Run(ctx, func(repos Repos) error {
			var err error
			req, err = repos.Requests.GetForUpdate(ctx, requestID)
			if err != nil {
				return err
			}
			if req == nil {
				return domain.ErrRequestNotFound
			}
			if req.Status != entity.RequestStatusPending {
				return domain.ErrRequestNotPending
			}
			if err := req.Reject(actor.String()); err != nil {
				return err
			}
			if err := repos.Requests.UpdateStatus(ctx, req); err != nil {
				return err
			}
			// El hospital solo se usa para notificar; si no existe el rechazo sigue siendo válido.
			hospital, err = repos.Users.GetByID(ctx, req.HospitalID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("request_id", req.ID).Str("actor", actor.String()).Msg("solicitud rechazada")

	uc.notify(ctx, hospital, entity.Notification{
		Subject:   "Blood Request Rejected",
		Message:   fmt.Sprintf("Dear %s,\n\nWe regret to inform you that your request for %d unit(s) of %s has been rejected.\n\nRegards,\nLifeFlow Team", nameOf(hospital), req.UnitsNeeded, req.BloodType),
		Event:     entity.EventRequestRejected,
		BloodType: req.BloodType,
		Units:     req.UnitsNeeded,
	})
	return &RejectResult{RequestID: req.ID}, nil
}

// CreditResult resultado de abonar una donación al ledger.
type CreditResult struct {
	AppointmentID   string
	UnitID          string
	Merged          bool // true si se sumó a una unidad existente
	RemainingVolume int
}

// CreditDonation completa una cita programada y abona 450 ml del grupo del donante:
// se suma a la unidad stored de menor caducidad o, si no hay, se crea una unidad nueva.
// La decisión merge-or-create y el cambio de estado de la cita son atómicos.
// Una cita inexistente o que ya no está programada devuelve domain.ErrAppointmentNotFound.
func (uc *LedgerUseCase) CreditDonation(ctx context.Context, actor Actor, appointmentID string) (*CreditResult, error) {
	if appointmentID == "" {
		return nil, domain.ErrAppointmentNotFound
	}

	var result *CreditResult
	err := uc.withRetry(ctx, "credit_donation", func(ctx context.Context) error {
		result = nil
		return uc.txRunner.Run(ctx, func(repos Repos) error {
			now := uc.now()

			appt, err := repos.Appointments.GetForUpdate(ctx, appointmentID)
			if err != nil {
				return err
			}
			// Solo una cita programada es abonable; cualquier otra cuenta como inexistente.
			if appt == nil || appt.Status != entity.AppointmentStatusScheduled {
				return domain.ErrAppointmentNotFound
			}

			donor, err := repos.Users.GetByID(ctx, appt.DonorID)
			if err != nil {
				return err
			}
			if donor == nil || donor.BloodType == nil {
				return domain.ErrDonorNotFound
			}
			bloodType := *donor.BloodType

			target, err := repos.Units.FindMergeTargetForUpdate(ctx, bloodType, now)
			if err != nil {
				return err
			}
			if target != nil {
				remaining := target.RemainingVolume + entity.DonationVolume
				if err := repos.Units.ApplyDeltas(ctx, []entity.UnitDelta{{
					UnitID:       target.ID,
					NewRemaining: remaining,
					NewStatus:    entity.UnitStatusStored,
				}}, now); err != nil {
					return err
				}
				result = &CreditResult{UnitID: target.ID, Merged: true, RemainingVolume: remaining}
			} else {
				donorID := donor.ID
				unit := &entity.InventoryUnit{
					ID:              uuid.New().String(),
					BloodType:       bloodType,
					RemainingVolume: entity.DonationVolume,
					CollectedDate:   now,
					ExpiryDate:      entity.ExpiryFor(now),
					Status:          entity.UnitStatusStored,
					CurrentLocation: entity.DefaultStorageLocation,
					DonorID:         &donorID,
					CreatedBy:       actor.String(),
					CreatedAt:       now,
					UpdatedAt:       now,
				}
				if err := repos.Units.Create(ctx, unit); err != nil {
					return err
				}
				result = &CreditResult{UnitID: unit.ID, RemainingVolume: unit.RemainingVolume}
			}

			if err := appt.TransitionTo(entity.AppointmentStatusCompleted, now, actor.String()); err != nil {
				return err
			}
			if err := repos.Appointments.UpdateStatus(ctx, appt); err != nil {
				return err
			}
			result.AppointmentID = appt.ID
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("appointment_id", result.AppointmentID).
		Str("unit_id", result.UnitID).
		Bool("merged", result.Merged).
		Str("actor", actor.String()).
		Msg("donación abonada al ledger")
	return result, nil
}

// notify encola la notificación después del Commit. Un fallo se registra y se descarta.
func (uc *LedgerUseCase) notify(ctx context.Context, recipient *entity.User, n entity.Notification) {
	if uc.notifier == nil || recipient == nil || recipient.Email == "" || !recipient.EmailNotificationsEnabled {
		return
	}
	n.Recipient = recipient.Email
	n.CreatedAt = uc.now()
	if err := uc.notifier.Notify(context.WithoutCancel(ctx), n); err != nil {
		uc.log.Warn().Err(err).Str("event", n.Event).Str("recipient", n.Recipient).Msg("notificación descartada")
	}
}

func nameOf(u *entity.User) string {
	if u == nil {
		return "hospital"
	}
	return u.Name
}
