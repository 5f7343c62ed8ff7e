package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/lifeflow-api/internal/domain"
)

// RequestStatus estado de una solicitud de sangre de un hospital.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Urgency prioridad declarada por el hospital; determina el tiempo estimado de llegada.
type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyUrgent Urgency = "urgent"
)

// Valid indica si la urgencia es conocida.
func (u Urgency) Valid() bool {
	return u == UrgencyNormal || u == UrgencyUrgent
}

// TransitDuration tiempo estimado de transporte: 1 día urgente, 2 días normal.
func (u Urgency) TransitDuration() time.Duration {
	if u == UrgencyUrgent {
		return 24 * time.Hour
	}
	return 48 * time.Hour
}

// CanTransitionTo: pending -> approved | rejected; approved y rejected son terminales.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	return s == RequestStatusPending && (next == RequestStatusApproved || next == RequestStatusRejected)
}

// BloodRequest pedido de N unidades estándar de un grupo sanguíneo.
type BloodRequest struct {
	ID            string
	HospitalID    string
	BloodType     BloodType
	UnitsNeeded   int
	Urgency       Urgency
	Status        RequestStatus
	RequestedDate time.Time
	FulfilledDate *time.Time // solo con status = approved
	DecidedBy     string
}

// RequiredVolume volumen total en ml que exige la solicitud.
func (r *BloodRequest) RequiredVolume() int {
	return r.UnitsNeeded * StandardUnitVolume
}

// Approve marca la solicitud como aprobada y fija fulfilled_date.
func (r *BloodRequest) Approve(at time.Time, actor string) error {
	if err := r.transition(RequestStatusApproved); err != nil {
		return err
	}
	r.FulfilledDate = &at
	r.DecidedBy = actor
	return nil
}

// Reject marca la solicitud como rechazada; fulfilled_date queda vacío.
func (r *BloodRequest) Reject(actor string) error {
	if err := r.transition(RequestStatusRejected); err != nil {
		return err
	}
	r.FulfilledDate = nil
	r.DecidedBy = actor
	return nil
}

func (r *BloodRequest) transition(next RequestStatus) error {
	if !r.Status.CanTransitionTo(next) {
		return &TransitionError{Entity: "blood_request", From: string(r.Status), To: string(next)}
	}
	r.Status = next
	return nil
}

// TransitionError describe una transición ilegal. errors.Is(err, domain.ErrInvalidTransition) es true.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: transición %s -> %s no permitida", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return domain.ErrInvalidTransition }
