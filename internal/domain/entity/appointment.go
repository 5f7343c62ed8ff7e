package entity

import "time"

// AppointmentStatus estado de una cita de donación.
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusRejected  AppointmentStatus = "rejected"
	AppointmentStatusMissed    AppointmentStatus = "missed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Terminal indica si el estado ya no admite transiciones.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case AppointmentStatusCompleted, AppointmentStatusRejected, AppointmentStatusMissed, AppointmentStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo: solo desde scheduled hacia cualquiera de los cuatro estados terminales.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	return s == AppointmentStatusScheduled && next.Terminal()
}

// Appointment visita programada de un donante a un centro.
type Appointment struct {
	ID            string
	DonorID       string
	CenterID      string
	ScheduledDate time.Time
	TimeSlot      string
	Status        AppointmentStatus
	UpdatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TransitionTo aplica la transición o devuelve *TransitionError.
// completed es el único estado que dispara el abono de la donación al ledger.
func (a *Appointment) TransitionTo(next AppointmentStatus, at time.Time, actor string) error {
	if !a.Status.CanTransitionTo(next) {
		return &TransitionError{Entity: "appointment", From: string(a.Status), To: string(next)}
	}
	a.Status = next
	a.UpdatedAt = at
	a.UpdatedBy = actor
	return nil
}
