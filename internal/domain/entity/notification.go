package entity

import "time"

// Eventos de notificación emitidos por el ledger.
const (
	EventRequestApproved  = "request_approved"
	EventRequestRejected  = "request_rejected"
	EventDonationCredited = "donation_credited"
)

// Estados del registro de notificaciones.
const (
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// Notification mensaje best-effort hacia un destinatario; se registra tras el intento de envío.
type Notification struct {
	ID        string
	Recipient string
	Subject   string
	Message   string
	Event     string
	BloodType BloodType
	Units     int
	Status    string
	Error     string
	CreatedAt time.Time
}
