package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lifeflow-api/internal/application/ledger"
	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
)

// CreateBloodRequestRequest cuerpo de POST /api/requests. hospital_id solo lo usa un admin.
type CreateBloodRequestRequest struct {
	HospitalID  string `json:"hospital_id,omitempty"`
	BloodType   string `json:"blood_type"`
	UnitsNeeded int    `json:"units_needed"`
	Urgency     string `json:"urgency"`
}

// BloodRequestResponse solicitud de sangre.
type BloodRequestResponse struct {
	ID            string     `json:"id"`
	HospitalID    string     `json:"hospital_id"`
	BloodType     string     `json:"blood_type"`
	UnitsNeeded   int        `json:"units_needed"`
	Urgency       string     `json:"urgency"`
	Status        string     `json:"status"`
	RequestedDate time.Time  `json:"requested_date"`
	FulfilledDate *time.Time `json:"fulfilled_date,omitempty"`
}

// ShipmentResponse registro de tracking.
type ShipmentResponse struct {
	ID                  string          `json:"id"`
	InventoryUnitID     string          `json:"inventory_unit_id"`
	RequestID           string          `json:"request_id"`
	DispatchedVolume    int             `json:"dispatched_volume"`
	UnitsDispatched     decimal.Decimal `json:"units_dispatched"`
	SourceLocation      string          `json:"source_location"`
	DestinationLocation string          `json:"destination_location"`
	Status              string          `json:"status"`
	ExpectedArrival     time.Time       `json:"expected_arrival"`
}

// FulfillResponse resultado de despachar una solicitud.
type FulfillResponse struct {
	RequestID        string             `json:"request_id"`
	HospitalName     string             `json:"hospital_name"`
	UnitsNeeded      int                `json:"units_needed"`
	DispatchedVolume int                `json:"dispatched_volume"`
	Shipments        []ShipmentResponse `json:"shipments"`
}

// RejectResponse resultado de rechazar una solicitud.
type RejectResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// AddStockRequest cuerpo de POST /api/inventory.
type AddStockRequest struct {
	BloodType     string     `json:"blood_type"`
	Volume        int        `json:"volume"`
	CollectedDate *time.Time `json:"collected_date,omitempty"`
	Location      string     `json:"location,omitempty"`
}

// InventoryUnitResponse unidad de inventario.
type InventoryUnitResponse struct {
	ID              string    `json:"id"`
	BloodType       string    `json:"blood_type"`
	RemainingVolume int       `json:"remaining_volume"`
	CollectedDate   time.Time `json:"collected_date"`
	ExpiryDate      time.Time `json:"expiry_date"`
	Status          string    `json:"status"`
	CurrentLocation string    `json:"current_location"`
	DonorID         *string   `json:"donor_id,omitempty"`
}

// ScheduleAppointmentRequest cuerpo de POST /api/appointments. donor_id solo lo usa un admin.
type ScheduleAppointmentRequest struct {
	DonorID       string    `json:"donor_id,omitempty"`
	CenterID      string    `json:"center_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
	TimeSlot      string    `json:"time_slot"`
}

// CloseAppointmentRequest cuerpo de POST /api/appointments/:id/close.
type CloseAppointmentRequest struct {
	Status string `json:"status"` // rejected | missed | cancelled
}

// AppointmentResponse cita de donación.
type AppointmentResponse struct {
	ID            string    `json:"id"`
	DonorID       string    `json:"donor_id"`
	CenterID      string    `json:"center_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
	TimeSlot      string    `json:"time_slot"`
	Status        string    `json:"status"`
}

// CreditResponse resultado de completar una cita con donación.
type CreditResponse struct {
	AppointmentID   string `json:"appointment_id"`
	UnitID          string `json:"unit_id"`
	Merged          bool   `json:"merged"`
	RemainingVolume int    `json:"remaining_volume"`
}

// ToBloodRequestResponse mapea la entidad.
func ToBloodRequestResponse(r *entity.BloodRequest) BloodRequestResponse {
	return BloodRequestResponse{
		ID:            r.ID,
		HospitalID:    r.HospitalID,
		BloodType:     string(r.BloodType),
		UnitsNeeded:   r.UnitsNeeded,
		Urgency:       string(r.Urgency),
		Status:        string(r.Status),
		RequestedDate: r.RequestedDate,
		FulfilledDate: r.FulfilledDate,
	}
}

// ToShipmentResponses mapea una lista de envíos.
func ToShipmentResponses(list []*entity.Shipment) []ShipmentResponse {
	out := make([]ShipmentResponse, 0, len(list))
	for _, s := range list {
		out = append(out, ShipmentResponse{
			ID:                  s.ID,
			InventoryUnitID:     s.InventoryUnitID,
			RequestID:           s.RequestID,
			DispatchedVolume:    s.DispatchedVolume,
			UnitsDispatched:     s.UnitsDispatched,
			SourceLocation:      s.SourceLocation,
			DestinationLocation: s.DestinationLocation,
			Status:              string(s.Status),
			ExpectedArrival:     s.ExpectedArrival,
		})
	}
	return out
}

// ToFulfillResponse mapea el resultado del coordinador.
func ToFulfillResponse(r *ledger.FulfillResult) FulfillResponse {
	return FulfillResponse{
		RequestID:        r.RequestID,
		HospitalName:     r.HospitalName,
		UnitsNeeded:      r.UnitsNeeded,
		DispatchedVolume: r.DispatchedVolume,
		Shipments:        ToShipmentResponses(r.Shipments),
	}
}

// ToInventoryUnitResponses mapea una lista de unidades.
func ToInventoryUnitResponses(list []*entity.InventoryUnit) []InventoryUnitResponse {
	out := make([]InventoryUnitResponse, 0, len(list))
	for _, u := range list {
		out = append(out, ToInventoryUnitResponse(u))
	}
	return out
}

// ToInventoryUnitResponse mapea una unidad.
func ToInventoryUnitResponse(u *entity.InventoryUnit) InventoryUnitResponse {
	return InventoryUnitResponse{
		ID:              u.ID,
		BloodType:       string(u.BloodType),
		RemainingVolume: u.RemainingVolume,
		CollectedDate:   u.CollectedDate,
		ExpiryDate:      u.ExpiryDate,
		Status:          string(u.Status),
		CurrentLocation: u.CurrentLocation,
		DonorID:         u.DonorID,
	}
}

// ToAppointmentResponse mapea la cita.
func ToAppointmentResponse(a *entity.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:            a.ID,
		DonorID:       a.DonorID,
		CenterID:      a.CenterID,
		ScheduledDate: a.ScheduledDate,
		TimeSlot:      a.TimeSlot,
		Status:        string(a.Status),
	}
}

// ToCreditResponse mapea el abono de la donación.
func ToCreditResponse(r *ledger.CreditResult) CreditResponse {
	return CreditResponse{
		AppointmentID:   r.AppointmentID,
		UnitID:          r.UnitID,
		Merged:          r.Merged,
		RemainingVolume: r.RemainingVolume,
	}
}
