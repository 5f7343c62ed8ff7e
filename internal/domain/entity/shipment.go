package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentStatus estado de un envío (registro de tracking).
type ShipmentStatus string

const (
	ShipmentStatusInTransit ShipmentStatus = "in_transit"
	// ShipmentStatusDelivered no lo asigna ninguna operación: la confirmación de entrega no está definida.
	ShipmentStatusDelivered ShipmentStatus = "delivered"
)

// Shipment registro inmutable del volumen movido desde una unidad para atender una solicitud.
type Shipment struct {
	ID                  string
	InventoryUnitID     string
	RequestID           string
	DispatchedVolume    int             // ml, siempre > 0
	UnitsDispatched     decimal.Decimal // DispatchedVolume / 450 redondeado a 2 decimales
	SourceLocation      string
	DestinationLocation string
	Status              ShipmentStatus
	ExpectedArrival     time.Time
	CreatedBy           string
	CreatedAt           time.Time
}

// UnitsForVolume convierte ml a unidades estándar con 2 decimales.
func UnitsForVolume(volume int) decimal.Decimal {
	return decimal.NewFromInt(int64(volume)).
		Div(decimal.NewFromInt(StandardUnitVolume)).
		Round(2)
}
