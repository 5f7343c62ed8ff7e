package entity

import (
	"sort"
	"time"
)

// Constantes del ledger de sangre (volúmenes en ml).
const (
	StandardUnitVolume     = 450 // 1 unidad estándar = 450 ml; también capacidad nominal de una bolsa
	DonationVolume         = StandardUnitVolume
	ShelfLife              = 42 * 24 * time.Hour
	DefaultStorageLocation = "Central Storage"
)

// UnitStatus estado de una unidad de inventario.
type UnitStatus string

const (
	UnitStatusStored    UnitStatus = "stored"
	UnitStatusInTransit UnitStatus = "in_transit" // existe en el modelo; el coordinador nunca lo asigna a una unidad
	UnitStatusExhausted UnitStatus = "exhausted"
	UnitStatusRejected  UnitStatus = "rejected"
)

// InventoryUnit lote físico de un único grupo sanguíneo, consumible parcialmente y con caducidad.
type InventoryUnit struct {
	ID              string
	BloodType       BloodType
	RemainingVolume int
	CollectedDate   time.Time
	ExpiryDate      time.Time
	Status          UnitStatus
	CurrentLocation string
	DonorID         *string
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ExpiryFor devuelve la fecha de caducidad para una recolección.
func ExpiryFor(collected time.Time) time.Time {
	return collected.Add(ShelfLife)
}

// Eligible indica si la unidad puede participar en una asignación en el instante now.
func (u *InventoryUnit) Eligible(now time.Time) bool {
	return u.Status == UnitStatusStored && !u.ExpiryDate.Before(now) && u.RemainingVolume > 0
}

// StatusForVolume aplica la transición implícita stored -> exhausted al llegar a 0 ml.
func StatusForVolume(current UnitStatus, remaining int) UnitStatus {
	if remaining == 0 {
		return UnitStatusExhausted
	}
	return current
}

// UnitDelta nuevo estado de una unidad tras una operación del coordinador.
type UnitDelta struct {
	UnitID       string
	NewRemaining int
	NewStatus    UnitStatus
}

// SortUnitsFEFO ordena por caducidad ascendente y, a igualdad, por ID ascendente.
func SortUnitsFEFO(units []*InventoryUnit) {
	sort.SliceStable(units, func(i, j int) bool {
		a, b := units[i], units[j]
		if !a.ExpiryDate.Equal(b.ExpiryDate) {
			return a.ExpiryDate.Before(b.ExpiryDate)
		}
		return a.ID < b.ID
	})
}
