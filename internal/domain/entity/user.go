package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleHospital = "hospital"
	RoleDonor    = "donor"
)

// User hospital, donante o administrador. El ledger solo lee nombre, email y grupo sanguíneo.
type User struct {
	ID                        string
	Name                      string
	Email                     string
	Role                      string
	BloodType                 *BloodType // solo donantes
	EmailNotificationsEnabled bool
	CreatedAt                 time.Time
}
