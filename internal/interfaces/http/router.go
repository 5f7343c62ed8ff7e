package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lifeflow-api/internal/application/ledger"
	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC  *ledger.LedgerUseCase
	JWTSecret string
	Log       zerolog.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	h := NewLedgerHandler(deps.LedgerUC, deps.Log)
	admin := RequireRole(entity.RoleAdmin)

	// Solicitudes de sangre
	requests := protected.Group("/requests")
	requests.Post("/", RequireRole(entity.RoleAdmin, entity.RoleHospital), h.SubmitRequest)
	requests.Post("/:id/fulfill", admin, h.FulfillRequest)
	requests.Post("/:id/reject", admin, h.RejectRequest)

	// Envíos
	protected.Get("/shipments", RequireRole(entity.RoleAdmin, entity.RoleHospital), h.ListShipments)

	// Inventario
	inventory := protected.Group("/inventory", admin)
	inventory.Get("/", h.ListInventory)
	inventory.Post("/", h.AddStock)

	// Citas de donación
	appointments := protected.Group("/appointments")
	appointments.Post("/", RequireRole(entity.RoleAdmin, entity.RoleDonor), h.ScheduleAppointment)
	appointments.Post("/:id/complete", admin, h.CompleteAppointment)
	appointments.Post("/:id/close", admin, h.CloseAppointment)
}
