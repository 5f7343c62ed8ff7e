package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lifeflow-api/internal/application/dto"
	"github.com/jhoicas/lifeflow-api/internal/application/ledger"
	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
	"github.com/jhoicas/lifeflow-api/internal/domain/repository"
)

// LedgerHandler maneja solicitudes, inventario, envíos y citas.
type LedgerHandler struct {
	uc  *ledger.LedgerUseCase
	log zerolog.Logger
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledger.LedgerUseCase, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{uc: uc, log: log}
}

// SubmitRequest godoc
// @Summary      Registrar solicitud de sangre
// @Description  Un hospital registra una solicitud en estado pending. Un admin debe indicar hospital_id.
// @Tags         Requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreateBloodRequestRequest  true  "Solicitud"
// @Success      201   {object}  dto.BloodRequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/requests [post]
func (h *LedgerHandler) SubmitRequest(c *fiber.Ctx) error {
	var body dto.CreateBloodRequestRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "cuerpo JSON inválido"})
	}
	actor := actorFrom(c)
	hospitalID := body.HospitalID
	if actor.Role == entity.RoleHospital {
		hospitalID = actor.UserID
	}
	req, err := h.uc.SubmitRequest(c.UserContext(), actor, ledger.SubmitRequestInput{
		HospitalID:  hospitalID,
		BloodType:   body.BloodType,
		UnitsNeeded: body.UnitsNeeded,
		Urgency:     body.Urgency,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToBloodRequestResponse(req))
}

// FulfillRequest godoc
// @Summary      Despachar solicitud
// @Description  Consume unidades FEFO del grupo solicitado, crea los envíos y aprueba la solicitud en una sola transacción.
// @Tags         Requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID de la solicitud"
// @Success      200  {object}  dto.FulfillResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Failure      504  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/fulfill [post]
func (h *LedgerHandler) FulfillRequest(c *fiber.Ctx) error {
	res, err := h.uc.FulfillRequest(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToFulfillResponse(res))
}

// RejectRequest godoc
// @Summary      Rechazar solicitud
// @Tags         Requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RejectResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/reject [post]
func (h *LedgerHandler) RejectRequest(c *fiber.Ctx) error {
	res, err := h.uc.RejectRequest(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.RejectResponse{RequestID: res.RequestID, Status: string(entity.RequestStatusRejected)})
}

// ListShipments godoc
// @Summary      Registro de envíos
// @Description  Lista envíos, más recientes primero. Filtrable por request_id. Un hospital solo ve sus propios envíos.
// @Tags         Shipments
// @Produce      json
// @Security     BearerAuth
// @Param        request_id  query     string  false  "ID de la solicitud"
// @Success      200         {array}   dto.ShipmentResponse
// @Router       /api/shipments [get]
func (h *LedgerHandler) ListShipments(c *fiber.Ctx) error {
	filter := repository.ShipmentFilter{RequestID: c.Query("request_id")}
	if actor := actorFrom(c); actor.Role == entity.RoleHospital {
		filter.HospitalID = actor.UserID
	}
	list, err := h.uc.ListShipments(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToShipmentResponses(list))
}

// ListInventory godoc
// @Summary      Listar inventario
// @Description  Unidades ordenadas por caducidad. En query string "+" llega como espacio; se acepta "O+" codificado o "O ".
// @Tags         Inventory
// @Produce      json
// @Security     BearerAuth
// @Param        blood_type  query     string  false  "Grupo sanguíneo"
// @Param        status      query     string  false  "stored | exhausted | rejected | in_transit"
// @Param        limit       query     int     false  "Máximo (default 100)"
// @Param        offset      query     int     false  "Desplazamiento"
// @Success      200         {array}   dto.InventoryUnitResponse
// @Failure      400         {object}  dto.ErrorResponse
// @Router       /api/inventory [get]
func (h *LedgerHandler) ListInventory(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "parámetros de paginación inválidos"})
	}
	page.DefaultPage()
	filter := repository.UnitFilter{
		BloodType: entity.BloodType(queryBloodType(c.Query("blood_type"))),
		Status:    entity.UnitStatus(c.Query("status")),
		Limit:     page.Limit,
		Offset:    page.Offset,
	}
	units, err := h.uc.ListInventory(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToInventoryUnitResponses(units))
}

// AddStock godoc
// @Summary      Cargar unidad de stock
// @Tags         Inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.AddStockRequest  true  "Unidad"
// @Success      201   {object}  dto.InventoryUnitResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory [post]
func (h *LedgerHandler) AddStock(c *fiber.Ctx) error {
	var body dto.AddStockRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "cuerpo JSON inválido"})
	}
	in := ledger.AddStockInput{BloodType: body.BloodType, Volume: body.Volume, Location: body.Location}
	if body.CollectedDate != nil {
		in.CollectedDate = *body.CollectedDate
	}
	unit, err := h.uc.AddStock(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToInventoryUnitResponse(unit))
}

// ScheduleAppointment godoc
// @Summary      Programar cita de donación
// @Description  Un donante solo puede tener una cita programada a la vez. Un admin debe indicar donor_id.
// @Tags         Appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.ScheduleAppointmentRequest  true  "Cita"
// @Success      201   {object}  dto.AppointmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/appointments [post]
func (h *LedgerHandler) ScheduleAppointment(c *fiber.Ctx) error {
	var body dto.ScheduleAppointmentRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "cuerpo JSON inválido"})
	}
	actor := actorFrom(c)
	donorID := body.DonorID
	if actor.Role == entity.RoleDonor {
		donorID = actor.UserID
	}
	appt, err := h.uc.ScheduleAppointment(c.UserContext(), actor, ledger.ScheduleAppointmentInput{
		DonorID:       donorID,
		CenterID:      body.CenterID,
		ScheduledDate: body.ScheduledDate,
		TimeSlot:      body.TimeSlot,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToAppointmentResponse(appt))
}

// CompleteAppointment godoc
// @Summary      Completar cita y abonar donación
// @Description  Marca la cita como completed y suma 450 ml al inventario del grupo del donante.
// @Tags         Appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID de la cita"
// @Success      200  {object}  dto.CreditResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/appointments/{id}/complete [post]
func (h *LedgerHandler) CompleteAppointment(c *fiber.Ctx) error {
	res, err := h.uc.CreditDonation(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToCreditResponse(res))
}

// CloseAppointment godoc
// @Summary      Cerrar cita sin donación
// @Tags         Appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                       true  "ID de la cita"
// @Param        body  body      dto.CloseAppointmentRequest  true  "Estado final"
// @Success      200   {object}  dto.AppointmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/appointments/{id}/close [post]
func (h *LedgerHandler) CloseAppointment(c *fiber.Ctx) error {
	var body dto.CloseAppointmentRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "cuerpo JSON inválido"})
	}
	appt, err := h.uc.CloseAppointment(c.UserContext(), actorFrom(c), c.Params("id"), entity.AppointmentStatus(body.Status))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToAppointmentResponse(appt))
}

func queryBloodType(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	// "O+" sin codificar llega como "O ".
	if !strings.HasSuffix(s, "+") && !strings.HasSuffix(s, "-") {
		s += "+"
	}
	return strings.ToUpper(s)
}
