package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ambulink/dispatch-core/internal/core/domain"
	"github.com/ambulink/dispatch-core/internal/core/ports"
)

// IdempotencyKeyHeader makes emergency intake safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

// EmergencyHandler handles HTTP requests for the emergency lifecycle.
type EmergencyHandler struct {
	service ports.DispatchService
}

func NewEmergencyHandler(service ports.DispatchService) *EmergencyHandler {
	return &EmergencyHandler{service: service}
}

// Create handles POST /v1/emergencies.
//
// @Summary      Register a new emergency
// @Description  Creates a PENDING emergency at the given fix. A repeated Idempotency-Key returns the first emergency with 200.
// @Tags         emergencies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                  false  "Client retry key"
// @Param        body             body      createEmergencyRequest  true   "Emergency"
// @Success      201              {object}  emergencyResponse
// @Success      200              {object}  emergencyResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /v1/emergencies [post]
func (h *EmergencyHandler) Create(c echo.Context) error {
	operator, err := operatorID(c)
	if err != nil {
		return err
	}

	var req createEmergencyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	key := c.Request().Header.Get(IdempotencyKeyHeader)
	res, err := h.service.CreateEmergency(c.Request().Context(), toCreateEmergencyInput(req, operator, key))
	if err != nil {
		return err
	}

	code := http.StatusCreated
	if res.AlreadyExisted {
		code = http.StatusOK
	}
	c.Response().Header().Set(echo.HeaderLocation, "/v1/emergencies/"+res.Emergency.ID)
	return c.JSON(code, toEmergencyResponse(res.Emergency))
}

// Get handles GET /v1/emergencies/:id.
//
// @Summary      Get an emergency
// @Tags         emergencies
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Emergency ID"
// @Success      200  {object}  emergencyResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/emergencies/{id} [get]
func (h *EmergencyHandler) Get(c echo.Context) error {
	e, err := h.service.GetEmergency(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmergencyResponse(e))
}

// List handles GET /v1/emergencies, the dispatcher board.
//
// @Summary      List emergencies ranked for dispatch
// @Description  Defaults to PENDING emergencies of any priority over all time, ordered HIGH first then oldest first.
// @Tags         emergencies
// @Produce      json
// @Security     BearerAuth
// @Param        priority  query     string  false  "HIGH, MEDIUM or LOW"
// @Param        status    query     string  false  "Emergency status (default PENDING)"
// @Param        window    query     string  false  "today, last24h, last7days or all"
// @Success      200       {object}  emergencyListResponse
// @Failure      422       {object}  errorResponse
// @Router       /v1/emergencies [get]
func (h *EmergencyHandler) List(c echo.Context) error {
	var q listEmergenciesQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}

	list, err := h.service.ListPending(c.Request().Context(), ports.ListEmergenciesInput{
		Priority: domain.Priority(q.Priority),
		Status:   domain.EmergencyStatus(q.Status),
		Window:   domain.TimeWindow(q.Window),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmergencyListResponse(list))
}

// Propose handles GET /v1/emergencies/:id/proposal?unit_id=.
//
// @Summary      Preview an assignment
// @Description  Checks that the emergency is PENDING and the unit dispatchable without changing either.
// @Tags         dispatch
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Emergency ID"
// @Param        unit_id  query     string  true  "Unit ID"
// @Success      200      {object}  assignmentResponse
// @Failure      404      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Router       /v1/emergencies/{id}/proposal [get]
func (h *EmergencyHandler) Propose(c echo.Context) error {
	unitID := c.QueryParam("unit_id")
	if unitID == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "unit_id is required")
	}

	p, err := h.service.ProposeAssignment(c.Request().Context(), c.Param("id"), unitID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assignmentResponse{
		Emergency: toEmergencyResponse(p.Emergency),
		Unit:      toUnitResponse(p.Unit),
	})
}

// Assign handles POST /v1/emergencies/:id/assignment.
//
// @Summary      Assign a unit
// @Description  Atomically links a PENDING emergency to an AVAILABLE unit; the emergency moves to EN_ROUTE.
// @Tags         dispatch
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Emergency ID"
// @Param        body  body      assignUnitRequest  true  "Unit to assign"
// @Success      200   {object}  assignmentResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/emergencies/{id}/assignment [post]
func (h *EmergencyHandler) Assign(c echo.Context) error {
	operator, err := operatorID(c)
	if err != nil {
		return err
	}

	var req assignUnitRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.AssignUnit(c.Request().Context(), c.Param("id"), req.UnitID, operator)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assignmentResponse{
		Emergency: toEmergencyResponse(res.Emergency),
		Unit:      toUnitResponse(res.Unit),
	})
}

// AdvanceStatus handles POST /v1/emergencies/:id/status.
//
// @Summary      Advance the emergency status
// @Tags         emergencies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Emergency ID"
// @Param        body  body      advanceStatusRequest  true  "Target status"
// @Success      200   {object}  emergencyResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/emergencies/{id}/status [post]
func (h *EmergencyHandler) AdvanceStatus(c echo.Context) error {
	operator, err := operatorID(c)
	if err != nil {
		return err
	}

	var req advanceStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	e, err := h.service.AdvanceStatus(c.Request().Context(), c.Param("id"), domain.EmergencyStatus(req.Status), operator, req.Detail)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmergencyResponse(e))
}

// Cancel handles POST /v1/emergencies/:id/cancel.
//
// @Summary      Cancel an emergency
// @Description  Cancels from any non-terminal status and frees the assigned unit.
// @Tags         emergencies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true   "Emergency ID"
// @Param        body  body      cancelEmergencyRequest  false  "Reason"
// @Success      200   {object}  emergencyResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/emergencies/{id}/cancel [post]
func (h *EmergencyHandler) Cancel(c echo.Context) error {
	operator, err := operatorID(c)
	if err != nil {
		return err
	}

	var req cancelEmergencyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	e, err := h.service.Cancel(c.Request().Context(), c.Param("id"), operator, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmergencyResponse(e))
}

// SetEta handles PUT /v1/emergencies/:id/eta.
//
// @Summary      Record the estimated arrival
// @Description  Minutes must be within 1..120 and the emergency must have an assigned unit.
// @Tags         dispatch
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Emergency ID"
// @Param        body  body      setEtaRequest  true  "Minutes"
// @Success      200   {object}  emergencyResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/emergencies/{id}/eta [put]
func (h *EmergencyHandler) SetEta(c echo.Context) error {
	var req setEtaRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	e, err := h.service.SetEta(c.Request().Context(), c.Param("id"), *req.Minutes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmergencyResponse(e))
}
