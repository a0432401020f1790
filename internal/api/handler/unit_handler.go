package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ambulink/dispatch-core/internal/core/domain"
	"github.com/ambulink/dispatch-core/internal/core/ports"
)

// UnitHandler handles HTTP requests for response units.
type UnitHandler struct {
	service ports.DispatchService
}

func NewUnitHandler(service ports.DispatchService) *UnitHandler {
	return &UnitHandler{service: service}
}

// Register handles POST /v1/units.
//
// @Summary      Register a response unit
// @Tags         units
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerUnitRequest  true  "Unit"
// @Success      201   {object}  unitResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/units [post]
func (h *UnitHandler) Register(c echo.Context) error {
	var req registerUnitRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	u, err := h.service.RegisterUnit(c.Request().Context(), toRegisterUnitInput(req))
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, "/v1/units/"+u.ID)
	return c.JSON(http.StatusCreated, toUnitResponse(u))
}

// Get handles GET /v1/units/:id.
//
// @Summary      Get a unit
// @Tags         units
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Unit ID"
// @Success      200  {object}  unitResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/units/{id} [get]
func (h *UnitHandler) Get(c echo.Context) error {
	u, err := h.service.GetUnit(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUnitResponse(u))
}

// List handles GET /v1/units.
//
// @Summary      List units
// @Tags         units
// @Produce      json
// @Security     BearerAuth
// @Param        status        query     string  false  "ACTIVE, INACTIVE or MAINTENANCE"
// @Param        availability  query     string  false  "AVAILABLE, EN_ROUTE, ON_SCENE or OFF_DUTY"
// @Success      200           {object}  unitListResponse
// @Failure      422           {object}  errorResponse
// @Router       /v1/units [get]
func (h *UnitHandler) List(c echo.Context) error {
	var q listUnitsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}

	list, err := h.service.ListUnits(c.Request().Context(), domain.UnitFilter{
		Status:       domain.UnitStatus(q.Status),
		Availability: domain.Availability(q.Availability),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUnitListResponse(list))
}

// SetStatus handles PATCH /v1/units/:id/status.
//
// @Summary      Change unit status or duty
// @Description  Rejected with 409 while the unit is engaged on an emergency.
// @Tags         units
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Unit ID"
// @Param        body  body      setUnitStatusRequest  true  "New state"
// @Success      200   {object}  unitResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/units/{id}/status [patch]
func (h *UnitHandler) SetStatus(c echo.Context) error {
	var req setUnitStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	u, err := h.service.SetUnitStatus(c.Request().Context(), ports.SetUnitStatusInput{
		UnitID:       c.Param("id"),
		Status:       domain.UnitStatus(req.Status),
		Availability: domain.Availability(req.Availability),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUnitResponse(u))
}

// UpdateFix handles PUT /v1/units/:id/fix.
//
// @Summary      Update a unit's current position
// @Tags         units
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string      true  "Unit ID"
// @Param        body  body      fixRequest  true  "Position fix"
// @Success      200   {object}  unitResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/units/{id}/fix [put]
func (h *UnitHandler) UpdateFix(c echo.Context) error {
	var req fixRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	u, err := h.service.UpdateUnitFix(c.Request().Context(), c.Param("id"), toFix(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUnitResponse(u))
}
