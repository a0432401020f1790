package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ambulink/dispatch-core/internal/core/domain"
	"github.com/ambulink/dispatch-core/internal/core/ports"
)

// SampleReporter accepts device-side position readings.
type SampleReporter interface {
	Report(ctx context.Context, sourceID string, sample domain.PositionSample) error
}

// FixHandler exposes position acquisition.
type FixHandler struct {
	location ports.LocationService
	reporter SampleReporter
	now      func() time.Time
}

// NewFixHandler creates a FixHandler. reporter may be nil when the configured
// location source has no device-side ingest.
func NewFixHandler(location ports.LocationService, reporter SampleReporter) *FixHandler {
	return &FixHandler{location: location, reporter: reporter, now: time.Now}
}

// Request handles POST /v1/fixes.
//
// @Summary      Acquire a position fix
// @Description  Samples the source until the fix is accurate enough or time runs out. Degraded fixes are flagged.
// @Tags         location
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      requestFixRequest  true  "Source and sampling options"
// @Success      200   {object}  fixResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Failure      504   {object}  errorResponse
// @Router       /v1/fixes [post]
func (h *FixHandler) Request(c echo.Context) error {
	var req requestFixRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	fix, err := h.location.RequestFix(c.Request().Context(), domain.SampleOptions{
		SourceID:     req.SourceID,
		HighAccuracy: req.HighAccuracy,
		Timeout:      time.Duration(req.TimeoutMs) * time.Millisecond,
		MaxAge:       time.Duration(req.MaxAgeMs) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toFixResponse(*fix))
}

// Report handles POST /v1/locations/:source_id/samples.
//
// @Summary      Report a device position sample
// @Tags         location
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        source_id  path      string                 true  "Device or caller ID"
// @Param        body       body      positionSampleRequest  true  "Sample"
// @Success      202        {object}  acceptedResponse
// @Failure      422        {object}  errorResponse
// @Failure      503        {object}  errorResponse
// @Router       /v1/locations/{source_id}/samples [post]
func (h *FixHandler) Report(c echo.Context) error {
	if h.reporter == nil {
		return domain.ErrUnsupported
	}

	var req positionSampleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sample := toPositionSample(req, h.now().UTC())
	if err := h.reporter.Report(c.Request().Context(), c.Param("source_id"), sample); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "sample accepted"})
}
