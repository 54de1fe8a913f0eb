package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tableserve/pos-portal/internal/core/domain"
	"github.com/tableserve/pos-portal/internal/core/ports"
)

// HeartbeatQueue accepts batched pings for asynchronous, per-device-ordered
// processing.
type HeartbeatQueue interface {
	EnqueueBatch(pings []ports.HeartbeatPing)
}

// DeviceHandler exposes the admin-track device lifecycle endpoints.
type DeviceHandler struct {
	service ports.DeviceService
	queue   HeartbeatQueue
}

func NewDeviceHandler(service ports.DeviceService, queue HeartbeatQueue) *DeviceHandler {
	return &DeviceHandler{service: service, queue: queue}
}

// Activate handles POST /v1/devices/:id/activate.
//
// @Summary      Activate a device and bring it online
// @Tags         devices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  deviceResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/devices/{id}/activate [post]
func (h *DeviceHandler) Activate(c echo.Context) error {
	return h.transition(c, h.service.Activate)
}

// Deactivate handles POST /v1/devices/:id/deactivate.
//
// @Summary      Deactivate a device; heartbeats are rejected until reactivation
// @Tags         devices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  deviceResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/devices/{id}/deactivate [post]
func (h *DeviceHandler) Deactivate(c echo.Context) error {
	return h.transition(c, h.service.Deactivate)
}

// Maintenance handles POST /v1/devices/:id/maintenance.
//
// @Summary      Put a device into maintenance
// @Tags         devices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  deviceResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/devices/{id}/maintenance [post]
func (h *DeviceHandler) Maintenance(c echo.Context) error {
	return h.transition(c, h.service.Maintenance)
}

// Suspend handles POST /v1/devices/:id/suspend.
//
// @Summary      Suspend a device
// @Tags         devices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  deviceResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/devices/{id}/suspend [post]
func (h *DeviceHandler) Suspend(c echo.Context) error {
	return h.transition(c, h.service.Suspend)
}

// Heartbeat handles POST /v1/devices/:id/heartbeat. The body is optional and
// may carry the terminal's reported IP.
//
// @Summary      Record a device heartbeat
// @Tags         devices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true   "Device id"
// @Param        body  body      heartbeatRequest  false  "Optional ping metadata"
// @Success      200   {object}  deviceResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/devices/{id}/heartbeat [post]
func (h *DeviceHandler) Heartbeat(c echo.Context) error {
	scope, err := ctxAdminScope(c)
	if err != nil {
		return err
	}

	var req heartbeatRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	snapshot, err := h.service.Heartbeat(c.Request().Context(), scope, c.Param("id"), req.IPAddress)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toDeviceResponse(*snapshot))
}

// BatchHeartbeats handles POST /v1/devices/heartbeats. Pings are accepted
// into the dispatcher and applied asynchronously with per-device ordering;
// the response only acknowledges ingestion.
//
// @Summary      Ingest a batch of device heartbeats
// @Tags         devices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      batchHeartbeatRequest  true  "Heartbeat pings"
// @Success      202   {object}  batchHeartbeatResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /v1/devices/heartbeats [post]
func (h *DeviceHandler) BatchHeartbeats(c echo.Context) error {
	if _, err := ctxAdminScope(c); err != nil {
		return err
	}

	var req batchHeartbeatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pings := make([]ports.HeartbeatPing, 0, len(req.Heartbeats))
	for _, hb := range req.Heartbeats {
		pings = append(pings, ports.HeartbeatPing{
			DeviceID:  hb.DeviceID,
			IPAddress: hb.IPAddress,
		})
	}
	h.queue.EnqueueBatch(pings)

	return c.JSON(http.StatusAccepted, batchHeartbeatResponse{Accepted: len(pings)})
}

// List handles GET /v1/devices. The optional status query parameter narrows
// the listing by stored status; liveness is derived per row.
//
// @Summary      List devices in the caller's tenant scope
// @Tags         devices
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by stored status"  Enums(offline, online, maintenance, suspended)
// @Success      200     {object}  devicesResponse
// @Failure      400     {object}  map[string]string
// @Failure      401     {object}  map[string]string
// @Failure      403     {object}  map[string]string
// @Router       /v1/devices [get]
func (h *DeviceHandler) List(c echo.Context) error {
	scope, err := ctxAdminScope(c)
	if err != nil {
		return err
	}

	status := domain.DeviceStatus(c.QueryParam("status"))
	switch status {
	case "", domain.StatusOffline, domain.StatusOnline, domain.StatusMaintenance, domain.StatusSuspended:
	default:
		return &domain.ValidationError{Reason: "unknown device status"}
	}

	snapshots, err := h.service.List(c.Request().Context(), scope, status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, devicesResponse{
		Count:   len(snapshots),
		Devices: toDeviceResponses(snapshots),
	})
}

// transitionFunc is the shared shape of the lifecycle actions.
type transitionFunc func(ctx context.Context, scope ports.AdminScope, deviceID string) (*ports.DeviceSnapshot, error)

func (h *DeviceHandler) transition(c echo.Context, action transitionFunc) error {
	scope, err := ctxAdminScope(c)
	if err != nil {
		return err
	}

	snapshot, err := action(c.Request().Context(), scope, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toDeviceResponse(*snapshot))
}
