package handlers

import (
	"io"
	"net/http"

	"greenhouse_control/internal/models"
	"greenhouse_control/internal/service"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 8 << 10 // 8 KB

// readBody returns the raw request body, aborting the request when it cannot be read.
func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, service.MsgInvalidJSON)
		return nil, false
	}
	if len(body) > maxBodyBytes {
		abortWithError(c, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		return nil, false
	}
	return body, true
}

// @Summary      Controller status
// @Description  Uptime in seconds, failsafe flags, culture phase and broker connection.
// @Tags         system
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /api/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		SystemStatus: h.services.Snapshot(c.Request.Context()),
		Timestamp:    timestamp(),
	})
}

// @Summary      Latest sensor reading
// @Tags         sensors
// @Produce      json
// @Success      200  {object}  SensorsResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse  "no fresh reading"
// @Router       /api/sensors [get]
// @Security     BearerAuth
func (h *Handler) getSensors(c *gin.Context) {
	reading, err := h.services.Latest()
	if err != nil {
		h.fail(c, err, "sensors_read_failed")
		return
	}
	c.JSON(http.StatusOK, SensorsResponse{SensorReading: reading, Timestamp: timestamp()})
}

// @Summary      List actuators
// @Tags         actuators
// @Produce      json
// @Success      200  {object}  ActuatorsResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /api/actuators [get]
// @Security     BearerAuth
func (h *Handler) listActuators(c *gin.Context) {
	list := h.services.Actuators.List()
	c.JSON(http.StatusOK, ActuatorsResponse{
		Actuators: list,
		Count:     len(list),
		Timestamp: timestamp(),
	})
}

// @Summary      Command an actuator
// @Tags         actuators
// @Accept       json
// @Produce      json
// @Param        name  path      string           true  "Actuator name"  Enums(lampe,pompe,ventilateur,chauffage,humidificateur)
// @Param        body  body      ActuatorRequest  true  "Target state"
// @Success      200   {object}  ActuatorResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      503   {object}  ErrorResponse  "control bus unavailable"
// @Router       /api/actuators/{name} [post]
// @Security     BearerAuth
func (h *Handler) setActuator(c *gin.Context) {
	name := c.Param("name")
	// An unknown actuator is a 400 whatever the body looks like.
	if err := h.services.ActuatorName(name); err != nil {
		h.fail(c, err, "actuator_invalid")
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	cmd, err := h.services.ActuatorCommand(name, body)
	if err != nil {
		h.fail(c, err, "actuator_invalid")
		return
	}
	st, err := h.services.SetState(c.Request.Context(), cmd.Name, cmd.State)
	if err != nil {
		h.fail(c, err, "actuator_set_failed", "actuator", cmd.Name, "state", cmd.State)
		return
	}
	c.JSON(http.StatusOK, ActuatorResponse{ActuatorState: st, Timestamp: timestamp()})
}

// @Summary      Current culture phase
// @Tags         culture
// @Produce      json
// @Success      200  {object}  PhaseResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /api/culture/phase [get]
// @Security     BearerAuth
func (h *Handler) getPhase(c *gin.Context) {
	c.JSON(http.StatusOK, PhaseResponse{
		Phase:     h.services.Phase(),
		Phases:    models.CulturePhases,
		Timestamp: timestamp(),
	})
}

// @Summary      Change culture phase
// @Tags         culture
// @Accept       json
// @Produce      json
// @Param        body  body      PhaseRequest  true  "New phase"
// @Success      200   {object}  PhaseResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      503   {object}  ErrorResponse
// @Router       /api/culture/phase [post]
// @Security     BearerAuth
func (h *Handler) setPhase(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	phase, err := h.services.PhaseChange(body)
	if err != nil {
		h.fail(c, err, "phase_invalid")
		return
	}
	current, err := h.services.SetPhase(c.Request.Context(), phase)
	if err != nil {
		h.fail(c, err, "phase_set_failed", "phase", phase)
		return
	}
	c.JSON(http.StatusOK, PhaseResponse{Phase: current, Timestamp: timestamp()})
}

// @Summary      Manual failsafe override
// @Description  Sets exactly one failsafe flag. Repeating the current value changes nothing.
// @Tags         failsafe
// @Accept       json
// @Produce      json
// @Param        body  body      OverrideRequest  true  "Target flag and state"
// @Success      200   {object}  OverrideResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      503   {object}  ErrorResponse
// @Router       /api/override [post]
// @Security     BearerAuth
func (h *Handler) applyOverride(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	req, err := h.services.Override(body)
	if err != nil {
		h.fail(c, err, "override_invalid")
		return
	}
	status, err := h.services.ApplyOverride(c.Request.Context(), req.Target, req.State)
	if err != nil {
		h.fail(c, err, "override_failed", "target", req.Target, "state", req.State)
		return
	}
	c.JSON(http.StatusOK, OverrideResponse{
		Target:    req.Target,
		State:     req.State,
		Failsafe:  status,
		Timestamp: timestamp(),
	})
}
