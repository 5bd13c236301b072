package vendiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	dispatchhttpmapper "github.com/vendibd/vendi-server/internal/domains/dispatch/adapters/http/mapper"
	"github.com/vendibd/vendi-server/internal/domains/dispatch/domain"
	dispatchports "github.com/vendibd/vendi-server/internal/domains/dispatch/ports"
	apierrors "github.com/vendibd/vendi-server/internal/shared/errors"
)

// DeviceAPI wires HTTP transport with the dispatch bounded context service.
type DeviceAPI struct {
	service dispatchports.Service
}

// NewDeviceAPI creates a DeviceAPI backed by the provided service.
func NewDeviceAPI(service dispatchports.Service) DeviceAPI {
	return DeviceAPI{service: service}
}

// Get /v1/devices/:deviceId/poll
// Hand the device its single next instruction
func (api *DeviceAPI) PollDevice(c *gin.Context) {
	deviceID := c.Param("deviceId")
	instruction, err := api.service.Poll(c.Request.Context(), deviceID)
	if err != nil {
		dispatchResponder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dispatchhttpmapper.FromInstruction(instruction))
}

// Post /v1/commands/:commandId/status
// Record a device's terminal report for a dispatched command
func (api *DeviceAPI) ReportCommandStatus(c *gin.Context) {
	commandID, err := uuid.Parse(c.Param("commandId"))
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail("commandId must be a UUID"))
		return
	}
	var payload dispatchhttpmapper.StatusReport
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	status, err := domain.ParseTerminalStatus(payload.Status)
	if err != nil {
		respondProblem(c, apierrors.ErrValidation.WithDetail("status must be done or failed"))
		return
	}
	if err := api.service.ReportStatus(c.Request.Context(), commandID, status, payload.Message); err != nil {
		dispatchResponder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status recorded"})
}
