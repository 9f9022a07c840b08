package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hwangseoul-netizen/tention-mini/internal/dto"
	"github.com/hwangseoul-netizen/tention-mini/internal/live"
	"github.com/hwangseoul-netizen/tention-mini/internal/service"
	"github.com/hwangseoul-netizen/tention-mini/pkg/logger"
	"github.com/hwangseoul-netizen/tention-mini/pkg/response"
)

// LiveHandler upgrades clients onto the live feed
type LiveHandler struct {
	hub         *live.Hub
	slotService service.SlotService
}

// NewLiveHandler creates a new LiveHandler
func NewLiveHandler(hub *live.Hub, slotService service.SlotService) *LiveHandler {
	return &LiveHandler{hub: hub, slotService: slotService}
}

// Stream handles GET /api/v1/live. The initial filter comes from the same
// query parameters as the slot list.
func (h *LiveHandler) Stream(c *gin.Context) {
	var req dto.ListSlotsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.ValidationFailed(map[string]string{"filter": msg}))
		return
	}

	filter, err := h.slotService.ResolveFilter(req.Filter())
	if err != nil {
		handleError(c, err)
		return
	}

	// the upgrader writes its own error response
	if err := h.hub.Serve(c.Writer, c.Request, actorOf(c), filter); err != nil {
		logger.WarnCtx(c.Request.Context(), "live upgrade failed", zap.Error(err))
	}
}
