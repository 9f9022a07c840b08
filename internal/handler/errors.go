package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hwangseoul-netizen/tention-mini/internal/host"
	"github.com/hwangseoul-netizen/tention-mini/internal/service"
	"github.com/hwangseoul-netizen/tention-mini/internal/store"
	"github.com/hwangseoul-netizen/tention-mini/pkg/response"
)

// handleError maps service errors to response envelopes
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("Slot not found"))
	case errors.Is(err, store.ErrSlotFull):
		c.JSON(http.StatusConflict, response.SlotFull())
	case errors.Is(err, store.ErrExtendLimit):
		c.JSON(http.StatusConflict, response.ExtendLimit())
	case errors.Is(err, store.ErrExtendTooEarly):
		c.JSON(http.StatusConflict, response.ExtendTooEarly())
	case errors.Is(err, store.ErrInvalidForm):
		c.JSON(http.StatusBadRequest, response.ValidationFailed(map[string]string{
			"form": formReason(err),
		}))
	case errors.Is(err, service.ErrInvalidFilter):
		c.JSON(http.StatusBadRequest, response.ValidationFailed(map[string]string{
			"filter": err.Error(),
		}))
	case errors.Is(err, host.ErrShareFailed):
		c.JSON(http.StatusServiceUnavailable, response.ServiceUnavailable("Sharing is unavailable right now"))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, response.InternalError(""))
	}
}

// formReason strips the wrapping so only the failed gate is shown
func formReason(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, store.ErrInvalidForm.Error()+": "); i >= 0 {
		return msg[i+len(store.ErrInvalidForm.Error())+2:]
	}
	return msg
}

// slotID parses the :id path parameter
func slotID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.BadRequest("Slot ID must be a positive integer"))
		return 0, false
	}
	return id, true
}
