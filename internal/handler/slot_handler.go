package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
	"github.com/hwangseoul-netizen/tention-mini/internal/dto"
	"github.com/hwangseoul-netizen/tention-mini/internal/service"
	"github.com/hwangseoul-netizen/tention-mini/pkg/middleware"
	"github.com/hwangseoul-netizen/tention-mini/pkg/response"
	"github.com/hwangseoul-netizen/tention-mini/pkg/telemetry"
)

// SlotHandler handles slot browse and participation requests
type SlotHandler struct {
	slotService service.SlotService
}

// NewSlotHandler creates a new SlotHandler
func NewSlotHandler(slotService service.SlotService) *SlotHandler {
	return &SlotHandler{slotService: slotService}
}

func actorOf(c *gin.Context) string {
	if actor, ok := middleware.GetActor(c); ok {
		return actor
	}
	return domain.Me
}

// Meta handles the picker enumerations
// GET /api/v1/meta
func (h *SlotHandler) Meta(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(dto.NewMetaResponse(h.slotService.Defaults())))
}

// List handles the filtered slot list
// GET /api/v1/slots
func (h *SlotHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.slots.list")
	defer span.End()

	var req dto.ListSlotsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		telemetry.SetSpanError(ctx, err)
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.ValidationFailed(map[string]string{"filter": msg}))
		return
	}

	result, err := h.slotService.List(ctx, req.Filter())
	if err != nil {
		handleError(c, err)
		return
	}

	cards := dto.NewSlotCards(result.Slots, actorOf(c))
	c.JSON(http.StatusOK, response.List(
		dto.SlotListResponse{Slots: cards, Filter: result.Filter},
		len(cards), result.Live, service.NoticeNoMatch,
	))
}

// Get handles a single slot card
// GET /api/v1/slots/:id
func (h *SlotHandler) Get(c *gin.Context) {
	id, ok := slotID(c)
	if !ok {
		return
	}

	slot, err := h.slotService.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.NewSlotCard(slot, actorOf(c))))
}

// Create handles slot creation
// POST /api/v1/slots
func (h *SlotHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.slots.create")
	defer span.End()

	var req dto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		telemetry.SetSpanError(ctx, err)
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.ValidationFailed(map[string]string{"form": msg}))
		return
	}

	actor := actorOf(c)
	slot, err := h.slotService.Create(ctx, actor, req.Form())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(dto.NewSlotCard(slot, actor)))
}

// Join handles check-in
// POST /api/v1/slots/:id/join
func (h *SlotHandler) Join(c *gin.Context) {
	h.act(c, "handler.slots.join", h.slotService.Join)
}

// Leave handles check-out
// POST /api/v1/slots/:id/leave
func (h *SlotHandler) Leave(c *gin.Context) {
	h.act(c, "handler.slots.leave", h.slotService.Leave)
}

// Arrive handles arrival at the venue
// POST /api/v1/slots/:id/arrive
func (h *SlotHandler) Arrive(c *gin.Context) {
	h.act(c, "handler.slots.arrive", h.slotService.Arrive)
}

// Extend handles the +10 minute extension
// POST /api/v1/slots/:id/extend
func (h *SlotHandler) Extend(c *gin.Context) {
	h.act(c, "handler.slots.extend", h.slotService.Extend)
}

type actionFunc func(ctx context.Context, id int64, actor string) (*service.ActionResult, error)

func (h *SlotHandler) act(c *gin.Context, spanName string, fn actionFunc) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), spanName)
	defer span.End()

	id, ok := slotID(c)
	if !ok {
		return
	}

	actor := actorOf(c)
	result, err := fn(ctx, id, actor)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithNotice(dto.NewSlotCard(result.Slot, actor), result.Notice))
}

// Share handles building the host share payload
// POST /api/v1/slots/:id/share
func (h *SlotHandler) Share(c *gin.Context) {
	id, ok := slotID(c)
	if !ok {
		return
	}

	payload, err := h.slotService.Share(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(payload))
}

// Activity handles the slot's action log
// GET /api/v1/slots/:id/activity
func (h *SlotHandler) Activity(c *gin.Context) {
	id, ok := slotID(c)
	if !ok {
		return
	}

	entries, err := h.slotService.Activity(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.ActivityResponse{SlotID: id, Entries: entries}))
}

// Joined handles the "My" screen list
// GET /api/v1/me/slots
func (h *SlotHandler) Joined(c *gin.Context) {
	actor := actorOf(c)
	slots := h.slotService.Joined(c.Request.Context(), actor)
	live := 0
	for _, s := range slots {
		if !s.Ended() {
			live++
		}
	}
	c.JSON(http.StatusOK, response.List(dto.NewSlotCards(slots, actor), len(slots), live, ""))
}

// Theme handles the host theme
// GET /api/v1/host/theme
func (h *SlotHandler) Theme(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(h.slotService.Theme()))
}
