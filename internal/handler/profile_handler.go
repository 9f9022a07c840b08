package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hwangseoul-netizen/tention-mini/internal/dto"
	"github.com/hwangseoul-netizen/tention-mini/internal/service"
	"github.com/hwangseoul-netizen/tention-mini/pkg/response"
)

// ProfileHandler handles the viewer profile
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// Get handles reading the profile
// GET /api/v1/me/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(h.profileService.Get(c.Request.Context(), actorOf(c))))
}

// Update handles replacing the profile
// PUT /api/v1/me/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	req.Normalize()
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.ValidationFailed(map[string]string{"profile": msg}))
		return
	}

	c.JSON(http.StatusOK, response.Success(h.profileService.Update(c.Request.Context(), actorOf(c), &req)))
}
