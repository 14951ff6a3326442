package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/startupai/startupai-backend/internal/http/response"
	"github.com/startupai/startupai-backend/internal/platform/ctxutil"
	"github.com/startupai/startupai-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/me
func (h *UserHandler) GetMe(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// PATCH /api/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	if err := h.userService.UpdateName(c.Request.Context(), userID, req.FirstName, req.LastName); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// PUT /api/me/plan
func (h *UserHandler) UpdatePlan(c *gin.Context) {
	var req struct {
		PlanType string `json:"plan_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	if err := h.userService.UpdatePlanType(c.Request.Context(), userID, req.PlanType); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
