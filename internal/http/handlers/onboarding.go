package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/startupai/startupai-backend/internal/http/response"
	"github.com/startupai/startupai-backend/internal/platform/ctxutil"
	"github.com/startupai/startupai-backend/internal/services"
)

type OnboardingHandler struct {
	onboarding services.OnboardingService
	users      services.UserService
}

func NewOnboardingHandler(onboarding services.OnboardingService, users services.UserService) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding, users: users}
}

// POST /api/onboarding/sessions
func (h *OnboardingHandler) StartSession(c *gin.Context) {
	var req struct {
		ProjectID *uuid.UUID `json:"project_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ctx := c.Request.Context()
	userID := ctxutil.UserID(ctx)

	// The persona is chosen from the caller's plan.
	planType := ""
	if user, err := h.users.GetProfile(ctx, userID); err == nil {
		planType = user.PlanType
	}

	view, err := h.onboarding.StartSession(ctx, userID, req.ProjectID, planType)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/onboarding/sessions/:id/messages
func (h *OnboardingHandler) SendMessage(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	res, err := h.onboarding.SendMessage(c.Request.Context(), userID, sessionID, req.Message)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Header("X-Conversation-Stage", strconv.Itoa(res.Stage))
	c.Header("X-Conversation-Progress", strconv.FormatFloat(res.OverallCoverage, 'f', 2, 64))
	response.RespondOK(c, res)
}

// GET /api/onboarding/sessions/:id
func (h *OnboardingHandler) GetSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	view, err := h.onboarding.GetSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}
