package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/startupai/startupai-backend/internal/http/response"
	"github.com/startupai/startupai-backend/internal/platform/ctxutil"
	"github.com/startupai/startupai-backend/internal/services"
)

type GateHandler struct {
	gates services.GateService
}

func NewGateHandler(gates services.GateService) *GateHandler {
	return &GateHandler{gates: gates}
}

// POST /api/projects/:id/gate/evaluate
func (h *GateHandler) Evaluate(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	var req struct {
		Stage string `json:"stage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	result, err := h.gates.Evaluate(c.Request.Context(), userID, projectID, req.Stage)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"result": result})
}

// GET /api/projects/:id/gate/history
func (h *GateHandler) History(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	reviews, err := h.gates.History(c.Request.Context(), userID, projectID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reviews": reviews})
}

// POST /api/projects/:id/gate/progress
func (h *GateHandler) Progress(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	nextStage, err := h.gates.Progress(c.Request.Context(), userID, projectID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"validation_stage": nextStage})
}
