package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/startupai/startupai-backend/internal/http/response"
	"github.com/startupai/startupai-backend/internal/platform/ctxutil"
	"github.com/startupai/startupai-backend/internal/services"
)

type ApprovalHandler struct {
	approvals services.ApprovalService
}

func NewApprovalHandler(approvals services.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvals: approvals}
}

// POST /api/projects/:id/approvals
func (h *ApprovalHandler) Request(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	var req struct {
		Checkpoint string `json:"checkpoint"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	approval, err := h.approvals.Request(c.Request.Context(), userID, projectID, req.Checkpoint)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"approval": approval})
}

// GET /api/projects/:id/approvals
func (h *ApprovalHandler) List(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	approvals, err := h.approvals.List(c.Request.Context(), userID, projectID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"approvals": approvals})
}

// POST /api/approvals/:id/decide
func (h *ApprovalHandler) Decide(c *gin.Context) {
	approvalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_approval_id", err)
		return
	}
	var req struct {
		Approve bool   `json:"approve"`
		Note    string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	approval, err := h.approvals.Decide(c.Request.Context(), userID, approvalID, req.Approve, req.Note)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"approval": approval})
}
