package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/startupai/startupai-backend/internal/http/response"
	"github.com/startupai/startupai-backend/internal/platform/ctxutil"
	"github.com/startupai/startupai-backend/internal/services"
)

type AnalysisHandler struct {
	analysis services.AnalysisService
	jobs     services.JobService
}

func NewAnalysisHandler(analysis services.AnalysisService, jobs services.JobService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis, jobs: jobs}
}

// POST /api/analysis
func (h *AnalysisHandler) Request(c *gin.Context) {
	var req services.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ctx := c.Request.Context()
	userID := ctxutil.UserID(ctx)
	report, err := h.analysis.Request(ctx, userID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	// With Temporal configured the queued row needs a workflow to drive it;
	// without it this is a no-op and the poll worker picks the row up.
	if job, jerr := h.jobs.GetLatestByEntity(ctx, userID, "report", report.ID, services.JobTypeAnalysisRun); jerr == nil {
		_ = h.jobs.Dispatch(ctx, job.ID)
	}

	response.RespondOK(c, gin.H{"report": report})
}

// GET /api/analysis
func (h *AnalysisHandler) List(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	reports, err := h.analysis.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reports": reports})
}

// GET /api/analysis/:id
func (h *AnalysisHandler) Get(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_report_id", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	report, err := h.analysis.Get(c.Request.Context(), userID, reportID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}
