package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/startupai/startupai-backend/internal/domain"
	"github.com/startupai/startupai-backend/internal/http/response"
	"github.com/startupai/startupai-backend/internal/platform/ctxutil"
	"github.com/startupai/startupai-backend/internal/services"
)

type ProjectHandler struct {
	projects services.ProjectService
}

func NewProjectHandler(projects services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	project, err := h.projects.Create(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": project})
}

// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	projects, err := h.projects.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"projects": projects})
}

// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	project, err := h.projects.Get(c.Request.Context(), userID, projectID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": project})
}

// PATCH /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	if err := h.projects.Update(c.Request.Context(), userID, projectID, req.Name, req.Description); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	if err := h.projects.Delete(c.Request.Context(), userID, projectID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/projects/:id/evidence
func (h *ProjectHandler) AddEvidence(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	var req struct {
		Items []struct {
			Type         string   `json:"type"`
			Strength     string   `json:"strength"`
			QualityScore float64  `json:"quality_score"`
			Title        string   `json:"title"`
			Content      string   `json:"content"`
			Source       string   `json:"source"`
			Tags         []string `json:"tags"`
		} `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	items := make([]*domain.Evidence, 0, len(req.Items))
	for _, it := range req.Items {
		ev := &domain.Evidence{
			Type:         it.Type,
			Strength:     it.Strength,
			QualityScore: it.QualityScore,
			Title:        it.Title,
			Content:      it.Content,
			Source:       it.Source,
		}
		if len(it.Tags) > 0 {
			if b, err := json.Marshal(it.Tags); err == nil {
				ev.Tags = datatypes.JSON(b)
			}
		}
		items = append(items, ev)
	}
	userID := ctxutil.UserID(c.Request.Context())
	created, err := h.projects.AddEvidence(c.Request.Context(), userID, projectID, items)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"evidence": created})
}

// GET /api/projects/:id/evidence
func (h *ProjectHandler) ListEvidence(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	items, err := h.projects.ListEvidence(c.Request.Context(), userID, projectID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"evidence": items})
}
