package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/startupai/startupai-backend/internal/data/repos"
	"github.com/startupai/startupai-backend/internal/domain"
	"github.com/startupai/startupai-backend/internal/gates"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

type ProjectService interface {
	Create(ctx context.Context, ownerUserID uuid.UUID, name, description string) (*domain.Project, error)
	Get(ctx context.Context, ownerUserID, projectID uuid.UUID) (*domain.Project, error)
	List(ctx context.Context, ownerUserID uuid.UUID) ([]*domain.Project, error)
	Update(ctx context.Context, ownerUserID, projectID uuid.UUID, name, description string) error
	Delete(ctx context.Context, ownerUserID, projectID uuid.UUID) error
	AddEvidence(ctx context.Context, ownerUserID, projectID uuid.UUID, items []*domain.Evidence) ([]*domain.Evidence, error)
	ListEvidence(ctx context.Context, ownerUserID, projectID uuid.UUID) ([]*domain.Evidence, error)
}

type projectService struct {
	repos *repos.Repos
	log   *logger.Logger
}

func NewProjectService(r *repos.Repos, log *logger.Logger) ProjectService {
	return &projectService{repos: r, log: log.With("service", "ProjectService")}
}

func (s *projectService) Create(ctx context.Context, ownerUserID uuid.UUID, name, description string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name required", apperrors.ErrInvalidArgument)
	}
	p := &domain.Project{
		ID:              uuid.New(),
		OwnerUserID:     ownerUserID,
		Name:            name,
		Description:     description,
		ValidationStage: gates.StageDesirability,
		GateStatus:      gates.StatusPending,
	}
	created, err := s.repos.Project.Create(ctx, nil, p)
	if err != nil {
		return nil, err
	}
	s.log.Info("project created", "user_id", ownerUserID.String(), "project", created.ID.String())
	return created, nil
}

// ownedProject loads the project and enforces ownership; other users get
// not-found rather than a hint the project exists.
func (s *projectService) ownedProject(ctx context.Context, ownerUserID, projectID uuid.UUID) (*domain.Project, error) {
	p, err := s.repos.Project.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerUserID != ownerUserID {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (s *projectService) Get(ctx context.Context, ownerUserID, projectID uuid.UUID) (*domain.Project, error) {
	return s.ownedProject(ctx, ownerUserID, projectID)
}

func (s *projectService) List(ctx context.Context, ownerUserID uuid.UUID) ([]*domain.Project, error) {
	return s.repos.Project.ListByOwner(ctx, nil, ownerUserID)
}

func (s *projectService) Update(ctx context.Context, ownerUserID, projectID uuid.UUID, name, description string) error {
	if _, err := s.ownedProject(ctx, ownerUserID, projectID); err != nil {
		return err
	}
	updates := map[string]any{}
	if strings.TrimSpace(name) != "" {
		updates["name"] = strings.TrimSpace(name)
	}
	if description != "" {
		updates["description"] = description
	}
	return s.repos.Project.Update(ctx, nil, projectID, updates)
}

func (s *projectService) Delete(ctx context.Context, ownerUserID, projectID uuid.UUID) error {
	if _, err := s.ownedProject(ctx, ownerUserID, projectID); err != nil {
		return err
	}
	return s.repos.Project.Delete(ctx, nil, projectID)
}

func (s *projectService) AddEvidence(ctx context.Context, ownerUserID, projectID uuid.UUID, items []*domain.Evidence) ([]*domain.Evidence, error) {
	if _, err := s.ownedProject(ctx, ownerUserID, projectID); err != nil {
		return nil, err
	}
	for _, item := range items {
		item.ID = uuid.New()
		item.ProjectID = projectID
		if item.Strength == "" {
			item.Strength = gates.StrengthWeak
		}
	}
	return s.repos.Evidence.Create(ctx, nil, items)
}

func (s *projectService) ListEvidence(ctx context.Context, ownerUserID, projectID uuid.UUID) ([]*domain.Evidence, error) {
	if _, err := s.ownedProject(ctx, ownerUserID, projectID); err != nil {
		return nil, err
	}
	return s.repos.Evidence.ListByProject(ctx, nil, projectID)
}
