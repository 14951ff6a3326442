package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/startupai/startupai-backend/internal/data/repos"
	"github.com/startupai/startupai-backend/internal/domain"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateName(ctx context.Context, userID uuid.UUID, firstName, lastName string) error
	UpdatePlanType(ctx context.Context, userID uuid.UUID, planType string) error
}

type userService struct {
	repos *repos.Repos
	log   *logger.Logger
}

var validPlanTypes = map[string]bool{
	"trial": true, "sprint": true, "founder": true, "enterprise": true,
}

func NewUserService(r *repos.Repos, log *logger.Logger) UserService {
	return &userService{repos: r, log: log.With("service", "UserService")}
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.repos.User.GetByID(ctx, nil, userID)
}

func (s *userService) UpdateName(ctx context.Context, userID uuid.UUID, firstName, lastName string) error {
	return s.repos.User.UpdateName(ctx, nil, userID, firstName, lastName)
}

func (s *userService) UpdatePlanType(ctx context.Context, userID uuid.UUID, planType string) error {
	if !validPlanTypes[planType] {
		return fmt.Errorf("%w: unknown plan type %q", apperrors.ErrInvalidArgument, planType)
	}
	s.log.Info("plan type updated", "user_id", userID.String(), "plan_type", planType)
	return s.repos.User.UpdatePlanType(ctx, nil, userID, planType)
}
