package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/startupai/startupai-backend/internal/data/repos"
	"github.com/startupai/startupai-backend/internal/domain"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
	"github.com/startupai/startupai-backend/internal/platform/envutil"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

// TokenPair is one issued access/refresh credential set.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AuthService interface {
	Register(ctx context.Context, email, password, firstName, lastName, planType string) (*domain.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	// ValidateAccessToken parses and verifies a bearer token, returning the
	// subject user ID.
	ValidateAccessToken(tokenString string) (uuid.UUID, error)
}

type authService struct {
	db    *gorm.DB
	repos *repos.Repos
	log   *logger.Logger

	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(db *gorm.DB, r *repos.Repos, log *logger.Logger) (AuthService, error) {
	secret := envutil.GetEnv("JWT_SECRET", "", log)
	if secret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET")
	}
	accessHours := envutil.GetEnvAsInt("JWT_ACCESS_TTL_HOURS", 1, log)
	refreshHours := envutil.GetEnvAsInt("JWT_REFRESH_TTL_HOURS", 720, log)

	return &authService{
		db:         db,
		repos:      r,
		log:        log.With("service", "AuthService"),
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessHours) * time.Hour,
		refreshTTL: time.Duration(refreshHours) * time.Hour,
	}, nil
}

func (s *authService) Register(ctx context.Context, email, password, firstName, lastName, planType string) (*domain.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: email and password required", apperrors.ErrInvalidArgument)
	}

	exists, err := s.repos.User.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, fmt.Errorf("%w: email already registered", apperrors.ErrInvalidArgument)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	if planType == "" {
		planType = "trial"
	}

	var user *domain.User
	var pair *TokenPair
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, txErr := s.repos.User.Create(ctx, tx, []*domain.User{{
			ID:        uuid.New(),
			Email:     email,
			Password:  string(hashed),
			FirstName: firstName,
			LastName:  lastName,
			PlanType:  planType,
		}})
		if txErr != nil {
			return txErr
		}
		user = created[0]

		pair, txErr = s.issueTokens(ctx, tx, user.ID)
		return txErr
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("user registered", "user_id", user.ID.String(), "plan_type", planType)
	return user, pair, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repos.User.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.ErrUnauthorized
		}
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, apperrors.ErrUnauthorized
	}

	var pair *TokenPair
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if txErr := s.repos.UserToken.DeleteByUserID(ctx, tx, user.ID); txErr != nil {
			return txErr
		}
		var txErr error
		pair, txErr = s.issueTokens(ctx, tx, user.ID)
		return txErr
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("user logged in", "user_id", user.ID.String())
	return user, pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := s.repos.UserToken.GetByRefreshToken(ctx, nil, refreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, apperrors.ErrUnauthorized
	}

	var pair *TokenPair
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if txErr := s.repos.UserToken.DeleteByUserID(ctx, tx, stored.UserID); txErr != nil {
			return txErr
		}
		var txErr error
		pair, txErr = s.issueTokens(ctx, tx, stored.UserID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.repos.UserToken.DeleteByUserID(ctx, nil, userID)
}

func (s *authService) ValidateAccessToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	return userID, nil
}

func (s *authService) issueTokens(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*TokenPair, error) {
	now := time.Now()
	accessExp := now.Add(s.accessTTL)

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": accessExp.Unix(),
	})
	accessToken, err := access.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken := uuid.NewString() + uuid.NewString()
	refreshExp := now.Add(s.refreshTTL)

	if _, err := s.repos.UserToken.Create(ctx, tx, &domain.UserToken{
		ID:           uuid.New(),
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    refreshExp,
	}); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
	}, nil
}
