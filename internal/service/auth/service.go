package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
	"github.com/agendahub/agenda-api/pkg/auth"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
	"github.com/agendahub/agenda-api/pkg/security"
)

// Session is what a successful register/login/refresh hands back.
type Session struct {
	User   *model.User     `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

type Service struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	jwtSvc      auth.JWTService
	hasher      security.PasswordHasher
	demoMode    bool
}

func NewService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository,
	jwtSvc auth.JWTService, hasher security.PasswordHasher, demoMode bool) *Service {
	return &Service{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		jwtSvc:      jwtSvc,
		hasher:      hasher,
		demoMode:    demoMode,
	}
}

// Register creates the owner account and its profile. The two inserts are
// sequenced, not transactional: a profile failure leaves the user row behind.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*Session, error) {
	if s.demoMode {
		return nil, apperrors.NewForbidden("registration is disabled in demo mode", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordLength) {
			return nil, apperrors.NewBadRequest("password too short", err)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	profile := &model.Profile{
		UserID:       user.ID,
		Name:         req.Name,
		BusinessName: req.BusinessName,
		Phone:        req.Phone,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return s.open(user)
}

// Login verifies the credential pair and issues a fresh token pair. In demo
// mode this only ever matches the seeded owner.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials", nil)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials", nil)
	}

	return s.open(user)
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid refresh token", err)
	}

	// The account must still exist; a deleted owner keeps no session.
	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid refresh token", nil)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return s.open(user)
}

// open issues the token pair and strips the hash before the user leaves the
// service layer.
func (s *Service) open(user *model.User) (*Session, error) {
	tokens, err := s.jwtSvc.GeneratePair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	user.PasswordHash = ""
	return &Session{User: user, Tokens: tokens}, nil
}
