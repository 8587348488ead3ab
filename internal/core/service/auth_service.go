package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

const tokenTypeBearer = "bearer"

// AuthService implements registration, login, refresh and the auth guard.
type AuthService struct {
	users    ports.UserRepository
	tokens   ports.TokenService
	logger   zerolog.Logger
	hashCost int
	now      func() time.Time
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(users ports.UserRepository, tokens ports.TokenService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.hashCost = cost
	return s
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.BadRequest("password must be at most 72 bytes")
		}
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.users.Create(ctx, &domain.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FullName:     in.FullName,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		// A concurrent registration can still lose the race at the unique index.
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info().Int64("user_id", created.ID).Msg("user registered")
	return created, nil
}

func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.Unauthorized("Incorrect email or password")
	}
	if !user.IsActive {
		return nil, domain.Unauthorized("User account is disabled")
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", user.ID).Msg("user logged in")
	return pair, nil
}

// Refresh exchanges a valid refresh token for a new pair. The presented token
// stays valid until it expires.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, domain.Unauthorized("Invalid refresh token")
	}
	if claims.Type != domain.TokenTypeRefresh {
		return nil, domain.BadRequest("Invalid token type")
	}
	userID, ok := subjectID(claims)
	if !ok {
		return nil, domain.Unauthorized("Invalid token payload")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, domain.Unauthorized("User not found or inactive")
	}

	return s.issuePair(user.ID)
}

func (s *AuthService) ResolveUser(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domain.Unauthorized("Invalid token")
	}
	if claims.Type != domain.TokenTypeAccess {
		return nil, domain.Unauthorized("Invalid token type")
	}
	userID, ok := subjectID(claims)
	if !ok {
		return nil, domain.Unauthorized("Invalid token payload")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.Unauthorized("User not found")
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if !user.IsActive {
		return nil, domain.Unauthorized("Inactive user")
	}
	return user, nil
}

func (s *AuthService) ResolveOptionalUser(ctx context.Context, token string) *domain.User {
	if token == "" {
		return nil
	}
	user, err := s.ResolveUser(ctx, token)
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			s.logger.Warn().Err(err).Msg("optional auth lookup failed")
		}
		return nil
	}
	return user
}

func (s *AuthService) issuePair(userID int64) (*domain.TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    tokenTypeBearer,
	}, nil
}

func subjectID(claims *domain.TokenClaims) (int64, bool) {
	if claims.Subject == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
