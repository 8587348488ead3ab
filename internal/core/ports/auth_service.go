package ports

import (
	"context"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

// RegisterInput carries the fields accepted by registration.
type RegisterInput struct {
	Email    string
	Password string
	FullName *string
}

// TokenService issues and verifies signed bearer tokens.
type TokenService interface {
	IssueAccessToken(userID int64) (string, error)
	IssueRefreshToken(userID int64) (string, error)
	Verify(token string) (*domain.TokenClaims, error)
}

// AuthService covers the session lifecycle and the per-request auth guard.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Authenticate returns nil, nil when the email is unknown or the
	// password does not match.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	// ResolveUser turns an access token into its active user.
	ResolveUser(ctx context.Context, token string) (*domain.User, error)
	// ResolveOptionalUser is ResolveUser that yields nil instead of failing.
	ResolveOptionalUser(ctx context.Context, token string) *domain.User
}
