package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID    map[int64]*domain.User
	nextID  int64
	findErr error // if set, every lookup returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[int64]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.nextID++
	clone := *u
	clone.ID = r.nextID
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func newTestAuthService(t *testing.T) (*AuthService, *stubUserRepo, *TokenService) {
	t.Helper()
	repo := newStubUserRepo()
	tokens := newTestTokenService(t, time.Now())
	svc := NewAuthService(repo, tokens, discardLogger).WithHashCost(bcrypt.MinCost)
	return svc, repo, tokens
}

func mustRegister(t *testing.T, svc *AuthService, email, password string) *domain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), ports.RegisterInput{Email: email, Password: password})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u
}

func assertKind(t *testing.T, err error, want domain.ErrorKind, wantMsg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := domain.KindOf(err); got != want {
		t.Fatalf("kind = %s, want %s (err: %v)", got, want, err)
	}
	if wantMsg != "" && domain.MessageOf(err) != wantMsg {
		t.Fatalf("message = %q, want %q", domain.MessageOf(err), wantMsg)
	}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)
	name := "Ada Lovelace"

	u, err := svc.Register(context.Background(), ports.RegisterInput{
		Email: "ada@example.com", Password: "password123", FullName: &name,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.ID == 0 || !u.IsActive {
		t.Fatalf("expected active user with id, got %+v", u)
	}
	if u.FullName == nil || *u.FullName != name {
		t.Fatalf("full name not stored: %+v", u.FullName)
	}

	stored := repo.byID[u.ID]
	if stored.PasswordHash == "password123" {
		t.Fatal("password stored in clear text")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")) != nil {
		t.Fatal("stored hash does not match password")
	}
}

func TestAuthService_Register_PasswordTooLongForHash(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)

	for _, pw := range []string{strings.Repeat("a", 80), strings.Repeat("é", 40)} {
		_, err := svc.Register(context.Background(), ports.RegisterInput{Email: "long@example.com", Password: pw})
		assertKind(t, err, domain.KindBadRequest, "password must be at most 72 bytes")
	}
	if len(repo.byID) != 0 {
		t.Fatal("no user should be stored")
	}

	// 72 bytes exactly is accepted.
	mustRegister(t, svc, "edge@example.com", strings.Repeat("a", 72))
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	mustRegister(t, svc, "dup@example.com", "password123")

	_, err := svc.Register(context.Background(), ports.RegisterInput{Email: "dup@example.com", Password: "another123"})
	assertKind(t, err, domain.KindConflict, "Email already registered")
}

func TestAuthService_Register_RepoFailure(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)
	repo.findErr = errors.New("connection reset")

	_, err := svc.Register(context.Background(), ports.RegisterInput{Email: "x@example.com", Password: "password123"})
	if domain.KindOf(err) != domain.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Authenticate / Login
// ---------------------------------------------------------------------------

func TestAuthService_Authenticate(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	mustRegister(t, svc, "a@example.com", "password123")
	ctx := context.Background()

	u, err := svc.Authenticate(ctx, "a@example.com", "password123")
	if err != nil || u == nil {
		t.Fatalf("expected user, got %v, %v", u, err)
	}

	u, err = svc.Authenticate(ctx, "a@example.com", "wrong-password")
	if err != nil || u != nil {
		t.Fatalf("wrong password: expected nil, nil; got %v, %v", u, err)
	}

	u, err = svc.Authenticate(ctx, "nobody@example.com", "password123")
	if err != nil || u != nil {
		t.Fatalf("unknown email: expected nil, nil; got %v, %v", u, err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, tokens := newTestAuthService(t)
	u := mustRegister(t, svc, "a@example.com", "password123")

	pair, err := svc.Login(context.Background(), "a@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.TokenType != "bearer" {
		t.Errorf("token_type = %q, want bearer", pair.TokenType)
	}

	access, err := tokens.Verify(pair.AccessToken)
	if err != nil || access.Type != domain.TokenTypeAccess {
		t.Fatalf("bad access token: %+v, %v", access, err)
	}
	refresh, err := tokens.Verify(pair.RefreshToken)
	if err != nil || refresh.Type != domain.TokenTypeRefresh {
		t.Fatalf("bad refresh token: %+v, %v", refresh, err)
	}
	if access.Subject != refresh.Subject || access.Subject != "1" || u.ID != 1 {
		t.Fatalf("unexpected subjects: %s %s", access.Subject, refresh.Subject)
	}
}

func TestAuthService_Login_FreshPairEachCall(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	mustRegister(t, svc, "a@example.com", "password123")

	p1, _ := svc.Login(context.Background(), "a@example.com", "password123")
	p2, _ := svc.Login(context.Background(), "a@example.com", "password123")
	if p1.AccessToken == p2.AccessToken || p1.RefreshToken == p2.RefreshToken {
		t.Fatal("expected distinct token pairs")
	}
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	mustRegister(t, svc, "a@example.com", "password123")

	_, err := svc.Login(context.Background(), "a@example.com", "nope-nope")
	assertKind(t, err, domain.KindUnauthorized, "Incorrect email or password")

	_, err = svc.Login(context.Background(), "ghost@example.com", "password123")
	assertKind(t, err, domain.KindUnauthorized, "Incorrect email or password")
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)
	u := mustRegister(t, svc, "a@example.com", "password123")
	repo.byID[u.ID].IsActive = false

	_, err := svc.Login(context.Background(), "a@example.com", "password123")
	assertKind(t, err, domain.KindUnauthorized, "User account is disabled")
}

// ---------------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------------

func TestAuthService_Refresh_Success(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	mustRegister(t, svc, "a@example.com", "password123")
	pair, _ := svc.Login(context.Background(), "a@example.com", "password123")

	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	// The old refresh token is not revoked.
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("old refresh token should still work: %v", err)
	}
}

func TestAuthService_Refresh_WithAccessToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	mustRegister(t, svc, "a@example.com", "password123")
	pair, _ := svc.Login(context.Background(), "a@example.com", "password123")

	_, err := svc.Refresh(context.Background(), pair.AccessToken)
	assertKind(t, err, domain.KindBadRequest, "Invalid token type")
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Refresh(context.Background(), "garbage")
	assertKind(t, err, domain.KindUnauthorized, "Invalid refresh token")
}

func TestAuthService_Refresh_InactiveOrMissingUser(t *testing.T) {
	svc, repo, tokens := newTestAuthService(t)
	u := mustRegister(t, svc, "a@example.com", "password123")
	repo.byID[u.ID].IsActive = false

	refresh, _ := tokens.IssueRefreshToken(u.ID)
	_, err := svc.Refresh(context.Background(), refresh)
	assertKind(t, err, domain.KindUnauthorized, "User not found or inactive")

	ghost, _ := tokens.IssueRefreshToken(999)
	_, err = svc.Refresh(context.Background(), ghost)
	assertKind(t, err, domain.KindUnauthorized, "User not found or inactive")
}

// ---------------------------------------------------------------------------
// ResolveUser (auth guard)
// ---------------------------------------------------------------------------

func TestAuthService_ResolveUser(t *testing.T) {
	svc, repo, tokens := newTestAuthService(t)
	u := mustRegister(t, svc, "a@example.com", "password123")
	access, _ := tokens.IssueAccessToken(u.ID)
	refresh, _ := tokens.IssueRefreshToken(u.ID)
	ghost, _ := tokens.IssueAccessToken(404)
	ctx := context.Background()

	got, err := svc.ResolveUser(ctx, access)
	if err != nil || got.ID != u.ID {
		t.Fatalf("expected user %d, got %+v, %v", u.ID, got, err)
	}

	_, err = svc.ResolveUser(ctx, "nope")
	assertKind(t, err, domain.KindUnauthorized, "Invalid token")

	_, err = svc.ResolveUser(ctx, refresh)
	assertKind(t, err, domain.KindUnauthorized, "Invalid token type")

	_, err = svc.ResolveUser(ctx, ghost)
	assertKind(t, err, domain.KindUnauthorized, "User not found")

	repo.byID[u.ID].IsActive = false
	_, err = svc.ResolveUser(ctx, access)
	assertKind(t, err, domain.KindUnauthorized, "Inactive user")
}

// stubTokens lets a test hand back arbitrary claims.
type stubTokens struct {
	claims *domain.TokenClaims
}

func (s stubTokens) IssueAccessToken(int64) (string, error)  { return "a", nil }
func (s stubTokens) IssueRefreshToken(int64) (string, error) { return "r", nil }
func (s stubTokens) Verify(string) (*domain.TokenClaims, error) {
	return s.claims, nil
}

func TestAuthService_ResolveUser_MissingSubject(t *testing.T) {
	repo := newStubUserRepo()
	for _, sub := range []string{"", "abc"} {
		svc := NewAuthService(repo, stubTokens{claims: &domain.TokenClaims{Subject: sub, Type: domain.TokenTypeAccess}}, discardLogger)
		_, err := svc.ResolveUser(context.Background(), "tok")
		assertKind(t, err, domain.KindUnauthorized, "Invalid token payload")
	}

	svc := NewAuthService(repo, stubTokens{claims: &domain.TokenClaims{Type: domain.TokenTypeRefresh}}, discardLogger)
	_, err := svc.Refresh(context.Background(), "tok")
	assertKind(t, err, domain.KindUnauthorized, "Invalid token payload")
}

func TestAuthService_ResolveOptionalUser(t *testing.T) {
	svc, _, tokens := newTestAuthService(t)
	u := mustRegister(t, svc, "a@example.com", "password123")
	access, _ := tokens.IssueAccessToken(u.ID)

	if got := svc.ResolveOptionalUser(context.Background(), ""); got != nil {
		t.Fatalf("empty token: expected nil, got %+v", got)
	}
	if got := svc.ResolveOptionalUser(context.Background(), "junk"); got != nil {
		t.Fatalf("bad token: expected nil, got %+v", got)
	}
	if got := svc.ResolveOptionalUser(context.Background(), access); got == nil || got.ID != u.ID {
		t.Fatalf("valid token: expected user, got %+v", got)
	}
}
