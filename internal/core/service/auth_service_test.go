package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

type stubRevoker struct {
	revoked map[string]time.Duration
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]time.Duration)}
}

func (r *stubRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	r.revoked[jti] = ttl
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := r.revoked[jti]
	return ok, nil
}

func newTestAuthService(repo *stubUserRepo, revoker *stubRevoker) *AuthService {
	return NewAuthService(repo, revoker, "secret", time.Hour, 48*time.Hour, zerolog.Nop())
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, newStubRevoker())

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Password: "pass123",
		Email:    "Alice@Example.com",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("self-registration must produce a regular user, got %q", user.Role)
	}
	if !user.Active {
		t.Fatalf("new accounts should start active")
	}
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), newStubRevoker())

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob"}); !errors.Is(err, domain.ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, newStubRevoker())

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "pass", Email: "bob@example.com"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "other", Email: "bob2@example.com"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, newStubRevoker())

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "carol", Password: "pass", Email: "carol@example.com"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "carol2", Password: "pass", Email: "Carol@Example.com"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for same email in different case, got %v", err)
	}
}

func TestAuthService_Login_ByUsernameAndEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, newStubRevoker())

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "dave", Password: "s3cret", Email: "dave@example.com"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for _, identifier := range []string{"dave", "dave@example.com"} {
		result, err := svc.Login(context.Background(), ports.LoginInput{Identifier: identifier, Password: "s3cret"})
		if err != nil {
			t.Fatalf("login with %q failed: %v", identifier, err)
		}
		if result.Token == "" {
			t.Fatalf("expected token, got empty")
		}
		if result.User.Username != "dave" {
			t.Fatalf("unexpected user: %+v", result.User)
		}

		claims := jwt.MapClaims{}
		parsed, err := jwt.ParseWithClaims(result.Token, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte("secret"), nil
		})
		if err != nil || !parsed.Valid {
			t.Fatalf("token invalid: %v", err)
		}
		if claims["role"] != domain.RoleUser {
			t.Fatalf("expected role %s, got %v", domain.RoleUser, claims["role"])
		}
		if jti, _ := claims["jti"].(string); jti == "" {
			t.Fatalf("expected a jti claim")
		}
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, newStubRevoker())

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Username: "erin", Password: "goodpass", Email: "erin@example.com"})
	if _, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "erin", Password: "badpass"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), newStubRevoker())

	if _, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "ghost", Password: "pass"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user must look like bad credentials, got %v", err)
	}
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, newStubRevoker())

	user, err := svc.Register(context.Background(), ports.RegisterInput{Username: "frank", Password: "pass", Email: "frank@example.com"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := repo.SetActive(context.Background(), user.ID, false); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "frank", Password: "pass"}); !errors.Is(err, domain.ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}

	// Wrong password on an inactive account must not reveal the inactive state.
	if _, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "frank", Password: "wrong"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_RememberMeExtendsExpiry(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, newStubRevoker())

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Username: "gina", Password: "pass", Email: "gina@example.com"})

	short, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "gina", Password: "pass"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	long, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "gina", Password: "pass", RememberMe: true})
	if err != nil {
		t.Fatalf("remember-me login failed: %v", err)
	}

	if !long.ExpiresAt.After(short.ExpiresAt.Add(24 * time.Hour)) {
		t.Fatalf("remember-me expiry %v should be well past the default %v", long.ExpiresAt, short.ExpiresAt)
	}
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	repo := newStubUserRepo()
	revoker := newStubRevoker()
	svc := newTestAuthService(repo, revoker)

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Username: "hank", Password: "pass", Email: "hank@example.com"})
	result, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "hank", Password: "pass"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if len(revoker.revoked) != 1 {
		t.Fatalf("expected exactly one revoked jti, got %d", len(revoker.revoked))
	}
	for jti, ttl := range revoker.revoked {
		if jti == "" {
			t.Fatalf("revoked jti is empty")
		}
		if ttl <= 0 || ttl > time.Hour {
			t.Fatalf("revocation ttl %v should match the remaining token lifetime", ttl)
		}
	}
}

func TestAuthService_Logout_MalformedTokenIsNoop(t *testing.T) {
	revoker := newStubRevoker()
	svc := newTestAuthService(newStubUserRepo(), revoker)

	if err := svc.Logout(context.Background(), "not-a-token"); err != nil {
		t.Fatalf("malformed token should be a no-op, got %v", err)
	}
	if len(revoker.revoked) != 0 {
		t.Fatalf("nothing should have been revoked")
	}
}
