package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/smartinventory/inventory-backend/pkg/auth"
	"github.com/smartinventory/inventory-backend/pkg/config"
	"github.com/smartinventory/inventory-backend/pkg/db/models"
	pkgerrors "github.com/smartinventory/inventory-backend/pkg/errors"
	"github.com/smartinventory/inventory-backend/pkg/security"
)

func TestServiceLogin(t *testing.T) {
	password := "warehouse-secret"
	hashed := mustHashPassword(t, password)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "clerk@example.com",
		PasswordHash: hashed,
		FirstName:    "Stock",
		LastName:     "Clerk",
		Role:         "member",
		IsActive:     true,
	}
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "smartinventory",
		ExpirationMinutes: 30,
	}

	svc := buildTestService(t, user, cfg)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "  Clerk@Example.com ",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id claim %s, got %s", user.ID, claims.UserID)
	}
	if claims.Role != "member" {
		t.Fatalf("expected member role claim, got %s", claims.Role)
	}
	if resp.User == nil || resp.User.Email != user.Email {
		t.Fatalf("expected user in response, got %+v", resp.User)
	}
	if user.LastLoginAt == nil {
		t.Fatal("expected last login to be recorded")
	}
}

func TestServiceLoginWrongPassword(t *testing.T) {
	hashed := mustHashPassword(t, "right-password")
	user := &models.User{
		ID:           uuid.New(),
		Email:        "clerk@example.com",
		PasswordHash: hashed,
		Role:         "member",
		IsActive:     true,
	}
	svc := buildTestService(t, user, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginInactiveUser(t *testing.T) {
	password := "still-knows-it"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "former@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         "member",
		IsActive:     false,
	}
	svc := buildTestService(t, user, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginUnknownEmail(t *testing.T) {
	svc := buildTestService(t, nil, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func buildTestService(t *testing.T, user *models.User, jwtCfg config.JWTConfig) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:  stubUserRepo{user: user},
		JWTConfig: jwtCfg,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "smartinventory",
		ExpirationMinutes: 30,
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubUserRepo struct {
	user *models.User
}

func (s stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}
