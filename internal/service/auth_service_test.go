package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BigPoppaG/CourseMe/internal/config"
	"github.com/BigPoppaG/CourseMe/internal/model"
)

func newAuthFixture() *AuthService {
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4, // MinCost, keeps the tests fast
	}
	return NewAuthService(cfg, deadRedis())
}

func signTestToken(t *testing.T, secret string, user *model.User, expiresAt time.Time) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "test-jti",
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:    user.ID,
		SubjectID: user.SubjectID,
		IsAdmin:   user.IsAdmin,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestPasswordRoundTrip(t *testing.T) {
	svc := newAuthFixture()

	hash, err := svc.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("password stored in the clear")
	}

	if err := svc.CheckPassword(hash, "correct horse battery staple"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := svc.CheckPassword(hash, "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc := newAuthFixture()
	user := &model.User{ID: 42, SubjectID: 3, IsAdmin: true}

	token := signTestToken(t, "test-secret", user, time.Now().Add(time.Hour))

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.SubjectID != 3 || !claims.IsAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := newAuthFixture()
	user := &model.User{ID: 42, SubjectID: 3}

	token := signTestToken(t, "other-secret", user, time.Now().Add(time.Hour))

	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected validation failure for wrong secret")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newAuthFixture()
	user := &model.User{ID: 42, SubjectID: 3}

	token := signTestToken(t, "test-secret", user, time.Now().Add(-time.Minute))

	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected validation failure for expired token")
	}
}
