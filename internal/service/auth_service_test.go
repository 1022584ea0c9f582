package service_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notaria/internal/config"
	"notaria/internal/domain"
	"notaria/internal/service"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "notaria", AccessTokenExpiry: 15 * time.Minute}
}

func TestAuthService_IssueAndValidate(t *testing.T) {
	svc := service.NewAuthService(testJWTConfig())
	userID := uuid.New()

	token, expiry, err := svc.IssueToken(userID, "notario@example.mx")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiry, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "notario@example.mx", claims.Email)
}

func TestAuthService_SubjectOnlyToken(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    cfg.Issuer,
		Audience:  jwt.ClaimStrings{"access"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	claims, err := service.NewAuthService(cfg).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestAuthService_RejectsInvalidTokens(t *testing.T) {
	cfg := testJWTConfig()
	sign := func(secret string, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	valid := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{"access"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongAudience := valid()
	wrongAudience.Audience = jwt.ClaimStrings{"refresh"}
	wrongIssuer := valid()
	wrongIssuer.Issuer = "otro"
	badSubject := valid()
	badSubject.Subject = "not-a-uuid"
	noExpiry := valid()
	noExpiry.ExpiresAt = nil

	tokens := map[string]string{
		"garbage":        "not.a.token",
		"wrong secret":   sign("other-secret", valid()),
		"expired":        sign(cfg.Secret, expired),
		"wrong audience": sign(cfg.Secret, wrongAudience),
		"wrong issuer":   sign(cfg.Secret, wrongIssuer),
		"bad subject":    sign(cfg.Secret, badSubject),
		"no expiry":      sign(cfg.Secret, noExpiry),
	}
	svc := service.NewAuthService(cfg)
	for name, token := range tokens {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}
