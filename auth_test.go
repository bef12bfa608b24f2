package main

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, secret, subject string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyJoinToken(t *testing.T) {
	req := require.New(t)
	cfg := testConfig()
	cfg.jwtSecret = "super-secret"

	userID, err := verifyJoinToken(cfg, signedToken(t, "super-secret", "user-42"))
	req.NoError(err)
	req.Equal("user-42", userID)
}

func TestVerifyJoinTokenWrongSecret(t *testing.T) {
	req := require.New(t)
	cfg := testConfig()
	cfg.jwtSecret = "super-secret"

	_, err := verifyJoinToken(cfg, signedToken(t, "some-other-secret", "user-42"))
	req.Error(err)
}

func TestVerifyJoinTokenAnonymous(t *testing.T) {
	req := require.New(t)

	// No secret configured: all joins are anonymous.
	userID, err := verifyJoinToken(testConfig(), signedToken(t, "whatever", "user-42"))
	req.NoError(err)
	req.Empty(userID)

	// Secret configured but no token supplied: still anonymous.
	cfg := testConfig()
	cfg.jwtSecret = "super-secret"
	userID, err = verifyJoinToken(cfg, "")
	req.NoError(err)
	req.Empty(userID)
}
