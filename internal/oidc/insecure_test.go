package oidc

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestInsecureVerifier_ParsesClaimsWithoutSignatureCheck(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1", "email": "a@example.com"}).
		SignedString([]byte("any-secret"))
	require.NoError(t, err)

	tok, err := NewInsecureVerifier().Verify(context.Background(), raw)
	require.NoError(t, err)

	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "user-1", claims["sub"])
	require.Equal(t, "a@example.com", claims["email"])
}

func TestInsecureVerifier_RejectsGarbage(t *testing.T) {
	_, err := NewInsecureVerifier().Verify(context.Background(), "not-a-jwt")
	require.Error(t, err)
}

func TestIssuerURL(t *testing.T) {
	require.Equal(t, "https://kc.example.com/realms/docs", IssuerURL("https://kc.example.com/", "docs"))
	require.Equal(t, "https://kc.example.com/realms/docs", IssuerURL("https://kc.example.com/realms/docs", ""))
}
