package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogadmin/internal/pkg/token"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := token.NewService("segredo", time.Hour)

	signed, err := svc.GenerateToken("admin@loja.com", token.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "admin@loja.com", claims.Email)
	assert.Equal(t, "admin@loja.com", claims.Subject)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, "CatalogAdmin", claims.Issuer)
	assert.Equal(t, time.Hour, svc.Expiry())
}

func TestValidateToken_NonAdminRole(t *testing.T) {
	svc := token.NewService("segredo", time.Hour)
	signed, err := svc.GenerateToken("user@loja.com", "user")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(signed)

	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())
}

func TestValidateToken_Rejections(t *testing.T) {
	good := token.NewService("segredo", time.Hour)

	wrongSecret, err := token.NewService("outro", time.Hour).GenerateToken("admin@loja.com", token.RoleAdmin)
	require.NoError(t, err)
	expired, err := token.NewService("segredo", -time.Minute).GenerateToken("admin@loja.com", token.RoleAdmin)
	require.NoError(t, err)

	// Mesmo segredo, mas outro emissor e sem expiração.
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "outro-sistema"}).
		SignedString([]byte("segredo"))
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Issuer: "CatalogAdmin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"assinatura com outro segredo", wrongSecret, token.ErrTokenInvalid},
		{"token expirado", expired, token.ErrTokenExpired},
		{"emissor estranho", foreign, token.ErrTokenInvalid},
		{"algoritmo none", unsigned, token.ErrTokenInvalid},
		{"malformado", "nao-e-um-jwt", token.ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := good.ValidateToken(tt.input)

			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
