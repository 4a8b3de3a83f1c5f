package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Papel exigido para operar o painel do catálogo.
const RoleAdmin = "admin"

const issuer = "CatalogAdmin"

var (
	// ErrTokenExpired indica um token de sessão vencido: o administrador precisa de novo login.
	ErrTokenExpired = errors.New("token de sessão expirado")
	// ErrTokenInvalid cobre assinatura errada, emissor errado ou token malformado.
	ErrTokenInvalid = errors.New("token de sessão inválido")
)

// TokenService define o contrato para manipulação dos JWTs de sessão do painel.
type TokenService interface {
	GenerateToken(email string, role string) (string, error)
	ValidateToken(tokenString string) (*SessionClaims, error)
}

// SessionClaims são as informações gravadas no JWT da sessão de administrador.
type SessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin informa se o token autoriza o uso do painel.
func (c *SessionClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// Service assina e valida os tokens de sessão com HS256.
type Service struct {
	secretKey []byte
	expiry    time.Duration
	now       func() time.Time
}

// NewService cria o serviço de tokens. expiry é a validade de cada token emitido.
func NewService(secretKey string, expiry time.Duration) *Service {
	return &Service{
		secretKey: []byte(secretKey),
		expiry:    expiry,
		now:       time.Now,
	}
}

// Expiry é a validade dos tokens emitidos.
func (s *Service) Expiry() time.Duration { return s.expiry }

// GenerateToken emite o token da sessão. O e-mail do administrador é também o Subject.
func (s *Service) GenerateToken(email string, role string) (string, error) {
	now := s.now()
	claims := SessionClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   email,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("falha ao assinar o token de sessão: %w", err)
	}
	return signed, nil
}

// ValidateToken confere assinatura, emissor e validade e devolve as claims da sessão.
// Os erros devolvidos envolvem ErrTokenExpired ou ErrTokenInvalid.
func (s *Service) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	// 1. Só HS256 é aceito, com emissor e expiração obrigatórios
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	// 2. Parse e verificação da assinatura
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	})

	// 3. Classificação do erro para quem resolve a sessão
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}
