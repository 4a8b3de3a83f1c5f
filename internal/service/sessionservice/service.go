package sessionservice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"catalogadmin/internal/domain"
	apperror "catalogadmin/internal/errors"
	"catalogadmin/internal/pkg/cache"
	"catalogadmin/internal/pkg/logger"
	"catalogadmin/internal/pkg/token"
)

const sessionKey = "session:%s"

// Credentials é o administrador configurado (e-mail e hash bcrypt da senha).
type Credentials struct {
	Email        string
	PasswordHash string
}

// Service cria e resolve as sessões do painel, persistidas no Redis.
type Service struct {
	cache  cache.Client
	tokens token.TokenService
	creds  Credentials
	ttl    time.Duration
	logger logger.Logger
	now    func() time.Time
}

// NewService cria o serviço de sessão. ttl é a validade da sessão e do token emitido.
func NewService(c cache.Client, tokens token.TokenService, creds Credentials, ttl time.Duration, logger logger.Logger) *Service {
	return &Service{
		cache:  c,
		tokens: tokens,
		creds:  creds,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Login autentica o administrador, gera o JWT e grava a sessão no Redis.
func (s *Service) Login(ctx context.Context, email, password string) (domain.Session, error) {
	// 1. Validação Básica
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.Session{}, apperror.NewUnauthorizedError("Email e senha são obrigatórios.")
	}

	// 2. Comparar credenciais. E-mail errado e senha errada produzem a mesma resposta.
	if s.creds.PasswordHash == "" || !strings.EqualFold(email, s.creds.Email) {
		return domain.Session{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password)); err != nil {
		return domain.Session{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	// 3. Gerar JWT
	tokenString, err := s.tokens.GenerateToken(s.creds.Email, string(domain.RoleAdmin))
	if err != nil {
		return domain.Session{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	// 4. Persistir a sessão
	now := s.now().UTC()
	session := domain.Session{
		ID:        uuid.New().String(),
		Email:     s.creds.Email,
		IsAdmin:   true,
		Token:     tokenString,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	data, err := json.Marshal(session)
	if err != nil {
		return domain.Session{}, apperror.NewInternalError("Falha ao serializar a sessão.", err)
	}
	if err := s.cache.Set(ctx, fmt.Sprintf(sessionKey, session.ID), data, s.ttl); err != nil {
		return domain.Session{}, apperror.NewInternalError("Falha ao gravar a sessão.", err)
	}

	s.logger.Info("Sessão de administrador criada.", map[string]interface{}{"session_id": session.ID, "email": session.Email})
	return session, nil
}

// Resolve lê a sessão e devolve o portão de administrador. Qualquer falha resulta em portão negado.
func (s *Service) Resolve(ctx context.Context, sessionID string) domain.AdminGate {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		s.logger.Warn("Nenhuma sessão configurada: painel bloqueado.", nil)
		return domain.DeniedGate()
	}

	raw, err := s.cache.Get(ctx, fmt.Sprintf(sessionKey, sessionID))
	if err != nil {
		if err != cache.ErrCacheMiss {
			s.logger.Error("Falha ao ler a sessão do Redis.", err)
		} else {
			s.logger.Warn("Sessão não encontrada.", map[string]interface{}{"session_id": sessionID})
		}
		return domain.DeniedGate()
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		s.logger.Error("Sessão corrompida no Redis.", err)
		return domain.DeniedGate()
	}

	if !session.IsAdmin {
		s.logger.Warn("Sessão sem permissão de administrador.", map[string]interface{}{"session_id": sessionID})
		return domain.DeniedGate()
	}
	if !session.ExpiresAt.IsZero() && s.now().After(session.ExpiresAt) {
		s.logger.Warn("Sessão expirada.", map[string]interface{}{"session_id": sessionID})
		return domain.DeniedGate()
	}

	claims, err := s.tokens.ValidateToken(session.Token)
	if err != nil {
		s.logger.Error("Token da sessão inválido.", err)
		return domain.DeniedGate()
	}
	if !claims.IsAdmin() {
		s.logger.Warn("Token sem papel de administrador.", map[string]interface{}{"role": claims.Role})
		return domain.DeniedGate()
	}

	s.logger.Info("Sessão de administrador resolvida.", map[string]interface{}{"email": session.Email})
	return domain.NewAdminGate(session, true)
}

// Logout remove a sessão do Redis.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.cache.Delete(ctx, fmt.Sprintf(sessionKey, strings.TrimSpace(sessionID))); err != nil {
		return apperror.NewInternalError("Falha ao remover a sessão.", err)
	}
	return nil
}
