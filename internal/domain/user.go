package domain

import "time"

// UserRole é um tipo string para representar o papel do usuário no sistema.
type UserRole string

// Constantes para os papéis de usuário
const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// Session é o objeto de sessão persistido localmente (no Redis) após o login.
// A tela de administração só é servida quando IsAdmin é verdadeiro.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminGate é a capacidade resolvida uma única vez na inicialização.
// Nenhuma operação relê a sessão: o portão é consultado apenas na entrada da tela.
type AdminGate struct {
	allowed bool
	email   string
	token   string
}

// NewAdminGate constrói o portão a partir de uma sessão já validada.
func NewAdminGate(session Session, allowed bool) AdminGate {
	return AdminGate{allowed: allowed, email: session.Email, token: session.Token}
}

// DeniedGate é o portão usado quando não há sessão utilizável.
func DeniedGate() AdminGate {
	return AdminGate{}
}

// Allowed indica se a tela pode ser exibida.
func (g AdminGate) Allowed() bool { return g.allowed }

// Email é o administrador associado à sessão.
func (g AdminGate) Email() string { return g.email }

// Token é o bearer token repassado ao backend do catálogo.
func (g AdminGate) Token() string { return g.token }
