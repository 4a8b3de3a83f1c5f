package middleware

import (
	"encoding/json"
	"net/http"

	"catalogadmin/internal/domain"
	apperror "catalogadmin/internal/errors"
)

// RequireAdmin protege a tela de administração com o portão resolvido na inicialização.
// A sessão não é relida por requisição: o AdminGate é uma capacidade imutável.
func RequireAdmin(gate domain.AdminGate) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !gate.Allowed() {
				writeError(w, apperror.NewForbiddenError("A tela de administração exige uma sessão de administrador."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeError escreve o corpo padronizado domain.ErrorResponse.
func writeError(w http.ResponseWriter, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}
