package router

import (
	"net/http"

	"catalogadmin/internal/api/admin"
)

// NewRouter configura e retorna o roteador HTTP principal.
// adminMiddleware envolve todas as rotas /v1/admin/ (portão de administrador, rate limit).
func NewRouter(adminHandler *admin.Handler, adminMiddleware ...func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	// --- 1. Rotas de Health Check ---
	mux.HandleFunc("/ping", PingHandler)

	// --- 2. Rotas da tela de administração (v1) ---
	adminMux := http.NewServeMux()

	// Lista de produtos
	adminMux.HandleFunc("GET /v1/admin/products", adminHandler.ListProductsHandler)
	adminMux.HandleFunc("POST /v1/admin/products/refresh", adminHandler.RefreshProductsHandler)
	adminMux.HandleFunc("DELETE /v1/admin/products/{id}", adminHandler.DeleteProductHandler)

	// Diálogo de produto
	adminMux.HandleFunc("GET /v1/admin/dialog", adminHandler.GetDialogHandler)
	adminMux.HandleFunc("DELETE /v1/admin/dialog", adminHandler.CloseDialogHandler)
	adminMux.HandleFunc("POST /v1/admin/dialog/add", adminHandler.OpenAddHandler)
	adminMux.HandleFunc("POST /v1/admin/dialog/edit/{id}", adminHandler.OpenEditHandler)
	adminMux.HandleFunc("PATCH /v1/admin/dialog/fields", adminHandler.SetFieldsHandler)
	adminMux.HandleFunc("PUT /v1/admin/dialog/file", adminHandler.SelectFileHandler)
	adminMux.HandleFunc("POST /v1/admin/dialog/submit", adminHandler.SubmitDialogHandler)

	// Notificações
	adminMux.HandleFunc("GET /v1/admin/notifications", adminHandler.NotificationsHandler)

	// --- 3. Aplicação de Middlewares ---
	// O primeiro middleware da lista é o mais externo.
	var protected http.Handler = adminMux
	for i := len(adminMiddleware) - 1; i >= 0; i-- {
		protected = adminMiddleware[i](protected)
	}
	mux.Handle("/v1/admin/", protected)

	return mux
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
