package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"catalogadmin/internal/domain"
	apperror "catalogadmin/internal/errors"
	"catalogadmin/internal/notify"
	"catalogadmin/internal/pkg/logger"
	"catalogadmin/internal/service/catalogservice"
	"catalogadmin/internal/service/dialogservice"
)

// ListController é o contrato que o Handler espera do controlador da lista.
type ListController interface {
	Refresh(ctx context.Context) error
	DeleteRecord(ctx context.Context, id string) error
	Find(id string) (domain.ProductRecord, bool)
	View() catalogservice.View
}

// DialogWorkflow é o contrato que o Handler espera do fluxo do diálogo.
type DialogWorkflow interface {
	OpenAdd(ctx context.Context) error
	OpenEdit(ctx context.Context, record domain.ProductRecord) error
	SetFields(values map[domain.Field]string) error
	SelectFile(file domain.FileUpload) error
	Submit(ctx context.Context) (dialogservice.SubmitResult, error)
	Close()
	View() dialogservice.View
}

// NotificationFeed é a fila de notificações transitórias da tela.
type NotificationFeed interface {
	Drain() []notify.Notification
}

// Handler agrupa os endpoints da tela de administração do catálogo.
type Handler struct {
	List      ListController
	Dialog    DialogWorkflow
	Feed      NotificationFeed
	Logger    logger.Logger
	MaxUpload int64
}

// NewHandler cria uma nova instância do Handler.
func NewHandler(list ListController, dialog DialogWorkflow, feed NotificationFeed, log logger.Logger, maxUpload int64) *Handler {
	return &Handler{
		List:      list,
		Dialog:    dialog,
		Feed:      feed,
		Logger:    log,
		MaxUpload: maxUpload,
	}
}

// FieldsRequest é o corpo de PATCH /v1/admin/dialog/fields. Campos ausentes não são alterados.
type FieldsRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *string `json:"price,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// SubmitResponse é o corpo de POST /v1/admin/dialog/submit.
type SubmitResponse struct {
	Result dialogservice.SubmitResult `json:"result"`
	Dialog dialogservice.View         `json:"dialog"`
	List   catalogservice.View        `json:"list"`
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)

		h.Logger.Debug("Requisição concluída com sucesso", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": successStatus,
		})

		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}

// --- Lista de produtos ---

// ListProductsHandler lida com a requisição GET /v1/admin/products.
// @Summary Lista os produtos mantidos pela tela
// @Description Devolve a lista atual, a contagem, o indicador de carregamento e o último erro.
// @Tags admin
// @Produce json
// @Success 200 {object} catalogservice.View "Lista de produtos"
// @Failure 403 {object} domain.ErrorResponse "Sessão sem permissão de administrador"
// @Router /admin/products [get]
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	h.handleServiceResponse(w, r, h.List.View(), nil, http.StatusOK)
}

// RefreshProductsHandler lida com a requisição POST /v1/admin/products/refresh.
// @Summary Recarrega a lista de produtos
// @Tags admin
// @Produce json
// @Success 200 {object} catalogservice.View "Lista recarregada"
// @Failure 502 {object} domain.ErrorResponse "Backend do catálogo indisponível"
// @Router /admin/products/refresh [post]
func (h *Handler) RefreshProductsHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.List.Refresh(r.Context()); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, h.List.View(), nil, http.StatusOK)
}

// DeleteProductHandler lida com a requisição DELETE /v1/admin/products/{id}.
// @Summary Exclui um produto
// @Description Exclui imediatamente, sem confirmação, e recarrega a lista.
// @Tags admin
// @Produce json
// @Param id path string true "ID do Produto"
// @Success 200 {object} catalogservice.View "Lista após a exclusão"
// @Failure 400 {object} domain.ErrorResponse "ID ausente"
// @Failure 502 {object} domain.ErrorResponse "Falha no backend do catálogo"
// @Router /admin/products/{id} [delete]
func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.List.DeleteRecord(r.Context(), id); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, h.List.View(), nil, http.StatusOK)
}

// --- Diálogo de produto ---

// GetDialogHandler lida com a requisição GET /v1/admin/dialog.
// @Summary Estado do diálogo de produto
// @Tags admin
// @Produce json
// @Success 200 {object} dialogservice.View "Estado do diálogo"
// @Router /admin/dialog [get]
func (h *Handler) GetDialogHandler(w http.ResponseWriter, r *http.Request) {
	h.handleServiceResponse(w, r, h.Dialog.View(), nil, http.StatusOK)
}

// OpenAddHandler lida com a requisição POST /v1/admin/dialog/add.
// @Summary Abre o diálogo em modo de criação
// @Tags admin
// @Produce json
// @Success 200 {object} dialogservice.View "Diálogo aberto"
// @Failure 409 {object} domain.ErrorResponse "Abertura substituída por outra ação"
// @Failure 502 {object} domain.ErrorResponse "Falha ao carregar categorias"
// @Router /admin/dialog/add [post]
func (h *Handler) OpenAddHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Dialog.OpenAdd(r.Context()); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, h.Dialog.View(), nil, http.StatusOK)
}

// OpenEditHandler lida com a requisição POST /v1/admin/dialog/edit/{id}.
// @Summary Abre o diálogo em modo de edição
// @Description O registro é tomado da lista mantida pela tela.
// @Tags admin
// @Produce json
// @Param id path string true "ID do Produto"
// @Success 200 {object} dialogservice.View "Diálogo aberto"
// @Failure 404 {object} domain.ErrorResponse "Produto fora da lista"
// @Failure 502 {object} domain.ErrorResponse "Falha ao carregar categorias"
// @Router /admin/dialog/edit/{id} [post]
func (h *Handler) OpenEditHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	record, ok := h.List.Find(id)
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não está na lista.", id)), http.StatusOK)
		return
	}
	if err := h.Dialog.OpenEdit(r.Context(), record); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, h.Dialog.View(), nil, http.StatusOK)
}

// SetFieldsHandler lida com a requisição PATCH /v1/admin/dialog/fields.
// @Summary Altera campos do rascunho
// @Tags admin
// @Accept json
// @Produce json
// @Param fields body FieldsRequest true "Campos a alterar"
// @Success 200 {object} dialogservice.View "Rascunho atualizado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Diálogo fechado ou categoria imutável"
// @Router /admin/dialog/fields [patch]
func (h *Handler) SetFieldsHandler(w http.ResponseWriter, r *http.Request) {
	var req FieldsRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	values := map[domain.Field]string{}
	for field, value := range map[domain.Field]*string{
		domain.FieldName:        req.Name,
		domain.FieldDescription: req.Description,
		domain.FieldPrice:       req.Price,
		domain.FieldCategory:    req.Category,
	} {
		if value != nil {
			values[field] = *value
		}
	}
	if err := h.Dialog.SetFields(values); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, h.Dialog.View(), nil, http.StatusOK)
}

// SelectFileHandler lida com a requisição PUT /v1/admin/dialog/file.
// @Summary Escolhe o arquivo de imagem do rascunho
// @Description O arquivo só é enviado ao serviço de imagens no momento do envio do diálogo.
// @Tags admin
// @Accept mpfd
// @Produce json
// @Param file formData file true "Imagem do produto"
// @Success 200 {object} dialogservice.View "Arquivo registrado"
// @Failure 400 {object} domain.ErrorResponse "Arquivo ausente, vazio ou grande demais"
// @Failure 409 {object} domain.ErrorResponse "Diálogo fechado"
// @Router /admin/dialog/file [put]
func (h *Handler) SelectFileHandler(w http.ResponseWriter, r *http.Request) {
	if h.MaxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)
	}
	if err := r.ParseMultipartForm(h.MaxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O arquivo excede o tamanho máximo permitido."), http.StatusOK)
			return
		}
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Formulário multipart inválido."), http.StatusOK)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O campo 'file' é obrigatório."), http.StatusOK)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewInternalError("Falha ao ler o arquivo enviado.", err), http.StatusOK)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O arquivo precisa ser uma imagem."), http.StatusOK)
		return
	}

	file := domain.FileUpload{Filename: header.Filename, ContentType: contentType, Data: data}
	if err := h.Dialog.SelectFile(file); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, h.Dialog.View(), nil, http.StatusOK)
}

// SubmitDialogHandler lida com a requisição POST /v1/admin/dialog/submit.
// @Summary Envia o diálogo
// @Description Valida, envia a imagem (se houver), cria ou atualiza o produto, fecha o diálogo e recarrega a lista.
// @Tags admin
// @Produce json
// @Success 200 {object} SubmitResponse "Produto persistido"
// @Failure 400 {object} domain.ErrorResponse "Formulário incompleto"
// @Failure 409 {object} domain.ErrorResponse "Diálogo fechado ou envio em andamento"
// @Failure 502 {object} domain.ErrorResponse "Falha no upload ou no backend do catálogo"
// @Router /admin/dialog/submit [post]
func (h *Handler) SubmitDialogHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.Dialog.Submit(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, SubmitResponse{
		Result: result,
		Dialog: h.Dialog.View(),
		List:   h.List.View(),
	}, nil, http.StatusOK)
}

// CloseDialogHandler lida com a requisição DELETE /v1/admin/dialog.
// @Summary Fecha o diálogo e descarta o rascunho
// @Tags admin
// @Produce json
// @Success 200 {object} dialogservice.View "Diálogo fechado"
// @Router /admin/dialog [delete]
func (h *Handler) CloseDialogHandler(w http.ResponseWriter, r *http.Request) {
	h.Dialog.Close()
	h.handleServiceResponse(w, r, h.Dialog.View(), nil, http.StatusOK)
}

// NotificationsHandler lida com a requisição GET /v1/admin/notifications.
// @Summary Consome as notificações pendentes
// @Tags admin
// @Produce json
// @Success 200 {array} notify.Notification "Notificações em ordem de emissão"
// @Router /admin/notifications [get]
func (h *Handler) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	h.handleServiceResponse(w, r, h.Feed.Drain(), nil, http.StatusOK)
}
