package catalogservice

import (
	"context"
	"strings"
	"sync"

	"catalogadmin/internal/domain"
	apperror "catalogadmin/internal/errors"
	"catalogadmin/internal/notify"
	"catalogadmin/internal/pkg/logger"
)

// Mensagens exibidas ao administrador.
const (
	MsgDeleted       = "Produto excluído com sucesso."
	MsgDeleteFailed  = "Não foi possível excluir o produto."
	MsgRefreshFailed = "Não foi possível carregar a lista de produtos."
)

// View é o estado da lista exposto à tela.
type View struct {
	Products []domain.ProductRecord `json:"products"`
	Count    int                    `json:"count"`
	Loading  bool                   `json:"loading"`
	Error    string                 `json:"error,omitempty"`
}

// Controller é o dono único da lista de produtos e do indicador de carregamento.
// A lista só é substituída por um FindAll completo; nunca é corrigida localmente.
type Controller struct {
	repo     domain.ProductRepository
	notifier notify.Notifier
	logger   logger.Logger

	mu       sync.Mutex
	products []domain.ProductRecord
	pending  int    // refreshes em andamento
	started  uint64 // sequência do último refresh iniciado
	applied  uint64 // sequência do refresh cuja lista está em products
	lastErr  string
}

// NewController cria o controlador da lista.
func NewController(repo domain.ProductRepository, notifier notify.Notifier, logger logger.Logger) *Controller {
	return &Controller{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		products: []domain.ProductRecord{},
	}
}

// Refresh busca a lista completa no backend e substitui a lista mantida.
// Um refresh mais antigo que termina depois de um mais novo não sobrescreve o resultado.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.started++
	seq := c.started
	c.pending++
	c.mu.Unlock()

	c.logger.Debug("Iniciando refresh da lista de produtos.", map[string]interface{}{"seq": seq})

	records, err := c.repo.FindAll(ctx)

	c.mu.Lock()
	c.pending--
	if err != nil {
		// Falha de um refresh já superado por outro mais novo não afeta a tela.
		superseded := seq <= c.applied
		if !superseded {
			c.lastErr = MsgRefreshFailed
		}
		c.mu.Unlock()

		if superseded {
			c.logger.Warn("Refresh obsoleto falhou; a lista mais nova é mantida.", map[string]interface{}{"seq": seq, "error": err.Error()})
		} else {
			c.logger.Error("Falha ao buscar a lista de produtos.", err)
			c.notifier.Error(notify.OpRefresh, MsgRefreshFailed)
		}
		return apperror.WrapRemote("list", err)
	}
	if seq > c.applied {
		if records == nil {
			records = []domain.ProductRecord{}
		}
		c.applied = seq
		c.products = records
		c.lastErr = ""
	}
	c.mu.Unlock()

	c.logger.Info("Lista de produtos atualizada.", map[string]interface{}{"seq": seq, "count": len(records)})
	return nil
}

// DeleteRecord exclui o produto no backend, recarrega a lista e notifica o sucesso.
// Não há etapa de confirmação.
func (c *Controller) DeleteRecord(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.NewValidationError("O ID do produto é obrigatório.")
	}

	c.logger.Debug("Excluindo produto.", map[string]interface{}{"id": id})

	if err := c.repo.Delete(ctx, id); err != nil {
		c.mu.Lock()
		c.lastErr = MsgDeleteFailed
		c.mu.Unlock()

		c.logger.Error("Falha ao excluir produto no backend.", err)
		c.notifier.Error(notify.OpDelete, MsgDeleteFailed)
		return apperror.WrapRemote("delete", err)
	}

	if err := c.Refresh(ctx); err != nil {
		return err
	}

	c.notifier.Success(notify.OpDelete, MsgDeleted)
	c.logger.Info("Produto excluído.", map[string]interface{}{"id": id})
	return nil
}

// Find procura um produto na lista mantida (usado para semear o diálogo de edição).
func (c *Controller) Find(id string) (domain.ProductRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.ProductRecord{}, false
}

// Loading indica se há algum refresh em andamento.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

// View devolve uma cópia do estado atual da lista.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	products := make([]domain.ProductRecord, len(c.products))
	copy(products, c.products)
	return View{
		Products: products,
		Count:    len(products),
		Loading:  c.pending > 0,
		Error:    c.lastErr,
	}
}
