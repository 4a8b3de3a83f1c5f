package dialogservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"catalogadmin/internal/domain"
	apperror "catalogadmin/internal/errors"
	"catalogadmin/internal/notify"
	"catalogadmin/internal/pkg/logger"
)

// Mensagens e títulos exibidos ao administrador.
const (
	MsgIncomplete        = "Preencha todas as informações do produto."
	MsgAdded             = "Produto adicionado com sucesso."
	MsgUpdated           = "Produto atualizado com sucesso."
	MsgUploadFailed      = "Não foi possível enviar a imagem."
	MsgCreateFailed      = "Não foi possível adicionar o produto."
	MsgUpdateFailed      = "Não foi possível atualizar o produto."
	MsgSubmitFailed      = "Não foi possível salvar o produto."
	MsgCategoriesFailed  = "Não foi possível carregar as categorias."
	TitleAdd             = "Adicionar produto"
	TitleEdit            = "Editar produto"
	errEmptyUploadResult = "o serviço de imagens não devolveu uma referência"
)

var (
	// ErrCategoryImmutable: a categoria de um produto existente é fixa.
	// O backend não aceita recategorização por este fluxo.
	ErrCategoryImmutable = apperror.NewConflictError("A categoria de um produto existente não pode ser alterada.")

	ErrDialogClosed    = apperror.NewConflictError("Nenhum diálogo de produto está aberto.")
	ErrSubmitInFlight  = apperror.NewConflictError("Já existe um envio em andamento para este diálogo.")
	ErrOpenSuperseded  = apperror.NewConflictError("A abertura do diálogo foi substituída por outra ação.")
	ErrIncompleteForm  = apperror.NewValidationError(MsgIncomplete)
	ErrEmptyFile       = apperror.NewValidationError("O arquivo de imagem está vazio.")
	ErrMissingImageRef = apperror.NewValidationError("O produto selecionado não possui imagem.")
)

// Refresher é o controlador da lista, chamado após cada persistência bem-sucedida.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// SubmitResult é o resultado explícito de um envio bem-sucedido.
// Stale indica que o diálogo foi fechado ou reaberto enquanto o envio estava em andamento:
// o registro foi persistido, mas os efeitos sobre o diálogo foram descartados.
type SubmitResult struct {
	Mode     domain.ModeKind      `json:"mode"`
	Record   domain.ProductRecord `json:"record"`
	Uploaded bool                 `json:"uploaded"`
	Stale    bool                 `json:"stale"`
}

// DraftView é a forma do rascunho exposta à tela (sem os bytes do arquivo).
type DraftView struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         string `json:"price"`
	Category      string `json:"category"`
	PendingFile   string `json:"pending_file,omitempty"`
	ExistingImage string `json:"existing_image,omitempty"`
}

// View é o estado do diálogo exposto à tela.
type View struct {
	Mode           domain.ModeKind         `json:"mode"`
	ProductID      string                  `json:"product_id,omitempty"`
	Title          string                  `json:"title,omitempty"`
	Draft          *DraftView              `json:"draft,omitempty"`
	Categories     []domain.CategoryRecord `json:"categories"`
	CategoryLocked bool                    `json:"category_locked"`
	Submitting     bool                    `json:"submitting"`
	Error          string                  `json:"error,omitempty"`
}

// Workflow é a máquina de estados do diálogo de produto: Closed → Add | Edit → Closed.
//
// As chamadas remotas são feitas sem o lock, o que permite que Close (ou uma nova abertura)
// aconteça enquanto um Submit aguarda o upload ou a persistência. Cada abertura ou fechamento
// incrementa generation; um envio cuja geração não é mais a atual tem seus efeitos sobre o
// diálogo descartados.
type Workflow struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	uploader   domain.ImageUploader
	refresher  Refresher
	notifier   notify.Notifier
	logger     logger.Logger

	mu           sync.Mutex
	mode         domain.DialogMode
	draft        *domain.FormDraft // nil se e somente se mode == Closed
	categoryList []domain.CategoryRecord
	generation   uint64 // muda a cada abertura/fechamento efetivo
	intent       uint64 // muda a cada pedido de abertura ou fechamento
	submissions  uint64 // token monotônico de envio
	inFlight     uint64 // token do envio em andamento, 0 se nenhum
	lastErr      string
}

// NewWorkflow cria o fluxo do diálogo, inicialmente fechado.
func NewWorkflow(
	products domain.ProductRepository,
	categories domain.CategoryRepository,
	uploader domain.ImageUploader,
	refresher Refresher,
	notifier notify.Notifier,
	logger logger.Logger,
) *Workflow {
	return &Workflow{
		products:   products,
		categories: categories,
		uploader:   uploader,
		refresher:  refresher,
		notifier:   notifier,
		logger:     logger,
		mode:       domain.Closed{},
	}
}

// OpenAdd busca as categorias e abre o diálogo em modo Add com um rascunho vazio.
func (w *Workflow) OpenAdd(ctx context.Context) error {
	return w.open(ctx, domain.Add{}, &domain.FormDraft{})
}

// OpenEdit busca as categorias e abre o diálogo em modo Edit, semeando o rascunho a partir do registro.
func (w *Workflow) OpenEdit(ctx context.Context, record domain.ProductRecord) error {
	if strings.TrimSpace(record.ID) == "" {
		return apperror.NewValidationError("O ID do produto é obrigatório.")
	}
	if record.Image == "" {
		return ErrMissingImageRef
	}

	draft := &domain.FormDraft{
		Name:          record.Name,
		Description:   record.Description,
		Price:         record.Price.String(),
		Category:      record.Category.ID,
		ExistingImage: record.Image,
	}
	return w.open(ctx, domain.Edit{ProductID: record.ID}, draft)
}

func (w *Workflow) open(ctx context.Context, mode domain.DialogMode, draft *domain.FormDraft) error {
	w.mu.Lock()
	w.intent++
	intent := w.intent
	w.mu.Unlock()

	w.logger.Debug("Abrindo diálogo de produto.", map[string]interface{}{"mode": mode.Kind()})

	// As categorias são buscadas a cada abertura; não há cache entre sessões do diálogo.
	cats, err := w.categories.FindAll(ctx)
	if err != nil {
		w.logger.Error("Falha ao buscar categorias.", err)
		w.notifier.Error(notify.OpOpen, MsgCategoriesFailed)
		return apperror.WrapRemote("categories", err)
	}
	if cats == nil {
		cats = []domain.CategoryRecord{}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.intent != intent {
		w.logger.Warn("Abertura de diálogo descartada: outra ação ocorreu durante a busca de categorias.", map[string]interface{}{"mode": mode.Kind()})
		return ErrOpenSuperseded
	}

	w.generation++
	w.mode = mode
	w.draft = draft
	w.categoryList = cats
	w.inFlight = 0
	w.lastErr = ""

	w.logger.Info("Diálogo de produto aberto.", map[string]interface{}{"mode": mode.Kind(), "categories": len(cats)})
	return nil
}

// SetField altera um campo do rascunho. Não valida o valor: a validação acontece no envio.
func (w *Workflow) SetField(name, value string) error {
	field, ok := domain.ParseField(name)
	if !ok {
		return apperror.NewValidationError(fmt.Sprintf("Campo desconhecido: %q.", name))
	}
	return w.SetFields(map[domain.Field]string{field: value})
}

// SetFields altera vários campos de uma vez. Ou todos são aplicados, ou nenhum.
func (w *Workflow) SetFields(values map[domain.Field]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.draft == nil {
		return ErrDialogClosed
	}

	// 1. Checagem completa antes de tocar no rascunho
	for field := range values {
		switch field {
		case domain.FieldName, domain.FieldDescription, domain.FieldPrice:
		case domain.FieldCategory:
			if _, editing := w.mode.(domain.Edit); editing {
				return ErrCategoryImmutable
			}
		default:
			return apperror.NewValidationError(fmt.Sprintf("Campo desconhecido: %q.", string(field)))
		}
	}

	// 2. Aplicação
	for field, value := range values {
		switch field {
		case domain.FieldName:
			w.draft.Name = value
		case domain.FieldDescription:
			w.draft.Description = value
		case domain.FieldPrice:
			w.draft.Price = value
		case domain.FieldCategory:
			w.draft.Category = value
		}
	}
	return nil
}

// SelectFile guarda o arquivo pendente. A referência existente é mantida até o envio decidir a referência final.
func (w *Workflow) SelectFile(file domain.FileUpload) error {
	if len(file.Data) == 0 {
		return ErrEmptyFile
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.draft == nil {
		return ErrDialogClosed
	}
	w.draft.PendingFile = &file
	return nil
}

// Close descarta o rascunho e fecha o diálogo. Pode ser chamado a qualquer momento, inclusive
// durante um envio; chamar duas vezes equivale a chamar uma.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.intent++
	w.closeLocked()
}

func (w *Workflow) closeLocked() {
	if w.draft == nil {
		return
	}
	w.generation++
	w.mode = domain.Closed{}
	w.draft = nil
	w.categoryList = nil
	w.inFlight = 0
	w.lastErr = ""
}

// Validate aprova o rascunho se nome, descrição, categoria e preço estão preenchidos e há
// alguma fonte de imagem. Qualquer falha produz a mesma mensagem genérica.
func Validate(d domain.FormDraft) error {
	_, err := validate(d)
	return err
}

// validate devolve o preço já interpretado, usado no payload do envio.
func validate(d domain.FormDraft) (decimal.Decimal, error) {
	if strings.TrimSpace(d.Name) == "" ||
		strings.TrimSpace(d.Description) == "" ||
		strings.TrimSpace(d.Category) == "" ||
		!d.HasImage() {
		return decimal.Zero, ErrIncompleteForm
	}
	price, err := parsePrice(d.Price)
	if err != nil {
		return decimal.Zero, ErrIncompleteForm
	}
	return price, nil
}

// parsePrice interpreta o preço do formulário; vazio, não numérico ou negativo é rejeitado.
func parsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, errors.New("preço ausente")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if price.IsNegative() {
		return decimal.Zero, errors.New("preço negativo")
	}
	return price, nil
}

// Submit valida o rascunho e executa a sequência upload → persistência → notificação → fechamento → refresh.
// Não há nova tentativa automática em nenhuma etapa.
func (w *Workflow) Submit(ctx context.Context) (SubmitResult, error) {
	w.mu.Lock()
	if w.draft == nil {
		w.mu.Unlock()
		return SubmitResult{}, ErrDialogClosed
	}
	if w.inFlight != 0 {
		w.mu.Unlock()
		return SubmitResult{}, ErrSubmitInFlight
	}

	draft := *w.draft
	mode := w.mode

	// 1. Validação local: nenhuma chamada de rede em caso de falha
	price, err := validate(draft)
	if err != nil {
		w.lastErr = MsgIncomplete
		w.mu.Unlock()

		w.logger.Warn("Envio rejeitado: formulário incompleto.", map[string]interface{}{"mode": mode.Kind()})
		w.notifier.Error(notify.OpValidate, MsgIncomplete)
		return SubmitResult{}, err
	}

	w.submissions++
	token := w.submissions
	w.inFlight = token
	gen := w.generation
	w.lastErr = ""
	w.mu.Unlock()

	w.logger.Debug("Iniciando envio do diálogo.", map[string]interface{}{"mode": mode.Kind(), "submission": token})

	// 2-4. Upload (se houver arquivo novo) e persistência, estritamente nessa ordem
	result, op, err := w.persist(ctx, mode, draft, price)

	w.mu.Lock()
	if w.inFlight == token {
		w.inFlight = 0
	}
	stale := w.generation != gen

	if err != nil {
		msg := failureMessage(op)
		if !stale {
			w.lastErr = msg
		}
		w.mu.Unlock()

		w.logger.Error(fmt.Sprintf("Falha no envio do diálogo (%s).", op), err)
		if !stale {
			// O diálogo continua aberto com o rascunho intacto para uma nova tentativa.
			w.notifier.Error(op, msg)
		}
		return SubmitResult{Mode: mode.Kind(), Stale: stale}, apperror.WrapRemote(op, err)
	}

	result.Stale = stale
	if !stale {
		// 5. Notificação específica do modo, depois o fechamento
		if result.Mode == domain.ModeEdit {
			w.notifier.Success(notify.OpEdit, MsgUpdated)
		} else {
			w.notifier.Success(notify.OpAdd, MsgAdded)
		}
		w.closeLocked()
	}
	w.mu.Unlock()

	if stale {
		w.logger.Warn("Resposta de envio obsoleta: efeitos sobre o diálogo descartados.", map[string]interface{}{"submission": token, "id": result.Record.ID})
	} else {
		w.logger.Info("Produto persistido pelo diálogo.", map[string]interface{}{"mode": result.Mode, "id": result.Record.ID, "uploaded": result.Uploaded})
	}

	// O backend mudou de qualquer forma: a lista é recarregada mesmo para respostas obsoletas.
	if err := w.refresher.Refresh(ctx); err != nil {
		w.logger.Warn("Refresh após envio falhou.", map[string]interface{}{"error": err.Error()})
	}

	return result, nil
}

// persist resolve a referência de imagem e chama create/update. Devolve a operação que falhou.
func (w *Workflow) persist(ctx context.Context, mode domain.DialogMode, draft domain.FormDraft, price decimal.Decimal) (SubmitResult, string, error) {
	image := draft.ExistingImage
	uploaded := false

	if draft.PendingFile != nil {
		ref, err := w.uploader.Upload(ctx, *draft.PendingFile)
		if err != nil {
			return SubmitResult{}, notify.OpUpload, err
		}
		if strings.TrimSpace(ref) == "" {
			return SubmitResult{}, notify.OpUpload, apperror.NewRemoteError(notify.OpUpload, errors.New(errEmptyUploadResult))
		}
		image = ref
		uploaded = true
	}

	payload := domain.ProductPayload{
		Name:        strings.TrimSpace(draft.Name),
		Description: strings.TrimSpace(draft.Description),
		Price:       price,
		Image:       image,
	}

	switch m := mode.(type) {
	case domain.Edit:
		// A categoria não é enviada: é imutável após a criação.
		record, err := w.products.Update(ctx, m.ProductID, payload)
		if err != nil {
			return SubmitResult{}, notify.OpEdit, err
		}
		return SubmitResult{Mode: domain.ModeEdit, Record: record, Uploaded: uploaded}, notify.OpEdit, nil
	case domain.Add:
		record, err := w.products.Save(ctx, strings.TrimSpace(draft.Category), payload)
		if err != nil {
			return SubmitResult{}, notify.OpAdd, err
		}
		return SubmitResult{Mode: domain.ModeAdd, Record: record, Uploaded: uploaded}, notify.OpAdd, nil
	default:
		return SubmitResult{}, notify.OpSubmit, ErrDialogClosed
	}
}

func failureMessage(op string) string {
	switch op {
	case notify.OpUpload:
		return MsgUploadFailed
	case notify.OpEdit:
		return MsgUpdateFailed
	case notify.OpAdd:
		return MsgCreateFailed
	default:
		return MsgSubmitFailed
	}
}

// Mode devolve o modo atual do diálogo.
func (w *Workflow) Mode() domain.DialogMode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

// Draft devolve uma cópia do rascunho; ok é falso quando o diálogo está fechado.
func (w *Workflow) Draft() (domain.FormDraft, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.draft == nil {
		return domain.FormDraft{}, false
	}
	return *w.draft, true
}

// Submitting indica se há um envio em andamento para o diálogo atual.
func (w *Workflow) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight != 0
}

// View devolve o estado do diálogo para a tela.
func (w *Workflow) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		Mode:       w.mode.Kind(),
		Categories: []domain.CategoryRecord{},
		Submitting: w.inFlight != 0,
		Error:      w.lastErr,
	}
	switch m := w.mode.(type) {
	case domain.Add:
		v.Title = TitleAdd
	case domain.Edit:
		v.Title = TitleEdit
		v.ProductID = m.ProductID
		v.CategoryLocked = true
	}
	if w.categoryList != nil {
		v.Categories = append(v.Categories, w.categoryList...)
	}
	if w.draft != nil {
		dv := &DraftView{
			Name:          w.draft.Name,
			Description:   w.draft.Description,
			Price:         w.draft.Price,
			Category:      w.draft.Category,
			ExistingImage: w.draft.ExistingImage,
		}
		if w.draft.PendingFile != nil {
			dv.PendingFile = w.draft.PendingFile.Filename
		}
		v.Draft = dv
	}
	return v
}
