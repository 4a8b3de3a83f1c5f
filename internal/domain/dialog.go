package domain

// DialogMode é o estado do diálogo de produto: Closed, Add ou Edit{ProductID}.
// A interface é selada: apenas os três tipos deste pacote a implementam.
type DialogMode interface {
	Kind() ModeKind
	isDialogMode()
}

// ModeKind é a etiqueta serializável de um DialogMode.
type ModeKind string

const (
	ModeClosed ModeKind = "closed"
	ModeAdd    ModeKind = "add"
	ModeEdit   ModeKind = "edit"
)

// Closed indica que não há diálogo aberto (e portanto nenhum rascunho).
type Closed struct{}

// Add indica a criação de um novo produto.
type Add struct{}

// Edit indica a edição de um produto existente.
type Edit struct {
	ProductID string
}

func (Closed) Kind() ModeKind { return ModeClosed }
func (Add) Kind() ModeKind    { return ModeAdd }
func (Edit) Kind() ModeKind   { return ModeEdit }

func (Closed) isDialogMode() {}
func (Add) isDialogMode()    {}
func (Edit) isDialogMode()   {}

// Field identifica um campo editável do rascunho.
type Field string

const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldPrice       Field = "price"
	FieldCategory    Field = "category"
)

// ParseField converte o nome recebido da tela em um Field conhecido.
func ParseField(name string) (Field, bool) {
	switch f := Field(name); f {
	case FieldName, FieldDescription, FieldPrice, FieldCategory:
		return f, true
	}
	return "", false
}

// FileUpload é o arquivo de imagem escolhido pelo administrador e ainda não enviado.
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FormDraft é a cópia de trabalho dos campos do produto enquanto o diálogo está aberto.
// Price é mantido como texto do formulário e só é interpretado na validação.
type FormDraft struct {
	Name          string
	Description   string
	Price         string
	Category      string
	PendingFile   *FileUpload
	ExistingImage string
}

// HasImage indica se o rascunho tem alguma fonte de imagem (arquivo novo ou referência existente).
func (d FormDraft) HasImage() bool {
	return d.PendingFile != nil || d.ExistingImage != ""
}
