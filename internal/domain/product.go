package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductRecord representa um produto do catálogo como o backend o devolve.
// O identificador é sempre atribuído pelo backend; o painel nunca o constrói.
type ProductRecord struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    CategoryRef     `json:"category"`
	Image       string          `json:"image"`
}

// CategoryRecord representa uma categoria (somente leitura para o painel).
type CategoryRecord struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// CategoryRef é a referência de categoria dentro de um ProductRecord.
// O backend pode enviá-la como objeto embutido ({"_id","name"}) ou apenas como o ID.
type CategoryRef struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON aceita tanto a forma de objeto quanto a de string simples.
func (c *CategoryRef) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*c = CategoryRef{}
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("category: decode id: %w", err)
		}
		*c = CategoryRef{ID: id}
		return nil
	}

	type plain CategoryRef
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("category: decode object: %w", err)
	}
	*c = CategoryRef(obj)
	return nil
}

// ProductPayload é o corpo persistido em create/update.
// A categoria não faz parte dele: é enviada à parte no create e nunca no update.
type ProductPayload struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
}

// --- Interfaces de Contrato (colaboradores externos) ---

// ProductRepository é o serviço remoto de produtos, visto pelo painel.
// Implementado pelo cliente REST (gateway/catalogapi) e pelo acesso direto ao PostgreSQL (repository/productrepo).
type ProductRepository interface {
	FindAll(ctx context.Context) ([]ProductRecord, error)
	Save(ctx context.Context, categoryID string, payload ProductPayload) (ProductRecord, error)
	Update(ctx context.Context, id string, payload ProductPayload) (ProductRecord, error)
	Delete(ctx context.Context, id string) error
}

// CategoryRepository é o serviço remoto de categorias (somente leitura).
type CategoryRepository interface {
	FindAll(ctx context.Context) ([]CategoryRecord, error)
}

// ImageUploader é o adaptador de upload de imagem: recebe o arquivo e devolve a referência durável (URL).
type ImageUploader interface {
	Upload(ctx context.Context, file FileUpload) (string, error)
}
