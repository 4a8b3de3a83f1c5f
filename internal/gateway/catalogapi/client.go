package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"

	"catalogadmin/internal/domain"
	apperror "catalogadmin/internal/errors"
)

// HTTPClient corresponde ao subconjunto de http.Client usado pelo Client.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Client implementa domain.ProductRepository e domain.CategoryRepository sobre a API REST do catálogo.
type Client struct {
	base   *url.URL
	client HTTPClient
	token  string
}

var (
	_ domain.ProductRepository  = (*Client)(nil)
	_ domain.CategoryRepository = (*Categories)(nil)
)

// NewClient cria o cliente da API do catálogo. token é o JWT da sessão de administrador,
// enviado como Bearer em toda chamada (vazio desativa o cabeçalho).
func NewClient(baseURL string, client HTTPClient, token string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("catalogapi: base URL is required")
	}
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("catalogapi: parse base URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{base: parsed, client: client, token: token}, nil
}

// productBody é a forma de escrita do produto. O preço vai como número JSON.
type productBody struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Image       string      `json:"image"`
}

func toBody(p domain.ProductPayload) productBody {
	return productBody{
		Name:        p.Name,
		Description: p.Description,
		Price:       json.Number(p.Price.String()),
		Image:       p.Image,
	}
}

// FindAll lista todos os produtos (GET /products).
func (c *Client) FindAll(ctx context.Context) ([]domain.ProductRecord, error) {
	var records []domain.ProductRecord
	if err := c.call(ctx, "list", http.MethodGet, "products", nil, nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.ProductRecord{}
	}
	return records, nil
}

// Save cria o produto na categoria (POST /categories/{categoryId}/products).
// Cada chamada leva um Idempotency-Key novo.
func (c *Client) Save(ctx context.Context, categoryID string, payload domain.ProductPayload) (domain.ProductRecord, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return domain.ProductRecord{}, apperror.NewValidationError("A categoria é obrigatória para criar um produto.")
	}
	endpoint := path.Join("categories", categoryID, "products")
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}

	var record domain.ProductRecord
	if err := c.call(ctx, "create", http.MethodPost, endpoint, toBody(payload), headers, &record); err != nil {
		return domain.ProductRecord{}, err
	}
	return record, nil
}

// Update substitui os campos do produto (PUT /products/{id}). A categoria nunca é enviada.
func (c *Client) Update(ctx context.Context, id string, payload domain.ProductPayload) (domain.ProductRecord, error) {
	endpoint := path.Join("products", strings.TrimSpace(id))

	var record domain.ProductRecord
	if err := c.call(ctx, "update", http.MethodPut, endpoint, toBody(payload), nil, &record); err != nil {
		return domain.ProductRecord{}, err
	}
	return record, nil
}

// Delete remove o produto (DELETE /products/{id}).
func (c *Client) Delete(ctx context.Context, id string) error {
	endpoint := path.Join("products", strings.TrimSpace(id))
	return c.call(ctx, "delete", http.MethodDelete, endpoint, nil, nil, nil)
}

// Categories devolve a visão de categorias do mesmo backend.
func (c *Client) Categories() *Categories {
	return &Categories{client: c}
}

// Categories implementa domain.CategoryRepository (GET /categories).
type Categories struct {
	client *Client
}

// FindAll lista as categorias.
func (c *Categories) FindAll(ctx context.Context) ([]domain.CategoryRecord, error) {
	var records []domain.CategoryRecord
	if err := c.client.call(ctx, "categories", http.MethodGet, "categories", nil, nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.CategoryRecord{}
	}
	return records, nil
}

func (c *Client) call(ctx context.Context, op, method, endpoint string, payload any, headers map[string]string, out any) error {
	req, err := c.newJSONRequest(ctx, method, endpoint, payload)
	if err != nil {
		return apperror.NewInternalError(fmt.Sprintf("catalogapi: %s", op), err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return apperror.NewRemoteError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(op, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperror.NewRemoteError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, endpoint string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(payload); err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = &buf
	}

	ref := &url.URL{Path: strings.TrimPrefix(endpoint, "/")}
	req, err := http.NewRequestWithContext(ctx, method, c.base.ResolveReference(ref).String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func errorFromResponse(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil {
			if payload.Message != "" {
				return apperror.NewRemoteStatusError(op, resp.StatusCode, payload.Message)
			}
			if payload.Error != "" {
				return apperror.NewRemoteStatusError(op, resp.StatusCode, payload.Error)
			}
		}
		return apperror.NewRemoteStatusError(op, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return apperror.NewRemoteStatusError(op, resp.StatusCode, http.StatusText(resp.StatusCode))
}
