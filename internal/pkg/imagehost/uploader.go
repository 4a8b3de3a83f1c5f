package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"catalogadmin/internal/domain"
	apperror "catalogadmin/internal/errors"
)

const op = "upload"

// HTTPClient corresponde ao subconjunto de http.Client usado pelo Uploader.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Uploader envia imagens para o serviço de hospedagem (formulário multipart com upload preset)
// e devolve a URL durável da imagem.
type Uploader struct {
	endpoint string
	preset   string
	client   HTTPClient
}

var _ domain.ImageUploader = (*Uploader)(nil)

// NewUploader cria o adaptador de upload.
func NewUploader(endpoint, preset string, client HTTPClient) (*Uploader, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("imagehost: upload URL is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Uploader{endpoint: endpoint, preset: preset, client: client}, nil
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Upload envia o arquivo e devolve a referência (secure_url, com url como alternativa).
func (u *Uploader) Upload(ctx context.Context, file domain.FileUpload) (string, error) {
	if len(file.Data) == 0 {
		return "", apperror.NewValidationError("O arquivo de imagem está vazio.")
	}

	body, contentType, err := u.encode(file)
	if err != nil {
		return "", apperror.NewInternalError("imagehost: montar formulário", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return "", apperror.NewInternalError("imagehost: montar requisição", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", apperror.NewRemoteError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperror.NewRemoteError(op, fmt.Errorf("read response: %w", err))
	}

	var payload uploadResponse
	decodeErr := json.Unmarshal(raw, &payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && payload.Error != nil && payload.Error.Message != "" {
			msg = payload.Error.Message
		}
		return "", apperror.NewRemoteStatusError(op, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return "", apperror.NewRemoteError(op, fmt.Errorf("decode response: %w", decodeErr))
	}

	ref := payload.SecureURL
	if ref == "" {
		ref = payload.URL
	}
	if ref == "" {
		return "", apperror.NewRemoteStatusError(op, resp.StatusCode, "resposta sem referência da imagem")
	}
	return ref, nil
}

func (u *Uploader) encode(file domain.FileUpload) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	filename := file.Filename
	if filename == "" {
		filename = "image"
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(file.Data)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}
	if u.preset != "" {
		if err := mw.WriteField("upload_preset", u.preset); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
