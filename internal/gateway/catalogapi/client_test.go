package catalogapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogadmin/internal/domain"
	apperror "catalogadmin/internal/errors"
	"catalogadmin/internal/gateway/catalogapi"
)

func newClient(t *testing.T, handler http.HandlerFunc) *catalogapi.Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := catalogapi.NewClient(ts.URL+"/api", ts.Client(), "test-token")
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := catalogapi.NewClient("  ", nil, "")
	require.Error(t, err)
}

func TestClientFindAll_DecodesBothCategoryShapes(t *testing.T) {
	t.Parallel()

	var receivedAuth string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/products", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		receivedAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"_id":"p1","name":"Chair","description":"Oak chair","price":100,"category":{"_id":"cat1","name":"Cadeiras"},"image":"ref1"},
			{"_id":"p2","name":"Table","description":"Pine table","price":"299.90","category":"cat2","image":"ref2"}
		]`))
	})

	records, err := client.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Bearer test-token", receivedAuth)

	assert.Equal(t, domain.CategoryRef{ID: "cat1", Name: "Cadeiras"}, records[0].Category)
	assert.True(t, records[0].Price.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, domain.CategoryRef{ID: "cat2"}, records[1].Category)
	assert.True(t, records[1].Price.Equal(decimal.RequireFromString("299.9")))
}

func TestClientFindAll_NullBodyIsEmptyList(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	records, err := client.FindAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, records)
	require.Empty(t, records)
}

func TestClientSave_PostsToCategoryWithIdempotencyKey(t *testing.T) {
	t.Parallel()

	var body map[string]any
	var key string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/categories/cat1/products", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		key = r.Header.Get("Idempotency-Key")

		defer r.Body.Close()
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		require.NoError(t, dec.Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"p9","name":"Chair","description":"Oak chair","price":100,"category":"cat1","image":"ref1"}`))
	})

	record, err := client.Save(context.Background(), "cat1", domain.ProductPayload{
		Name:        "Chair",
		Description: "Oak chair",
		Price:       decimal.NewFromInt(100),
		Image:       "ref1",
	})
	require.NoError(t, err)
	require.Equal(t, "p9", record.ID)

	_, err = uuid.Parse(key)
	require.NoError(t, err)
	require.Equal(t, json.Number("100"), body["price"])
	require.Equal(t, "ref1", body["image"])
	require.NotContains(t, body, "category")
}

func TestClientSave_RequiresCategory(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request expected, got %s %s", r.Method, r.URL.Path)
	})

	_, err := client.Save(context.Background(), " ", domain.ProductPayload{Name: "Chair"})
	var validation *apperror.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestClientUpdate_PutsWithoutCategory(t *testing.T) {
	t.Parallel()

	var body map[string]any
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/products/p1", r.URL.Path)
		require.Equal(t, http.MethodPut, r.Method)
		require.Empty(t, r.Header.Get("Idempotency-Key"))

		defer r.Body.Close()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"_id":"p1","name":"Chair","description":"Oak chair","price":120,"category":"cat1","image":"ref1"}`))
	})

	record, err := client.Update(context.Background(), "p1", domain.ProductPayload{
		Name:        "Chair",
		Description: "Oak chair",
		Price:       decimal.NewFromInt(120),
		Image:       "ref1",
	})
	require.NoError(t, err)
	require.True(t, record.Price.Equal(decimal.NewFromInt(120)))
	require.NotContains(t, body, "category")
}

func TestClientDelete_NoContent(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/products/p1", r.URL.Path)
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.Delete(context.Background(), "p1"))
}

func TestClient_ErrorStatusBecomesRemoteError(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"database unavailable"}`))
	})

	err := client.Delete(context.Background(), "p1")
	require.Error(t, err)

	var remote *apperror.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "delete", remote.Op)
	assert.Equal(t, http.StatusInternalServerError, remote.Status)
	assert.Equal(t, "database unavailable", remote.Msg)
}

func TestClient_TransportFailureBecomesRemoteError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := catalogapi.NewClient(ts.URL, ts.Client(), "")
	require.NoError(t, err)
	ts.Close()

	_, err = client.FindAll(context.Background())
	require.Error(t, err)
	require.True(t, apperror.IsRemote(err))
}

func TestCategoriesFindAll(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/categories", r.URL.Path)
		_, _ = w.Write([]byte(`[{"_id":"cat1","name":"Cadeiras"},{"_id":"cat2","name":"Mesas"}]`))
	})

	cats, err := client.Categories().FindAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, []domain.CategoryRecord{{ID: "cat1", Name: "Cadeiras"}, {ID: "cat2", Name: "Mesas"}}, cats)
}
