package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/pricewatch/web/internal/logger"
)

type item struct {
	ID      int64  `json:"id"`
	Keyword string `json:"keyword"`
}

func TestDo_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "맥북", r.URL.Query().Get("search"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]item{{ID: 1, Keyword: "맥북 에어"}})
	}))
	defer server.Close()

	c := New(server.URL + "/")
	var out []item
	err := c.Get(context.Background(), "/products?search=%EB%A7%A5%EB%B6%81", &out)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "맥북 에어", out[0].Keyword)
}

func TestDo_SendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		data, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"id":0,"keyword":"아이패드"}`, string(data))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":5,"keyword":"아이패드"}`))
	}))
	defer server.Close()

	var out item
	err := New(server.URL).Do(context.Background(), http.MethodPost, "/products", item{Keyword: "아이패드"}, &out)

	require.NoError(t, err)
	assert.Equal(t, int64(5), out.ID)
}

func TestDo_NoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	var out item
	err := New(server.URL).Do(context.Background(), http.MethodDelete, "/products/3", nil, &out)

	require.NoError(t, err)
	assert.Equal(t, item{}, out)
}

func TestDo_ErrorBodies(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantCode   string
	}{
		{"structured error", http.StatusConflict, `{"detail":"이미 등록된 키워드입니다","error_code":"DUPLICATE_KEYWORD"}`, "이미 등록된 키워드입니다", "DUPLICATE_KEYWORD"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, UnknownDetail, UnknownCode},
		{"empty body", http.StatusInternalServerError, ``, UnknownDetail, UnknownCode},
		{"missing code", http.StatusNotFound, `{"detail":"Product not found"}`, "Product not found", UnknownCode},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","keyword"],"msg":"field required"}]}`, `[{"loc":["body","keyword"],"msg":"field required"}]`, UnknownCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := New(server.URL).Get(context.Background(), "/products", &[]item{})
			require.Error(t, err)

			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

func TestDo_ConflictHelpers(t *testing.T) {
	err := error(&APIError{Status: http.StatusConflict, Detail: "dup", Code: "DUPLICATE"})
	wrapped := errors.Join(errors.New("create product"), err)

	assert.True(t, IsConflict(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(errors.New("plain")))
}

func TestDo_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	err := New(url).Get(context.Background(), "/dashboard/summary", &struct{}{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	_, isAPI := AsAPIError(err)
	assert.False(t, isAPI)
}

func TestDo_DecodeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "not-a-number"}`))
	}))
	defer server.Close()

	var out item
	err := New(server.URL).Get(context.Background(), "/products/1", &out)
	assert.ErrorContains(t, err, "failed to decode response")
}

func TestDo_ForwardsRequestID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-42", r.Header.Get(logger.RequestIDHeader))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	ctx := logger.WithRequestID(context.Background(), "req-42")
	require.NoError(t, New(server.URL).Do(ctx, http.MethodDelete, "/products/1", nil, nil))
}

func TestEndpointLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/products", "/products"},
		{"/products?search=x", "/products"},
		{"/products/12", "/products/:id"},
		{"/prices/12/stats?days=30", "/prices/:id/stats"},
		{"/prices/recent?limit=10", "/prices/recent"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, endpointLabel(tt.input))
		})
	}
}
