package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/httpclient"
)

const weaver = "2vxsx-fae"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	cfg.Timeout = 2 * time.Second
	cbCfg := httpclient.DefaultCircuitBreakerConfig("backend-test-" + t.Name())

	c, err := NewWithClient(srv.URL+"/", httpclient.NewCircuitBreakerClient(httpclient.New(cfg), cbCfg, quietLogger()), quietLogger())
	require.NoError(t, err)
	return c
}

func writeData(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func TestClient_PublicCatalog(t *testing.T) {
	var sawAuth atomic.Bool
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" || len(r.Cookies()) > 0 {
			sawAuth.Store(true)
		}
		assert.Equal(t, "/public/v1/catalogs/2vxsx-fae", r.URL.Path)
		assert.Equal(t, "wholesale", r.URL.Query().Get("customer_type"))
		writeData(w, []domain.Product{{ID: 4, Owner: weaver, Name: "Paithani", Visibility: domain.WholesaleOnly}})
	}))

	got, err := c.PublicCatalog(context.Background(), weaver, domain.Wholesale)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Paithani", got[0].Name)
	assert.Equal(t, domain.WholesaleOnly, got[0].Visibility)
	assert.False(t, sawAuth.Load(), "public fetch must not carry credentials")
}

func TestClient_PublicCatalog_NullIsEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(w, nil)
	}))

	got, err := c.PublicCatalog(context.Background(), weaver, domain.Retail)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClient_PublicCatalog_UnknownWeaverIsNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"no such weaver"}}`))
	}))

	_, err := c.PublicCatalog(context.Background(), weaver, domain.Retail)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	var se *httpclient.ServerError
	assert.False(t, errors.As(err, &se))
}

func TestClient_PublicProduct(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/public/v1/products/2vxsx-fae/12":
			writeData(w, domain.Product{ID: 12, Owner: weaver, Prices: domain.PriceSet{Retail: 100, Wholesale: 80, Direct: 90}})
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"no such product"}}`))
		}
	}))

	p, err := c.PublicProduct(context.Background(), weaver, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(80), p.Prices.Wholesale)

	_, err = c.PublicProduct(context.Background(), weaver, 999999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestClient_ServerErrorIsFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.PublicCatalog(context.Background(), weaver, domain.Retail)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)

	var se *httpclient.ServerError
	assert.True(t, errors.As(err, &se))
}

func TestClient_MalformedBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [`))
	}))

	_, err := c.PublicCatalog(context.Background(), weaver, domain.Retail)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestClient_Ping(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health/live" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusTeapot)
	}))
	assert.NoError(t, c.Ping(context.Background()))
}

func TestNewWithClient_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "backend:8080", "ftp://backend"} {
		_, err := NewWithClient(raw, nil, quietLogger())
		assert.Error(t, err, raw)
	}
}
