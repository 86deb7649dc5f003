package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
)

const weaver = "2vxsx-fae"

func setupTestCache(t *testing.T) (*QueryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	return NewQueryCache(client, 0, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

// fakeReader counts calls and serves fixed data.
type fakeReader struct {
	mu       sync.Mutex
	calls    int
	products []domain.Product
	err      error
}

func (f *fakeReader) PublicCatalog(_ context.Context, owner string, ct domain.CustomerType) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Product
	for _, p := range f.products {
		if p.Owner == owner && p.Visibility.VisibleTo(ct) {
			out = append(out, p)
		}
	}
	if out == nil {
		out = []domain.Product{}
	}
	return out, nil
}

func (f *fakeReader) PublicProduct(_ context.Context, owner string, id uint64) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.products {
		if p.Owner == owner && p.ID == id {
			return &p, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Owner: weaver, Name: "Banarasi", Prices: domain.PriceSet{Retail: 8000, Wholesale: 6500, Direct: 7000}},
		{ID: 2, Owner: weaver, Name: "Chanderi", Visibility: domain.WholesaleOnly},
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "query:publicCatalog:2vxsx-fae:wholesale", Key(EntityPublicCatalog, weaver, "wholesale"))
}

func TestQueryCache_SetGet(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "query:x:y:z", []string{"a"}))
	assert.Equal(t, DefaultTTL, mr.TTL("query:x:y:z"))

	var got []string
	found, err := c.Get(ctx, "query:x:y:z", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a"}, got)

	found, err = c.Get(ctx, "query:none", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestQueryCache_GetCorrupt(t *testing.T) {
	c, mr := setupTestCache(t)
	require.NoError(t, mr.Set("query:bad", "{{"))

	var v map[string]any
	_, err := c.Get(context.Background(), "query:bad", &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestQueryCache_InvalidateOwner(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	for _, k := range []string{
		Key(EntityPublicCatalog, weaver, "retail"),
		Key(EntityPublicCatalog, weaver, "direct"),
		Key(EntityPublicProduct, weaver, "1"),
		Key(EntityPublicCatalog, "aaaaa-aa", "retail"),
	} {
		require.NoError(t, c.Set(ctx, k, 1))
	}

	n, err := c.InvalidateOwner(ctx, weaver)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, mr.Exists(Key(EntityPublicCatalog, "aaaaa-aa", "retail")))
	assert.False(t, mr.Exists(Key(EntityPublicProduct, weaver, "1")))
}

func TestQueryCache_InvalidateOwner_GlobCharsEscaped(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, Key(EntityPublicCatalog, "abc", "retail"), 1))

	n, err := c.InvalidateOwner(ctx, "a*")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, mr.Exists(Key(EntityPublicCatalog, "abc", "retail")))
}

func TestReader_CatalogServedFromCache(t *testing.T) {
	c, _ := setupTestCache(t)
	next := &fakeReader{products: sampleProducts()}
	r := NewReader(next, c, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	first, err := r.PublicCatalog(ctx, weaver, domain.Retail)
	require.NoError(t, err)
	second, err := r.PublicCatalog(ctx, weaver, domain.Retail)
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.Equal(t, int64(8000), second[0].Prices.Retail)

	// Different customer type is a different key.
	wholesale, err := r.PublicCatalog(ctx, weaver, domain.Wholesale)
	require.NoError(t, err)
	assert.Len(t, wholesale, 2)
	assert.Equal(t, 2, next.calls)
}

func TestReader_EmptyCatalogCachedAsEmpty(t *testing.T) {
	c, _ := setupTestCache(t)
	next := &fakeReader{}
	r := NewReader(next, c, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for range 2 {
		got, err := r.PublicCatalog(context.Background(), "aaaaa-aa", domain.Direct)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	assert.Equal(t, 1, next.calls)
}

func TestReader_InvalidationForcesRefetch(t *testing.T) {
	c, _ := setupTestCache(t)
	next := &fakeReader{products: sampleProducts()}
	r := NewReader(next, c, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	_, err := r.PublicProduct(ctx, weaver, 1)
	require.NoError(t, err)
	_, err = c.InvalidateOwner(ctx, weaver)
	require.NoError(t, err)
	_, err = r.PublicProduct(ctx, weaver, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls)
}

func TestReader_NotFoundAndErrorsNotCached(t *testing.T) {
	c, mr := setupTestCache(t)
	next := &fakeReader{products: sampleProducts()}
	r := NewReader(next, c, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	_, err := r.PublicProduct(ctx, weaver, 999999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.False(t, mr.Exists(Key(EntityPublicProduct, weaver, "999999")))

	next.err = errors.New("backend down")
	_, err = r.PublicCatalog(ctx, weaver, domain.Retail)
	assert.EqualError(t, err, "backend down")
	assert.False(t, mr.Exists(Key(EntityPublicCatalog, weaver, "retail")))
}

func TestReader_RedisDownBypassesCache(t *testing.T) {
	c, mr := setupTestCache(t)
	next := &fakeReader{products: sampleProducts()}
	r := NewReader(next, c, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := r.PublicCatalog(ctx, weaver, domain.Retail)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, next.calls)
}
