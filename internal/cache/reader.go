package cache

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/internal/repository"
)

// Cache entity names.
const (
	EntityPublicCatalog = "publicCatalog"
	EntityPublicProduct = "publicProduct"
)

// Reader wraps a PublicCatalogReader with the query cache. Cache failures
// are logged and fall through to the wrapped reader. Misses and errors of
// the wrapped reader are not cached.
type Reader struct {
	next   repository.PublicCatalogReader
	cache  *QueryCache
	logger *slog.Logger
}

// NewReader returns a caching PublicCatalogReader.
func NewReader(next repository.PublicCatalogReader, cache *QueryCache, logger *slog.Logger) *Reader {
	return &Reader{next: next, cache: cache, logger: logger}
}

func (r *Reader) PublicCatalog(ctx context.Context, owner string, ct domain.CustomerType) ([]domain.Product, error) {
	key := Key(EntityPublicCatalog, owner, ct.Token())

	var products []domain.Product
	if r.lookup(ctx, EntityPublicCatalog, key, &products) {
		return products, nil
	}

	products, err := r.next.PublicCatalog(ctx, owner, ct)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, products)
	return products, nil
}

func (r *Reader) PublicProduct(ctx context.Context, owner string, id uint64) (*domain.Product, error) {
	key := Key(EntityPublicProduct, owner, strconv.FormatUint(id, 10))

	var product domain.Product
	if r.lookup(ctx, EntityPublicProduct, key, &product) {
		return &product, nil
	}

	p, err := r.next.PublicProduct(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, p)
	return p, nil
}

func (r *Reader) lookup(ctx context.Context, entity, key string, dst any) bool {
	found, err := r.cache.Get(ctx, key, dst)
	switch {
	case err != nil:
		cacheRequests.WithLabelValues(entity, "error").Inc()
		r.logger.WarnContext(ctx, "query cache read failed, bypassing",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	case found:
		cacheRequests.WithLabelValues(entity, "hit").Inc()
		return true
	default:
		cacheRequests.WithLabelValues(entity, "miss").Inc()
		return false
	}
}

func (r *Reader) store(ctx context.Context, key string, v any) {
	if err := r.cache.Set(ctx, key, v); err != nil {
		r.logger.WarnContext(ctx, "query cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
