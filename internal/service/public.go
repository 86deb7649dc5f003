package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/internal/repository"
	"github.com/caffeinepub/saree-catalogue-portal/internal/sharelink"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
)

// ErrFetchFailed marks a public read that failed in transport or in the
// backend. It is never returned for an empty catalog or a missing product.
var ErrFetchFailed = errors.New("public catalog fetch failed")

// State is a step of share-link resolution.
type State string

const (
	StateParsingParams State = "parsing_params"
	StateInvalid       State = "invalid"
	StateResolved      State = "resolved"
	StateFetching      State = "fetching"
	StateLoaded        State = "loaded"
	StateFetchFailed   State = "fetch_failed"
)

// Terminal reports whether resolution stops in s.
func (s State) Terminal() bool {
	switch s {
	case StateInvalid, StateLoaded, StateFetchFailed:
		return true
	default:
		return false
	}
}

var resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalog_share_link_resolutions_total",
	Help: "Share-link resolutions by route kind and terminal state.",
}, []string{"kind", "state"})

var resolutionsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "catalog_share_link_resolutions_discarded_total",
	Help: "Asynchronous resolutions dropped because the requesting view went away.",
})

// Resolution is the outcome of resolving one share link. A loaded catalog
// with no products and a loaded product route with a nil Product are both
// successful "nothing to show" results.
type Resolution struct {
	State    State
	States   []State
	Route    sharelink.Route
	Products []domain.Product
	Product  *domain.Product
	Err      error
}

func (r *Resolution) enter(s State) {
	r.State = s
	r.States = append(r.States, s)
}

// PublicCatalogService answers unauthenticated share-link reads. It holds no
// caller credentials; the reader it wraps must not require any either.
type PublicCatalogService struct {
	reader repository.PublicCatalogReader
	parser *sharelink.Parser
	logger *slog.Logger
}

// NewPublicCatalogService creates the public read service.
func NewPublicCatalogService(reader repository.PublicCatalogReader, parser *sharelink.Parser, logger *slog.Logger) *PublicCatalogService {
	if parser == nil {
		parser = sharelink.NewParser(nil)
	}
	return &PublicCatalogService{
		reader: reader,
		parser: parser,
		logger: logger,
	}
}

// Parser returns the route parser used for identities.
func (s *PublicCatalogService) Parser() *sharelink.Parser {
	return s.parser
}

// FetchPublicCatalog returns the products of route's weaver visible to its
// customer type. An invalid route yields an empty list without a backend
// call; backend failures wrap ErrFetchFailed.
func (s *PublicCatalogService) FetchPublicCatalog(ctx context.Context, route sharelink.Route) ([]domain.Product, error) {
	if !route.Valid() || route.Weaver == "" {
		return []domain.Product{}, nil
	}

	ct := route.CustomerType.Type
	products, err := s.reader.PublicCatalog(ctx, route.Weaver, ct)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return []domain.Product{}, nil
	case err != nil:
		s.logger.WarnContext(ctx, "public catalog fetch failed",
			slog.String("weaver_id", route.Weaver),
			slog.String("customer_type", ct.Token()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	visible := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Visibility.VisibleTo(ct) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// FetchPublicProduct returns one product of route's weaver, or nil when the
// route is invalid, the product does not exist, or it is hidden from the
// route's customer type. Backend failures wrap ErrFetchFailed.
func (s *PublicCatalogService) FetchPublicProduct(ctx context.Context, route sharelink.Route) (*domain.Product, error) {
	if !route.Valid() || route.Kind != sharelink.KindProduct || route.Weaver == "" {
		return nil, nil
	}

	p, err := s.reader.PublicProduct(ctx, route.Weaver, route.ProductID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return nil, nil
	case err != nil:
		s.logger.WarnContext(ctx, "public product fetch failed",
			slog.String("weaver_id", route.Weaver),
			slog.Uint64("product_id", route.ProductID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	if !p.Visibility.VisibleTo(route.CustomerType.Type) {
		return nil, nil
	}
	return p, nil
}

// ResolveLink parses a full share URL and resolves it. A URL that is not a
// share link ends in StateInvalid with sharelink.ErrNotShareLink.
func (s *PublicCatalogService) ResolveLink(ctx context.Context, rawURL string) Resolution {
	route, err := s.parser.ParseLink(rawURL)
	if err != nil {
		route.Err = err
	}
	return s.Resolve(ctx, route)
}

// Resolve drives one parsed route through the resolution states. The visited
// states are recorded in order.
func (s *PublicCatalogService) Resolve(ctx context.Context, route sharelink.Route) Resolution {
	res := Resolution{Route: route}
	res.enter(StateParsingParams)

	if !route.Valid() {
		res.Err = route.Err
		res.enter(StateInvalid)
		s.record(res)
		return res
	}
	res.enter(StateResolved)
	res.enter(StateFetching)

	var err error
	switch route.Kind {
	case sharelink.KindProduct:
		res.Product, err = s.FetchPublicProduct(ctx, route)
	default:
		res.Products, err = s.FetchPublicCatalog(ctx, route)
	}

	if err != nil {
		res.Err = err
		res.enter(StateFetchFailed)
	} else {
		res.enter(StateLoaded)
	}
	s.record(res)
	return res
}

// ResolveAsync resolves route in its own goroutine bound to viewCtx. apply
// runs with the result only if viewCtx is still live when the fetch returns;
// otherwise the result is dropped. The returned channel closes when the
// goroutine exits.
func (s *PublicCatalogService) ResolveAsync(viewCtx context.Context, route sharelink.Route, apply func(Resolution)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		res := s.Resolve(viewCtx, route)
		if viewCtx.Err() != nil {
			resolutionsDiscarded.Inc()
			s.logger.DebugContext(viewCtx, "discarding resolution for closed view",
				slog.String("kind", route.Kind.String()),
				slog.String("state", string(res.State)),
			)
			return
		}
		apply(res)
	}()
	return done
}

func (s *PublicCatalogService) record(res Resolution) {
	resolutions.WithLabelValues(res.Route.Kind.String(), string(res.State)).Inc()
}
