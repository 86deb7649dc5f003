package service

import (
	"context"
	"fmt"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/internal/repository"
	"github.com/caffeinepub/saree-catalogue-portal/internal/sharelink"
)

// CatalogView is a weaver's catalog priced for one customer type.
type CatalogView struct {
	Weaver           string                 `json:"weaver"`
	CustomerType     string                 `json:"customer_type"`
	Label            string                 `json:"label"`
	PricingDefaulted bool                   `json:"pricing_defaulted"`
	ShareURL         string                 `json:"share_url"`
	Products         []domain.PricedProduct `json:"products"`
}

// ProductView is one product priced for one customer type.
type ProductView struct {
	Weaver           string               `json:"weaver"`
	CustomerType     string               `json:"customer_type"`
	Label            string               `json:"label"`
	PricingDefaulted bool                 `json:"pricing_defaulted"`
	ShareURL         string               `json:"share_url"`
	Product          domain.PricedProduct `json:"product"`
}

// ShareLinkService builds share links for owners and priced views for
// everyone.
type ShareLinkService struct {
	builder  *sharelink.Builder
	products repository.ProductRepository
	public   *PublicCatalogService
}

// NewShareLinkService creates the share-link service. products may be nil
// when owner management is not served.
func NewShareLinkService(builder *sharelink.Builder, products repository.ProductRepository, public *PublicCatalogService) *ShareLinkService {
	return &ShareLinkService{
		builder:  builder,
		products: products,
		public:   public,
	}
}

// Builder returns the link builder.
func (s *ShareLinkService) Builder() *sharelink.Builder {
	return s.builder
}

// CatalogLinks returns the owner's catalog link for each customer type.
func (s *ShareLinkService) CatalogLinks(owner string) sharelink.Links {
	return s.builder.CatalogLinks(owner)
}

// ProductLinks returns the links of one of the owner's products.
func (s *ShareLinkService) ProductLinks(ctx context.Context, owner string, id uint64) (sharelink.Links, error) {
	if _, err := s.products.Get(ctx, owner, id); err != nil {
		return sharelink.Links{}, fmt.Errorf("get product for share links: %w", err)
	}
	return s.builder.ProductLinks(owner, id), nil
}

// CatalogView renders the public view of a catalog route. The route must be
// valid; fetch failures wrap ErrFetchFailed.
func (s *ShareLinkService) CatalogView(ctx context.Context, route sharelink.Route) (*CatalogView, error) {
	products, err := s.public.FetchPublicCatalog(ctx, route)
	if err != nil {
		return nil, err
	}
	return s.catalogView(route, products), nil
}

// PreviewCatalog renders the owner's own catalog as ct would see it.
func (s *ShareLinkService) PreviewCatalog(ctx context.Context, owner string, ct domain.CustomerType) (*CatalogView, error) {
	route := sharelink.Route{
		Kind:         sharelink.KindCatalog,
		Weaver:       owner,
		CustomerType: domain.CustomerTypeToken{Type: ct, Raw: ct.Token()},
	}
	return s.CatalogView(ctx, route)
}

// ProductView renders the public view of a product route. A nil view means
// the product is absent or hidden from the route's customer type.
func (s *ShareLinkService) ProductView(ctx context.Context, route sharelink.Route) (*ProductView, error) {
	p, err := s.public.FetchPublicProduct(ctx, route)
	if err != nil || p == nil {
		return nil, err
	}
	return s.productView(route, p), nil
}

func (s *ShareLinkService) catalogView(route sharelink.Route, products []domain.Product) *CatalogView {
	ct := route.CustomerType.Type
	priced := make([]domain.PricedProduct, 0, len(products))
	for i := range products {
		priced = append(priced, products[i].Priced(ct))
	}
	return &CatalogView{
		Weaver:           route.Weaver,
		CustomerType:     ct.Token(),
		Label:            ct.Label(),
		PricingDefaulted: route.CustomerType.Defaulted,
		ShareURL:         s.builder.CatalogURL(route.Weaver, ct),
		Products:         priced,
	}
}

func (s *ShareLinkService) productView(route sharelink.Route, p *domain.Product) *ProductView {
	ct := route.CustomerType.Type
	return &ProductView{
		Weaver:           route.Weaver,
		CustomerType:     ct.Token(),
		Label:            ct.Label(),
		PricingDefaulted: route.CustomerType.Defaulted,
		ShareURL:         s.builder.ProductURL(route.Weaver, p.ID, ct),
		Product:          p.Priced(ct),
	}
}

// ResolutionView is a resolved share link rendered for its customer type.
type ResolutionView struct {
	State    State        `json:"state"`
	States   []State      `json:"states"`
	Kind     string       `json:"kind,omitempty"`
	Catalog  *CatalogView `json:"catalog,omitempty"`
	Product  *ProductView `json:"product,omitempty"`
	NotFound bool         `json:"not_found,omitempty"`
}

// Render turns a loaded resolution into its priced view. Other states carry
// only the state trail.
func (s *ShareLinkService) Render(res Resolution) ResolutionView {
	v := ResolutionView{State: res.State, States: res.States}
	if res.Route.Kind != 0 {
		v.Kind = res.Route.Kind.String()
	}
	if res.State != StateLoaded {
		return v
	}

	switch res.Route.Kind {
	case sharelink.KindProduct:
		if res.Product == nil {
			v.NotFound = true
			return v
		}
		v.Product = s.productView(res.Route, res.Product)
	default:
		v.Catalog = s.catalogView(res.Route, res.Products)
	}
	return v
}
