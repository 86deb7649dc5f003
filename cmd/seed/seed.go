package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/internal/service"
	"github.com/caffeinepub/saree-catalogue-portal/internal/sharelink"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/pagination"
)

// customerNamespace keeps seeded customer ids stable across runs so a rerun
// updates the same rows.
var customerNamespace = uuid.MustParse("6f0c9a4e-3b1d-4c55-9a63-2d8f1e7b0c41")

type productDef struct {
	name        string
	description string
	prices      domain.PriceSet
	quantity    int64
	madeToOrder bool
	visibility  domain.Visibility
	colors      []domain.Color
}

type customerDef struct {
	name     string
	contact  string
	ct       domain.CustomerType
	business string
	city     string
}

var demoProfile = service.SaveWeaverProfileInput{
	Name:    "Kanchi Handloom House",
	Address: "12 Gandhi Road, Kanchipuram, Tamil Nadu",
}

var demoProducts = []productDef{
	{"Kanjivaram Silk", "Pure mulberry silk with zari border and temple motifs.", domain.PriceSet{Retail: 18500, Wholesale: 15200, Direct: 16900}, 6, false, domain.VisibleToAll,
		[]domain.Color{{Name: "Maroon", Hex: "#800000"}, {Name: "Gold", Hex: "#D4AF37"}}},
	{"Banarasi Katan", "Handwoven katan silk with kadhwa buttis.", domain.PriceSet{Retail: 22000, Wholesale: 18400, Direct: 20500}, 3, false, domain.VisibleToAll,
		[]domain.Color{{Name: "Emerald", Hex: "#046307"}}},
	{"Chanderi Cotton Silk", "Lightweight weave with silver zari checks.", domain.PriceSet{Retail: 6400, Wholesale: 4800, Direct: 5600}, 0, true, domain.VisibleToAll,
		[]domain.Color{{Name: "Peach", Hex: "#FFCBA4"}}},
	{"Pochampally Ikat", "Double ikat in geometric patterns.", domain.PriceSet{Retail: 9200, Wholesale: 7100, Direct: 8300}, 12, false, domain.WholesaleOnly,
		[]domain.Color{{Name: "Indigo", Hex: "#3F51B5"}, {Name: "Red", Hex: "#C62828"}}},
	{"Gadwal Sico", "Cotton body with silk pallu, interlocked weave.", domain.PriceSet{Retail: 11500, Wholesale: 9000, Direct: 10200}, 2, false, domain.RetailOnly,
		[]domain.Color{{Name: "Mustard", Hex: "#E1AD01"}}},
	{"Kota Doria", "Sheer cotton with khat check, block printed.", domain.PriceSet{Retail: 3800, Wholesale: 2600, Direct: 3200}, 0, false, domain.VisibleToAll,
		[]domain.Color{{Name: "Sky Blue", Hex: "#87CEEB"}}},
}

var demoCustomers = []customerDef{
	{"Lakshmi Textiles", "9840012345", domain.Wholesale, "Lakshmi Textiles Pvt Ltd", "Chennai"},
	{"Anitha R", "9003098765", domain.Retail, "", "Coimbatore"},
	{"Meera Boutique", "9123456780", domain.Direct, "Meera Boutique", "Bengaluru"},
}

type seeder struct {
	weaver    string
	products  *service.ProductService
	customers *service.CustomerService
	profiles  *service.ProfileService
	builder   *sharelink.Builder
	out       io.Writer
	logger    *slog.Logger
}

func (s *seeder) seed(ctx context.Context) error {
	if _, err := s.profiles.SaveWeaverProfile(ctx, s.weaver, &demoProfile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	s.logger.Info("seeded weaver profile", slog.String("name", demoProfile.Name))

	existing, err := s.products.ListProducts(ctx, s.weaver, pagination.Params{Page: 1, PerPage: 1})
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	if existing.TotalCount > 0 {
		s.logger.Info("catalog already has products, skipping", slog.Int("count", existing.TotalCount))
	} else {
		for _, def := range demoProducts {
			p, err := s.products.CreateProduct(ctx, s.weaver, &service.CreateProductInput{
				Name:              def.name,
				Description:       def.description,
				Prices:            def.prices,
				AvailableQuantity: def.quantity,
				MadeToOrder:       def.madeToOrder,
				Colors:            def.colors,
				Visibility:        def.visibility,
			})
			if err != nil {
				return fmt.Errorf("create product %q: %w", def.name, err)
			}
			s.logger.Info("seeded product", slog.Uint64("id", p.ID), slog.String("name", p.Name))
		}
	}

	for _, def := range demoCustomers {
		input := &service.SaveCustomerInput{
			ID:            uuid.NewSHA1(customerNamespace, []byte(s.weaver+"/"+def.contact)).String(),
			Name:          def.name,
			ContactNumber: def.contact,
			CustomerType:  def.ct,
			BusinessName:  &def.business,
			City:          &def.city,
		}
		if _, err := s.customers.SaveCustomer(ctx, s.weaver, input); err != nil {
			return fmt.Errorf("save customer %q: %w", def.name, err)
		}
	}
	s.logger.Info("seeded customers", slog.Int("count", len(demoCustomers)))

	links := s.builder.CatalogLinks(s.weaver)
	fmt.Fprintln(s.out, "Catalog share links:")
	fmt.Fprintf(s.out, "  %-10s %s\n", domain.Retail.Label(), links.Retail)
	fmt.Fprintf(s.out, "  %-10s %s\n", domain.Wholesale.Label(), links.Wholesale)
	fmt.Fprintf(s.out, "  %-10s %s\n", domain.Direct.Label(), links.Direct)
	return nil
}
