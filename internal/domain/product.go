package domain

import (
	"time"
)

// Stock labels shown next to a product.
const (
	StockMadeToOrder = "Made to Order"
	StockInStock     = "In Stock"
	StockOutOfStock  = "Out of Stock"
)

// PriceSet holds one price per customer type, in whole rupees. No ordering
// between the three is implied.
type PriceSet struct {
	Retail    int64 `json:"retail_price"`
	Wholesale int64 `json:"wholesale_price"`
	Direct    int64 `json:"direct_price"`
}

// ResolvePrice returns the price shown to ct. Amounts pass through untouched.
func ResolvePrice(p PriceSet, ct CustomerType) int64 {
	switch ct {
	case Wholesale:
		return p.Wholesale
	case Direct:
		return p.Direct
	default:
		return p.Retail
	}
}

// Color is a named fabric colour.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// ValidHex reports whether s is a #rrggbb colour.
func ValidHex(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// Product is a saree listed in a weaver's catalog. IDs are unique per owner.
type Product struct {
	ID                uint64     `json:"id"`
	Owner             string     `json:"owner"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Prices            PriceSet   `json:"prices"`
	AvailableQuantity int64      `json:"available_quantity"`
	MadeToOrder       bool       `json:"made_to_order"`
	Colors            []Color    `json:"colors"`
	Visibility        Visibility `json:"visibility"`
	Images            []string   `json:"images"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// InStock reports whether the product can be ordered.
func (p *Product) InStock() bool {
	return p.AvailableQuantity > 0 || p.MadeToOrder
}

// StockLabel describes availability for display.
func (p *Product) StockLabel() string {
	switch {
	case p.MadeToOrder:
		return StockMadeToOrder
	case p.AvailableQuantity > 0:
		return StockInStock
	default:
		return StockOutOfStock
	}
}

// PriceFor is shorthand for ResolvePrice(p.Prices, ct).
func (p *Product) PriceFor(ct CustomerType) int64 {
	return ResolvePrice(p.Prices, ct)
}

// PricedProduct is the public view of a product for one customer type.
type PricedProduct struct {
	ID             uint64   `json:"id"`
	Owner          string   `json:"owner"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          int64    `json:"price"`
	PriceFormatted string   `json:"price_formatted"`
	InStock        bool     `json:"in_stock"`
	StockLabel     string   `json:"stock_label"`
	Colors         []Color  `json:"colors"`
	Images         []string `json:"images"`
}

// Priced projects p for viewers of type ct. Only the applicable price is
// exposed.
func (p *Product) Priced(ct CustomerType) PricedProduct {
	price := p.PriceFor(ct)
	colors := p.Colors
	if colors == nil {
		colors = []Color{}
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return PricedProduct{
		ID:             p.ID,
		Owner:          p.Owner,
		Name:           p.Name,
		Description:    p.Description,
		Price:          price,
		PriceFormatted: FormatPrice(price),
		InStock:        p.InStock(),
		StockLabel:     p.StockLabel(),
		Colors:         colors,
		Images:         images,
	}
}
