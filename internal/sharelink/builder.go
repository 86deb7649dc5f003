// Package sharelink builds and parses the hash-routed URLs weavers send to
// customers. A link carries the weaver identity, an optional product id and
// the customer type whose prices the recipient sees. Links are stateless and
// never stored.
package sharelink

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
)

// Route markers used as the first fragment segment.
const (
	MarkerCatalog = "public-catalog"
	MarkerProduct = "public-product"
)

// Builder renders share links against one public app location.
type Builder struct {
	// Origin is scheme and host, e.g. "https://sarees.example".
	Origin string
	// BasePath is the escaped path of the app, at least "/".
	BasePath string
}

// NewBuilder derives the origin and base path from the public URL of the
// app. Query and fragment are dropped.
func NewBuilder(publicAppURL string) (*Builder, error) {
	u, err := url.Parse(publicAppURL)
	if err != nil {
		return nil, fmt.Errorf("parse public app url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("public app url %q: scheme must be http or https", publicAppURL)
	}
	if u.Host == "" {
		return nil, errors.New("public app url: missing host")
	}

	base := u.EscapedPath()
	if base == "" {
		base = "/"
	}
	return &Builder{Origin: u.Scheme + "://" + u.Host, BasePath: base}, nil
}

// Base is origin plus base path; every link starts with it.
func (b *Builder) Base() string {
	return b.Origin + b.BasePath
}

// CatalogURL links to the weaver's catalog priced for ct.
func (b *Builder) CatalogURL(weaver string, ct domain.CustomerType) string {
	return b.Base() + CatalogFragment(weaver, ct)
}

// ProductURL links to one product priced for ct.
func (b *Builder) ProductURL(weaver string, productID uint64, ct domain.CustomerType) string {
	return b.Base() + ProductFragment(weaver, productID, ct)
}

// CatalogFragment is the "#/public-catalog/..." part of a catalog link.
func CatalogFragment(weaver string, ct domain.CustomerType) string {
	return "#/" + MarkerCatalog + "/" + url.PathEscape(weaver) + "/" + ct.Token()
}

// ProductFragment is the "#/public-product/..." part of a product link.
func ProductFragment(weaver string, productID uint64, ct domain.CustomerType) string {
	return "#/" + MarkerProduct + "/" + url.PathEscape(weaver) + "/" +
		strconv.FormatUint(productID, 10) + "/" + ct.Token()
}

// Links is the set of links for every customer type.
type Links struct {
	Retail    string `json:"retail"`
	Wholesale string `json:"wholesale"`
	Direct    string `json:"direct"`
}

// CatalogLinks builds the catalog link for each customer type.
func (b *Builder) CatalogLinks(weaver string) Links {
	return Links{
		Retail:    b.CatalogURL(weaver, domain.Retail),
		Wholesale: b.CatalogURL(weaver, domain.Wholesale),
		Direct:    b.CatalogURL(weaver, domain.Direct),
	}
}

// ProductLinks builds the product link for each customer type.
func (b *Builder) ProductLinks(weaver string, productID uint64) Links {
	return Links{
		Retail:    b.ProductURL(weaver, productID, domain.Retail),
		Wholesale: b.ProductURL(weaver, productID, domain.Wholesale),
		Direct:    b.ProductURL(weaver, productID, domain.Direct),
	}
}
