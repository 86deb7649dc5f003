package sharelink

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/internal/principal"
)

var (
	ErrInvalidIdentity  = errors.New("invalid weaver identity")
	ErrInvalidProductID = errors.New("invalid product id")
	ErrNotShareLink     = errors.New("not a share link")
)

// Kind distinguishes catalog routes from product routes.
type Kind uint8

const (
	KindCatalog Kind = iota + 1
	KindProduct
)

func (k Kind) String() string {
	switch k {
	case KindCatalog:
		return "catalog"
	case KindProduct:
		return "product"
	default:
		return "unknown"
	}
}

// Route is a parsed share link. A route with a non-nil Err must not be
// fetched.
type Route struct {
	Kind         Kind
	Weaver       string
	ProductID    uint64
	CustomerType domain.CustomerTypeToken
	Err          error
}

// Valid reports whether the route passed validation.
func (r Route) Valid() bool {
	return r.Err == nil
}

// IdentityValidator checks an unescaped weaver identity.
type IdentityValidator func(identity string) error

// OpaqueIdentity accepts identities of up to 64 ASCII letters, digits,
// dashes, dots and underscores. It is used when owners are not identified by
// principals.
func OpaqueIdentity(identity string) error {
	if identity == "" || len(identity) > 64 {
		return ErrInvalidIdentity
	}
	for _, c := range identity {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '.', c == '_':
		default:
			return ErrInvalidIdentity
		}
	}
	return nil
}

// Parser validates route parameters. The zero value checks identities as
// principals.
type Parser struct {
	validate IdentityValidator
}

// NewParser returns a parser using validate; nil means principal.Validate.
func NewParser(validate IdentityValidator) *Parser {
	return &Parser{validate: validate}
}

var defaultParser = &Parser{}

// ParseCatalogRoute validates principal-identified catalog route parameters.
func ParseCatalogRoute(weaver, customerType string) Route {
	return defaultParser.ParseCatalogRoute(weaver, customerType)
}

// ParseProductRoute validates principal-identified product route parameters.
func ParseProductRoute(weaver, productID, customerType string) Route {
	return defaultParser.ParseProductRoute(weaver, productID, customerType)
}

// ParseLink parses a full share URL with principal identities.
func ParseLink(rawURL string) (Route, error) {
	return defaultParser.ParseLink(rawURL)
}

// ParseCatalogRoute validates the unescaped path segments of a catalog link.
// An unknown customer type falls back to retail.
func (p *Parser) ParseCatalogRoute(weaver, customerType string) Route {
	r := Route{Kind: KindCatalog, CustomerType: domain.ParseCustomerToken(customerType)}
	r.Weaver, r.Err = p.identity(weaver)
	return r
}

// ParseProductRoute validates the unescaped path segments of a product
// link. An invalid identity is reported before an invalid product id.
func (p *Parser) ParseProductRoute(weaver, productID, customerType string) Route {
	r := Route{Kind: KindProduct, CustomerType: domain.ParseCustomerToken(customerType)}
	r.Weaver, r.Err = p.identity(weaver)
	if r.Err != nil {
		return r
	}
	r.ProductID, r.Err = ParseProductID(productID)
	return r
}

// ParseLink extracts the route from a share URL's fragment. Links to other
// pages return ErrNotShareLink; links with bad parameters return a route
// whose Err is set.
func (p *Parser) ParseLink(rawURL string) (Route, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Route{}, fmt.Errorf("%w: %v", ErrNotShareLink, err)
	}

	frag := u.EscapedFragment()
	if i := strings.IndexByte(frag, '?'); i >= 0 {
		frag = frag[:i]
	}
	segs := strings.Split(strings.TrimPrefix(frag, "/"), "/")
	for i, seg := range segs {
		segs[i] = unescapeSegment(seg)
	}

	switch {
	case len(segs) == 3 && segs[0] == MarkerCatalog:
		return p.ParseCatalogRoute(segs[1], segs[2]), nil
	case len(segs) == 4 && segs[0] == MarkerProduct:
		return p.ParseProductRoute(segs[1], segs[2], segs[3]), nil
	default:
		return Route{}, ErrNotShareLink
	}
}

// ValidateIdentity checks unescaped identity text. Failures wrap
// ErrInvalidIdentity.
func (p *Parser) ValidateIdentity(identity string) error {
	validate := p.validate
	if validate == nil {
		validate = principal.Validate
	}
	if err := validate(identity); err != nil {
		if errors.Is(err, ErrInvalidIdentity) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return nil
}

func (p *Parser) identity(weaver string) (string, error) {
	if err := p.ValidateIdentity(weaver); err != nil {
		return "", err
	}
	return weaver, nil
}

// MaxProductID is the largest id a product can be stored under.
const MaxProductID = math.MaxInt64

// ParseProductID accepts canonical decimal only: digits, no sign, no
// surrounding space and no leading zero except "0" itself. Ids above
// MaxProductID are rejected.
func ParseProductID(raw string) (uint64, error) {
	if raw == "" || (len(raw) > 1 && raw[0] == '0') {
		return 0, ErrInvalidProductID
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, ErrInvalidProductID
		}
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id > MaxProductID {
		return 0, ErrInvalidProductID
	}
	return id, nil
}

// unescapeSegment decodes one escaped fragment segment. A malformed escape
// is kept as is and fails validation later.
func unescapeSegment(seg string) string {
	if s, err := url.PathUnescape(seg); err == nil {
		return s
	}
	return seg
}
