package domain

import (
	"encoding/json"
	"fmt"
)

// CustomerType selects which of a product's three prices a viewer sees.
type CustomerType uint8

const (
	Retail CustomerType = iota
	Wholesale
	Direct
)

// Customer type tokens as they appear in share links and JSON.
const (
	TokenRetail    = "retail"
	TokenWholesale = "wholesale"
	TokenDirect    = "direct"
)

// CustomerTypes lists every customer type in display order.
func CustomerTypes() []CustomerType {
	return []CustomerType{Retail, Wholesale, Direct}
}

// Token returns the URL-safe token for ct.
func (ct CustomerType) Token() string {
	switch ct {
	case Wholesale:
		return TokenWholesale
	case Direct:
		return TokenDirect
	default:
		return TokenRetail
	}
}

// Label is the human-readable name, e.g. "Wholesale".
func (ct CustomerType) Label() string {
	switch ct {
	case Wholesale:
		return "Wholesale"
	case Direct:
		return "Direct"
	default:
		return "Retail"
	}
}

func (ct CustomerType) String() string {
	return ct.Token()
}

// DecodeCustomerType maps "wholesale" and "direct" to their types and every
// other input, including the empty string, to Retail.
func DecodeCustomerType(token string) CustomerType {
	return ParseCustomerToken(token).Type
}

// CustomerTypeToken is a decoded customer type that remembers whether the
// raw token was recognised.
type CustomerTypeToken struct {
	Type CustomerType
	Raw  string
	// Defaulted is set when Raw was not a canonical token and Type fell
	// back to Retail.
	Defaulted bool
}

// ParseCustomerToken decodes token permissively and reports whether the
// retail fallback was applied.
func ParseCustomerToken(token string) CustomerTypeToken {
	switch token {
	case TokenWholesale:
		return CustomerTypeToken{Type: Wholesale, Raw: token}
	case TokenDirect:
		return CustomerTypeToken{Type: Direct, Raw: token}
	case TokenRetail:
		return CustomerTypeToken{Type: Retail, Raw: token}
	default:
		return CustomerTypeToken{Type: Retail, Raw: token, Defaulted: true}
	}
}

// ParseCustomerTypeStrict accepts only the three canonical tokens. It is
// used for owner input, where a typo must not silently become retail.
func ParseCustomerTypeStrict(token string) (CustomerType, error) {
	t := ParseCustomerToken(token)
	if t.Defaulted {
		return Retail, fmt.Errorf("unknown customer type %q", token)
	}
	return t.Type, nil
}

// MarshalJSON encodes ct as its token.
func (ct CustomerType) MarshalJSON() ([]byte, error) {
	return json.Marshal(ct.Token())
}

// UnmarshalJSON decodes a canonical token and rejects anything else.
func (ct *CustomerType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseCustomerTypeStrict(s)
	if err != nil {
		return err
	}
	*ct = v
	return nil
}
