package domain

import (
	"encoding/json"
	"fmt"
)

// Visibility restricts which customer types may see a product publicly.
type Visibility uint8

const (
	VisibleToAll Visibility = iota
	WholesaleOnly
	RetailOnly
)

func (v Visibility) String() string {
	switch v {
	case WholesaleOnly:
		return "wholesaleOnly"
	case RetailOnly:
		return "retailOnly"
	default:
		return "all"
	}
}

// ParseVisibility decodes the stored/wire form of a visibility.
func ParseVisibility(s string) (Visibility, error) {
	switch s {
	case "all":
		return VisibleToAll, nil
	case "wholesaleOnly":
		return WholesaleOnly, nil
	case "retailOnly":
		return RetailOnly, nil
	default:
		return VisibleToAll, fmt.Errorf("unknown visibility %q", s)
	}
}

// VisibleTo reports whether a product with visibility v is shown to ct.
// Direct customers only see products visible to all.
func (v Visibility) VisibleTo(ct CustomerType) bool {
	switch v {
	case VisibleToAll:
		return true
	case WholesaleOnly:
		return ct == Wholesale
	case RetailOnly:
		return ct == Retail
	default:
		return false
	}
}

// VisibilitiesFor returns the visibilities a catalog query for ct must match.
func VisibilitiesFor(ct CustomerType) []Visibility {
	switch ct {
	case Wholesale:
		return []Visibility{VisibleToAll, WholesaleOnly}
	case Retail:
		return []Visibility{VisibleToAll, RetailOnly}
	default:
		return []Visibility{VisibleToAll}
	}
}

func (v Visibility) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *Visibility) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseVisibility(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
