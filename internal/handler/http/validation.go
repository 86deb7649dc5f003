package http

import (
	"sync"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/validator"
)

var registerOnce sync.Once

// registerValidations adds the catalog's enum and colour tags to the shared validator.
func registerValidations() {
	registerOnce.Do(func() {
		must(validator.Register("customer_type", func(v string) bool {
			_, err := domain.ParseCustomerTypeStrict(v)
			return err == nil
		}, "must be one of: retail, wholesale, direct"))

		must(validator.Register("visibility", func(v string) bool {
			_, err := domain.ParseVisibility(v)
			return err == nil
		}, "must be one of: all, wholesaleOnly, retailOnly"))

		must(validator.Register("role", func(v string) bool {
			_, err := domain.ParseRole(v)
			return err == nil
		}, "must be one of: admin, user, guest"))

		must(validator.Register("color_hex", domain.ValidHex, "must be a #rrggbb hex colour"))
	})
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
