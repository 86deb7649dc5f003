package repository

import (
	"context"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/pagination"
)

// PublicCatalogReader serves the unauthenticated share-link reads. It is
// implemented by the local store and by the remote backend client; neither
// takes caller credentials.
type PublicCatalogReader interface {
	// PublicCatalog returns the owner's products visible to ct. An owner
	// with no visible products yields an empty slice, not an error.
	PublicCatalog(ctx context.Context, owner string, ct domain.CustomerType) ([]domain.Product, error)

	// PublicProduct returns one product regardless of visibility, or an
	// error wrapping apperrors.ErrNotFound.
	PublicProduct(ctx context.Context, owner string, id uint64) (*domain.Product, error)
}

// ProductRepository persists weaver products. Every method is scoped to an
// owner.
type ProductRepository interface {
	PublicCatalogReader

	// Create stores p and assigns the next id in the owner's sequence.
	Create(ctx context.Context, p *domain.Product) error

	Get(ctx context.Context, owner string, id uint64) (*domain.Product, error)

	// ListByOwner returns one page of the owner's products and the total.
	ListByOwner(ctx context.Context, owner string, page pagination.Params) ([]domain.Product, int, error)

	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, owner string, id uint64) error
	SetQuantity(ctx context.Context, owner string, id uint64, quantity int64) (*domain.Product, error)

	// ToggleOutOfStock sets a stocked product to zero and an empty one to one.
	ToggleOutOfStock(ctx context.Context, owner string, id uint64) (*domain.Product, error)
}

// CustomerRepository persists a weaver's customer book.
type CustomerRepository interface {
	Upsert(ctx context.Context, c *domain.Customer) error
	Get(ctx context.Context, owner, id string) (*domain.Customer, error)
	List(ctx context.Context, owner string) ([]domain.Customer, error)
	Delete(ctx context.Context, owner, id string) error
}

// ProfileRepository persists weaver and user profiles.
type ProfileRepository interface {
	GetWeaverProfile(ctx context.Context, owner string) (*domain.WeaverProfile, error)
	UpsertWeaverProfile(ctx context.Context, p *domain.WeaverProfile) error
	GetUserProfile(ctx context.Context, principal string) (*domain.UserProfile, error)
	UpsertUserProfile(ctx context.Context, p *domain.UserProfile) error
}

// RoleRepository stores explicit role assignments.
type RoleRepository interface {
	// GetRole returns ErrNotFound for principals without an assignment.
	GetRole(ctx context.Context, principal string) (domain.Role, error)
	SetRole(ctx context.Context, principal string, role domain.Role) error
}
