package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/internal/storage"
	"github.com/caffeinepub/saree-catalogue-portal/internal/storage/memory"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/pagination"
)

type productFixture struct {
	repo   *mockProductRepository
	cache  *mockInvalidator
	events *mockEvents
	store  *memory.Storage
	svc    *ProductService
}

func newProductFixture() *productFixture {
	f := &productFixture{
		repo:   new(mockProductRepository),
		cache:  new(mockInvalidator),
		events: new(mockEvents),
		store:  memory.New("http://localhost:8080"),
	}
	f.svc = NewProductService(f.repo, f.cache, f.events, f.store, newTestLogger())
	return f
}

func (f *productFixture) assertNoSideEffects(t *testing.T) {
	t.Helper()
	f.cache.AssertNotCalled(t, "InvalidateOwner", mock.Anything, mock.Anything)
	assert.Empty(t, f.events.Calls)
}

func validInput() *CreateProductInput {
	return &CreateProductInput{
		Name:              "  Kanjivaram Silk  ",
		Description:       "Pure zari border",
		Prices:            domain.PriceSet{Retail: 12000, Wholesale: 9000, Direct: 10500},
		AvailableQuantity: 4,
		Colors:            []domain.Color{{Name: "Maroon", Hex: "#800000"}},
		Visibility:        domain.VisibleToAll,
	}
}

// ─── CreateProduct ───────────────────────────────────────────────────────────

func TestCreateProduct_Success(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	f.repo.On("Create", ctx, mock.AnythingOfType("*domain.Product")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Product).ID = 1 }).
		Return(nil)
	f.cache.On("InvalidateOwner", ctx, owner).Return(3, nil)
	f.events.On("PublishProductCreated", ctx, mock.AnythingOfType("*domain.Product")).Return(nil)

	p, err := f.svc.CreateProduct(ctx, owner, validInput())

	require.NoError(t, err)
	assert.Equal(t, uint64(1), p.ID)
	assert.Equal(t, owner, p.Owner)
	assert.Equal(t, "Kanjivaram Silk", p.Name)
	assert.False(t, p.CreatedAt.IsZero())
	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestCreateProduct_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *CreateProductInput)
	}{
		{"empty name", func(in *CreateProductInput) { in.Name = "   " }},
		{"negative wholesale", func(in *CreateProductInput) { in.Prices.Wholesale = -1 }},
		{"negative quantity", func(in *CreateProductInput) { in.AvailableQuantity = -2 }},
		{"bad hex", func(in *CreateProductInput) { in.Colors = []domain.Color{{Name: "Red", Hex: "red"}} }},
		{"short hex", func(in *CreateProductInput) { in.Colors = []domain.Color{{Name: "Red", Hex: "#f00"}} }},
		{"unnamed color", func(in *CreateProductInput) { in.Colors = []domain.Color{{Hex: "#ff0000"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProductFixture()
			in := validInput()
			tt.mutate(in)

			_, err := f.svc.CreateProduct(context.Background(), owner, in)

			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			f.assertNoSideEffects(t)
		})
	}
}

func TestCreateProduct_RepoFailureDoesNotInvalidate(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	f.repo.On("Create", ctx, mock.Anything).Return(apperrors.Conflict("sequence clash"))

	_, err := f.svc.CreateProduct(ctx, owner, validInput())

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	f.assertNoSideEffects(t)
}

func TestCreateProduct_SideEffectFailuresDoNotFail(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	f.repo.On("Create", ctx, mock.Anything).Return(nil)
	f.cache.On("InvalidateOwner", ctx, owner).Return(0, errors.New("redis down"))
	f.events.On("PublishProductCreated", ctx, mock.Anything).Return(errors.New("broker down"))

	_, err := f.svc.CreateProduct(ctx, owner, validInput())
	assert.NoError(t, err)
}

func TestCreateProduct_WithoutCacheOrEvents(t *testing.T) {
	repo := new(mockProductRepository)
	svc := NewProductService(repo, nil, nil, nil, newTestLogger())
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(nil)

	_, err := svc.CreateProduct(ctx, owner, validInput())
	assert.NoError(t, err)
}

// ─── Update / Delete ─────────────────────────────────────────────────────────

func TestUpdateProduct_PartialFields(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	existing := &domain.Product{ID: 2, Owner: owner, Name: "Old", Prices: domain.PriceSet{Retail: 100}, AvailableQuantity: 1}
	vis := domain.WholesaleOnly
	f.repo.On("Get", ctx, owner, uint64(2)).Return(existing, nil)
	f.repo.On("Update", ctx, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "New" && p.Visibility == domain.WholesaleOnly &&
			p.Prices.Retail == 100 && p.Prices.Direct == 90 && p.AvailableQuantity == 7
	})).Return(nil)
	f.cache.On("InvalidateOwner", ctx, owner).Return(1, nil)
	f.events.On("PublishProductUpdated", ctx, existing).Return(nil)

	p, err := f.svc.UpdateProduct(ctx, owner, 2, &UpdateProductInput{
		Name:              strPtr("New"),
		DirectPrice:       int64Ptr(90),
		AvailableQuantity: int64Ptr(7),
		Visibility:        &vis,
	})

	require.NoError(t, err)
	assert.Equal(t, "New", p.Name)
	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	f.repo.On("Get", ctx, owner, uint64(3)).Return(nil, apperrors.NotFound("product", "3"))

	_, err := f.svc.UpdateProduct(ctx, owner, 3, &UpdateProductInput{Name: strPtr("x")})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.assertNoSideEffects(t)
}

func TestDeleteProduct(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	f.repo.On("Delete", ctx, owner, uint64(4)).Return(nil)
	f.cache.On("InvalidateOwner", ctx, owner).Return(2, nil)
	f.events.On("PublishProductDeleted", ctx, owner, uint64(4)).Return(nil)

	require.NoError(t, f.svc.DeleteProduct(ctx, owner, 4))
	f.events.AssertExpectations(t)
}

func TestDeleteProduct_Failure(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	f.repo.On("Delete", ctx, owner, uint64(4)).Return(apperrors.NotFound("product", "4"))

	assert.ErrorIs(t, f.svc.DeleteProduct(ctx, owner, 4), apperrors.ErrNotFound)
	f.assertNoSideEffects(t)
}

// ─── Stock ───────────────────────────────────────────────────────────────────

func TestToggleOutOfStock(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	toggled := &domain.Product{ID: 5, Owner: owner, AvailableQuantity: 0}
	f.repo.On("ToggleOutOfStock", ctx, owner, uint64(5)).Return(toggled, nil)
	f.cache.On("InvalidateOwner", ctx, owner).Return(1, nil)
	f.events.On("PublishProductStockChanged", ctx, toggled).Return(nil)

	p, err := f.svc.ToggleOutOfStock(ctx, owner, 5)

	require.NoError(t, err)
	assert.False(t, p.InStock())
	f.events.AssertExpectations(t)
}

func TestUpdateQuantity(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	_, err := f.svc.UpdateQuantity(ctx, owner, 5, -1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	f.assertNoSideEffects(t)

	updated := &domain.Product{ID: 5, Owner: owner, AvailableQuantity: 12}
	f.repo.On("SetQuantity", ctx, owner, uint64(5), int64(12)).Return(updated, nil)
	f.cache.On("InvalidateOwner", ctx, owner).Return(1, nil)
	f.events.On("PublishProductStockChanged", ctx, updated).Return(nil)

	p, err := f.svc.UpdateQuantity(ctx, owner, 5, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(12), p.AvailableQuantity)
}

// ─── List / Upload ───────────────────────────────────────────────────────────

func TestListProducts(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	page := pagination.Params{Page: 2, PerPage: 1}

	f.repo.On("ListByOwner", ctx, owner, page).Return([]domain.Product{{ID: 2}}, 3, nil)

	res, err := f.svc.ListProducts(ctx, owner, page)

	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, 3, res.TotalPages)
	assert.True(t, res.HasNext)
	assert.True(t, res.HasPrev)
}

func TestUploadImage(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	res, err := f.svc.UploadImage(ctx, owner, "image/webp", 4, strings.NewReader("webp"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Key, owner+"/products/"))
	assert.True(t, strings.HasSuffix(res.URL, ".webp"))
	_, _, ok := f.store.Open(res.Key)
	assert.True(t, ok)

	_, err = f.svc.UploadImage(ctx, owner, "application/pdf", 4, strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.svc.UploadImage(ctx, owner, "image/png", storage.MaxUploadSize+1, strings.NewReader(""))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUploadImage_NoStorage(t *testing.T) {
	svc := NewProductService(new(mockProductRepository), nil, nil, nil, newTestLogger())

	_, err := svc.UploadImage(context.Background(), owner, "image/png", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}
