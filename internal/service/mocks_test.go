package service

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/pagination"
)

// --- Mock Repositories ---

type mockReader struct {
	mock.Mock
}

func (m *mockReader) PublicCatalog(ctx context.Context, owner string, ct domain.CustomerType) ([]domain.Product, error) {
	args := m.Called(ctx, owner, ct)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockReader) PublicProduct(ctx context.Context, owner string, id uint64) (*domain.Product, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

type mockProductRepository struct {
	mockReader
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) Get(ctx context.Context, owner string, id uint64) (*domain.Product, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) ListByOwner(ctx context.Context, owner string, page pagination.Params) ([]domain.Product, int, error) {
	args := m.Called(ctx, owner, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, owner string, id uint64) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *mockProductRepository) SetQuantity(ctx context.Context, owner string, id uint64, quantity int64) (*domain.Product, error) {
	args := m.Called(ctx, owner, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) ToggleOutOfStock(ctx context.Context, owner string, id uint64) (*domain.Product, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

type mockCustomerRepository struct {
	mock.Mock
}

func (m *mockCustomerRepository) Upsert(ctx context.Context, c *domain.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCustomerRepository) Get(ctx context.Context, owner, id string) (*domain.Customer, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) List(ctx context.Context, owner string) ([]domain.Customer, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) Delete(ctx context.Context, owner, id string) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

type mockProfileRepository struct {
	mock.Mock
}

func (m *mockProfileRepository) GetWeaverProfile(ctx context.Context, owner string) (*domain.WeaverProfile, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WeaverProfile), args.Error(1)
}

func (m *mockProfileRepository) UpsertWeaverProfile(ctx context.Context, p *domain.WeaverProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProfileRepository) GetUserProfile(ctx context.Context, principal string) (*domain.UserProfile, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

func (m *mockProfileRepository) UpsertUserProfile(ctx context.Context, p *domain.UserProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type mockRoleRepository struct {
	mock.Mock
}

func (m *mockRoleRepository) GetRole(ctx context.Context, principal string) (domain.Role, error) {
	args := m.Called(ctx, principal)
	return args.Get(0).(domain.Role), args.Error(1)
}

func (m *mockRoleRepository) SetRole(ctx context.Context, principal string, role domain.Role) error {
	args := m.Called(ctx, principal, role)
	return args.Error(0)
}

// --- Mock Collaborators ---

type mockInvalidator struct {
	mock.Mock
}

func (m *mockInvalidator) InvalidateOwner(ctx context.Context, owner string) (int, error) {
	args := m.Called(ctx, owner)
	return args.Int(0), args.Error(1)
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishProductCreated(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockEvents) PublishProductUpdated(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockEvents) PublishProductStockChanged(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockEvents) PublishProductDeleted(ctx context.Context, owner string, id uint64) error {
	return m.Called(ctx, owner, id).Error(0)
}

// --- Test Helpers ---

const owner = "2vxsx-fae"

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string {
	return &s
}

func int64Ptr(i int64) *int64 {
	return &i
}
