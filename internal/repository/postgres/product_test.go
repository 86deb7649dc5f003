package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/database"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/pagination"
)

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

const owner = "2vxsx-fae"

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return mock
}

func strPtr(s string) *string { return &s }

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var productCols = []string{
	"owner", "id", "name", "description", "retail_price", "wholesale_price", "direct_price",
	"available_quantity", "made_to_order", "colors", "visibility", "images", "created_at", "updated_at",
}

func sampleProduct() domain.Product {
	return domain.Product{
		ID:                3,
		Owner:             owner,
		Name:              "Kanjivaram silk",
		Description:       "Pure zari border",
		Prices:            domain.PriceSet{Retail: 12500, Wholesale: 9800, Direct: 11000},
		AvailableQuantity: 4,
		Colors:            []domain.Color{{Name: "Maroon", Hex: "#800000"}},
		Visibility:        domain.WholesaleOnly,
		Images:            []string{"https://cdn.example/k1.jpg"},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func productRow(p domain.Product) []any {
	colors, _ := json.Marshal(p.Colors)
	return []any{
		p.Owner, int64(p.ID), p.Name, p.Description, p.Prices.Retail, p.Prices.Wholesale, p.Prices.Direct,
		p.AvailableQuantity, p.MadeToOrder, colors, p.Visibility.String(), p.Images, p.CreatedAt, p.UpdatedAt,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ProductRepository
// ─────────────────────────────────────────────────────────────────────────────

func TestProductRepository_Create_AssignsSequenceID(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	p := sampleProduct()
	p.ID = 0
	colors, _ := json.Marshal(p.Colors)

	mock.ExpectQuery("INSERT INTO product_sequences").
		WithArgs(
			p.Owner, p.Name, p.Description, p.Prices.Retail, p.Prices.Wholesale, p.Prices.Direct,
			p.AvailableQuantity, p.MadeToOrder, colors, "wholesaleOnly", p.Images, p.CreatedAt, p.UpdatedAt,
		).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(8)))

	require.NoError(t, repo.Create(context.Background(), &p))
	assert.Equal(t, uint64(8), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Create_NilCollectionsStoredEmpty(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	p := sampleProduct()
	p.Colors = nil
	p.Images = nil

	mock.ExpectQuery("INSERT INTO product_sequences").
		WithArgs(
			p.Owner, p.Name, p.Description, p.Prices.Retail, p.Prices.Wholesale, p.Prices.Direct,
			p.AvailableQuantity, p.MadeToOrder, []byte("[]"), "wholesaleOnly", []string{}, p.CreatedAt, p.UpdatedAt,
		).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	require.NoError(t, repo.Create(context.Background(), &p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Create_UniqueViolation(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	p := sampleProduct()
	mock.ExpectQuery("INSERT INTO product_sequences").
		WithArgs(anyArgs(13)...).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), &p)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Get_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	p := sampleProduct()
	mock.ExpectQuery("SELECT .+ FROM products WHERE owner").
		WithArgs(owner, int64(3)).
		WillReturnRows(pgxmock.NewRows(productCols).AddRow(productRow(p)...))

	got, err := repo.Get(context.Background(), owner, 3)
	require.NoError(t, err)
	assert.Equal(t, p, *got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_PublicProduct_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products WHERE owner").
		WithArgs(owner, int64(999999)).
		WillReturnRows(pgxmock.NewRows(productCols))

	got, err := repo.PublicProduct(context.Background(), owner, 999999)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Get_BadVisibility(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	row := productRow(sampleProduct())
	row[10] = "everyone"
	mock.ExpectQuery("SELECT .+ FROM products WHERE owner").
		WithArgs(owner, int64(3)).
		WillReturnRows(pgxmock.NewRows(productCols).AddRow(row...))

	_, err := repo.Get(context.Background(), owner, 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProductRepository_PublicCatalog_FiltersVisibility(t *testing.T) {
	tests := []struct {
		ct      domain.CustomerType
		allowed []string
	}{
		{domain.Retail, []string{"all", "retailOnly"}},
		{domain.Wholesale, []string{"all", "wholesaleOnly"}},
		{domain.Direct, []string{"all"}},
	}
	for _, tt := range tests {
		t.Run(tt.ct.Token(), func(t *testing.T) {
			mock := newMock(t)
			defer mock.Close()
			repo := NewProductRepository(mock)

			p := sampleProduct()
			p.Visibility = domain.VisibleToAll
			mock.ExpectQuery("SELECT .+ FROM products WHERE owner .+ visibility = ANY").
				WithArgs(owner, tt.allowed).
				WillReturnRows(pgxmock.NewRows(productCols).AddRow(productRow(p)...))

			got, err := repo.PublicCatalog(context.Background(), owner, tt.ct)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, p.Name, got[0].Name)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProductRepository_PublicCatalog_EmptyIsNotNil(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs(owner, []string{"all"}).
		WillReturnRows(pgxmock.NewRows(productCols))

	got, err := repo.PublicCatalog(context.Background(), owner, domain.Direct)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestProductRepository_PublicCatalog_QueryError(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs(owner, []string{"all", "retailOnly"}).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.PublicCatalog(context.Background(), owner, domain.Retail)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list public catalog")
}

func TestProductRepository_ListByOwner(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	p := sampleProduct()
	cols := append(append([]string{}, productCols...), "total_count")
	mock.ExpectQuery("SELECT .+ count").
		WithArgs(owner, 20, 20).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(append(productRow(p), 21)...))

	got, total, err := repo.ListByOwner(context.Background(), owner, pagination.Params{Page: 2, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, 21, total)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(3), got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	p := sampleProduct()
	mock.ExpectExec("UPDATE products").
		WithArgs(
			p.Name, p.Description, p.Prices.Retail, p.Prices.Wholesale, p.Prices.Direct,
			p.AvailableQuantity, p.MadeToOrder, pgxmock.AnyArg(), "wholesaleOnly", p.Images,
			pgxmock.AnyArg(), owner, int64(3),
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Update(context.Background(), &p))
	assert.True(t, p.UpdatedAt.After(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	p := sampleProduct()
	mock.ExpectExec("UPDATE products").
		WithArgs(anyArgs(13)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &p)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProductRepository_Delete(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	mock.ExpectExec("DELETE FROM products").
		WithArgs(owner, int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM products").
		WithArgs(owner, int64(4)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Delete(context.Background(), owner, 3))
	assert.ErrorIs(t, repo.Delete(context.Background(), owner, 4), apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ToggleOutOfStock(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	p := sampleProduct()
	p.AvailableQuantity = 0
	mock.ExpectQuery("UPDATE products .+ CASE WHEN available_quantity").
		WithArgs(pgxmock.AnyArg(), owner, int64(3)).
		WillReturnRows(pgxmock.NewRows(productCols).AddRow(productRow(p)...))

	got, err := repo.ToggleOutOfStock(context.Background(), owner, 3)
	require.NoError(t, err)
	assert.False(t, got.InStock())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_SetQuantity_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	mock.ExpectQuery("UPDATE products SET available_quantity").
		WithArgs(int64(5), pgxmock.AnyArg(), owner, int64(77)).
		WillReturnRows(pgxmock.NewRows(productCols))

	_, err := repo.SetQuantity(context.Background(), owner, 77, 5)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrations_Embedded(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	for _, name := range []string{"001_create_products.up.sql", "002_create_customers.up.sql", "003_create_profiles.up.sql"} {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(name).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	}

	err := database.RunMigrations(context.Background(), mock, Migrations(), discardLogger())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
