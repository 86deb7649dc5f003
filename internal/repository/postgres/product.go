package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/database"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/pagination"
)

const productColumns = `owner, id, name, description, retail_price, wholesale_price, direct_price,
		available_quantity, made_to_order, colors, visibility, images, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create allocates the next id from the owner's sequence and inserts p in a
// single statement.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	colorsJSON, err := marshalColors(p.Colors)
	if err != nil {
		return err
	}

	query := `
		WITH seq AS (
			INSERT INTO product_sequences (owner, last_id) VALUES ($1, 1)
			ON CONFLICT (owner) DO UPDATE SET last_id = product_sequences.last_id + 1
			RETURNING last_id
		)
		INSERT INTO products (owner, id, name, description, retail_price, wholesale_price, direct_price,
			available_quantity, made_to_order, colors, visibility, images, created_at, updated_at)
		SELECT $1, last_id, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13 FROM seq
		RETURNING id`

	ctx, end := database.TraceQuery(ctx, database.Query{Op: "CreateProduct", Statement: query, Weaver: p.Owner})
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query,
		p.Owner,
		p.Name,
		p.Description,
		p.Prices.Retail,
		p.Prices.Wholesale,
		p.Prices.Direct,
		p.AvailableQuantity,
		p.MadeToOrder,
		colorsJSON,
		p.Visibility.String(),
		images(p.Images),
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("product id allocation raced, retry")
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Get retrieves one of the owner's products.
func (r *ProductRepository) Get(ctx context.Context, owner string, id uint64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE owner = $1 AND id = $2`
	return r.scanOne(ctx, database.Query{Op: "GetProduct", Statement: query, Weaver: owner}, owner, int64(id))
}

// PublicProduct retrieves a product for a share link. Visibility is applied
// by the caller, which knows the link's customer type.
func (r *ProductRepository) PublicProduct(ctx context.Context, owner string, id uint64) (*domain.Product, error) {
	return r.Get(ctx, owner, id)
}

// PublicCatalog lists the owner's products visible to ct, oldest first.
func (r *ProductRepository) PublicCatalog(ctx context.Context, owner string, ct domain.CustomerType) (_ []domain.Product, err error) {
	visible := domain.VisibilitiesFor(ct)
	names := make([]string, len(visible))
	for i, v := range visible {
		names[i] = v.String()
	}

	query := `SELECT ` + productColumns + `
		FROM products
		WHERE owner = $1 AND visibility = ANY($2)
		ORDER BY id`

	ctx, end := database.TraceQuery(ctx, database.Query{Op: "PublicCatalog", Statement: query, Weaver: owner})
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, owner, names)
	if err != nil {
		return nil, fmt.Errorf("list public catalog: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

// ListByOwner returns one page of the owner's products, newest first, with
// the total count.
func (r *ProductRepository) ListByOwner(ctx context.Context, owner string, page pagination.Params) (_ []domain.Product, _ int, err error) {
	// Use count(*) OVER() for total count in a single query.
	query := `SELECT ` + productColumns + `, count(*) OVER() AS total_count
		FROM products
		WHERE owner = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`

	ctx, end := database.TraceQuery(ctx, database.Query{Op: "ListProducts", Statement: query, Weaver: owner})
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, owner, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		products   = []domain.Product{}
		totalCount int
	)
	for rows.Next() {
		p, err := scanProduct(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, totalCount, nil
}

// Update replaces the editable fields of p.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	colorsJSON, err := marshalColors(p.Colors)
	if err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, description = $2, retail_price = $3, wholesale_price = $4, direct_price = $5,
		    available_quantity = $6, made_to_order = $7, colors = $8, visibility = $9, images = $10, updated_at = $11
		WHERE owner = $12 AND id = $13`

	ctx, end := database.TraceQuery(ctx, database.Query{Op: "UpdateProduct", Statement: query, Weaver: p.Owner})
	defer func() { end(err) }()

	tag, err := r.db.Exec(ctx, query,
		p.Name,
		p.Description,
		p.Prices.Retail,
		p.Prices.Wholesale,
		p.Prices.Direct,
		p.AvailableQuantity,
		p.MadeToOrder,
		colorsJSON,
		p.Visibility.String(),
		images(p.Images),
		p.UpdatedAt,
		p.Owner,
		int64(p.ID),
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("product", strconv.FormatUint(p.ID, 10))
	}
	return nil
}

// Delete removes one of the owner's products.
func (r *ProductRepository) Delete(ctx context.Context, owner string, id uint64) (err error) {
	query := `DELETE FROM products WHERE owner = $1 AND id = $2`

	ctx, end := database.TraceQuery(ctx, database.Query{Op: "DeleteProduct", Statement: query, Weaver: owner})
	defer func() { end(err) }()

	tag, err := r.db.Exec(ctx, query, owner, int64(id))
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("product", strconv.FormatUint(id, 10))
	}
	return nil
}

// SetQuantity overwrites the available quantity.
func (r *ProductRepository) SetQuantity(ctx context.Context, owner string, id uint64, quantity int64) (*domain.Product, error) {
	query := `
		UPDATE products SET available_quantity = $1, updated_at = $2
		WHERE owner = $3 AND id = $4
		RETURNING ` + productColumns

	return r.scanOne(ctx, database.Query{Op: "SetProductQuantity", Statement: query, Weaver: owner}, quantity, time.Now().UTC(), owner, int64(id))
}

// ToggleOutOfStock flips between out of stock (0) and a single unit.
func (r *ProductRepository) ToggleOutOfStock(ctx context.Context, owner string, id uint64) (*domain.Product, error) {
	query := `
		UPDATE products
		SET available_quantity = CASE WHEN available_quantity > 0 THEN 0 ELSE 1 END, updated_at = $1
		WHERE owner = $2 AND id = $3
		RETURNING ` + productColumns

	return r.scanOne(ctx, database.Query{Op: "ToggleOutOfStock", Statement: query, Weaver: owner}, time.Now().UTC(), owner, int64(id))
}

func (r *ProductRepository) scanOne(ctx context.Context, q database.Query, args ...any) (_ *domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, q)
	defer func() {
		if errors.Is(err, apperrors.ErrNotFound) {
			end(nil)
			return
		}
		end(err)
	}()

	p, err := scanProduct(r.db.QueryRow(ctx, q.Statement, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// scanProduct reads productColumns plus any extra destinations.
func scanProduct(row pgx.Row, extra ...any) (*domain.Product, error) {
	var (
		p          domain.Product
		id         int64
		colorsJSON []byte
		visibility string
	)

	dest := []any{
		&p.Owner,
		&id,
		&p.Name,
		&p.Description,
		&p.Prices.Retail,
		&p.Prices.Wholesale,
		&p.Prices.Direct,
		&p.AvailableQuantity,
		&p.MadeToOrder,
		&colorsJSON,
		&visibility,
		&p.Images,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	p.ID = uint64(id)
	if len(colorsJSON) > 0 {
		if err := json.Unmarshal(colorsJSON, &p.Colors); err != nil {
			return nil, fmt.Errorf("unmarshal colors: %w", err)
		}
	}
	v, err := domain.ParseVisibility(visibility)
	if err != nil {
		return nil, fmt.Errorf("scan product %d: %w", id, err)
	}
	p.Visibility = v
	return &p, nil
}

func marshalColors(colors []domain.Color) ([]byte, error) {
	if colors == nil {
		colors = []domain.Color{}
	}
	b, err := json.Marshal(colors)
	if err != nil {
		return nil, fmt.Errorf("marshal colors: %w", err)
	}
	return b, nil
}

func images(urls []string) []string {
	if urls == nil {
		return []string{}
	}
	return urls
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
