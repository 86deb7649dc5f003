package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/database"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
)

const customerColumns = `owner, id, name, contact_number, customer_type, business_name,
		address_line1, city, state, postal_code, created_at, updated_at`

// CustomerRepository implements repository.CustomerRepository using PostgreSQL.
type CustomerRepository struct {
	db database.DBTX
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(db database.DBTX) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Upsert inserts c or replaces the customer with the same owner and id.
// CreatedAt is preserved on update.
func (r *CustomerRepository) Upsert(ctx context.Context, c *domain.Customer) (err error) {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (owner, id) DO UPDATE SET
			name = EXCLUDED.name,
			contact_number = EXCLUDED.contact_number,
			customer_type = EXCLUDED.customer_type,
			business_name = EXCLUDED.business_name,
			address_line1 = EXCLUDED.address_line1,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			postal_code = EXCLUDED.postal_code,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at`

	ctx, end := database.TraceQuery(ctx, database.Query{Op: "UpsertCustomer", Statement: query, Weaver: c.Owner})
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query,
		c.Owner,
		c.ID,
		c.Name,
		c.ContactNumber,
		c.CustomerType.Token(),
		c.BusinessName,
		c.AddressLine1,
		c.City,
		c.State,
		c.PostalCode,
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}
	return nil
}

// Get retrieves one of the owner's customers.
func (r *CustomerRepository) Get(ctx context.Context, owner, id string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE owner = $1 AND id = $2`

	c, err := scanCustomer(r.db.QueryRow(ctx, query, owner, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("customer", id)
		}
		return nil, err
	}
	return c, nil
}

// List returns all of the owner's customers ordered by name.
func (r *CustomerRepository) List(ctx context.Context, owner string) (_ []domain.Customer, err error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE owner = $1 ORDER BY name, id`

	ctx, end := database.TraceQuery(ctx, database.Query{Op: "ListCustomers", Statement: query, Weaver: owner})
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}
	return customers, nil
}

// Delete removes one of the owner's customers.
func (r *CustomerRepository) Delete(ctx context.Context, owner, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE owner = $1 AND id = $2`, owner, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("customer", id)
	}
	return nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var (
		c     domain.Customer
		ctRaw string
	)
	err := row.Scan(
		&c.Owner,
		&c.ID,
		&c.Name,
		&c.ContactNumber,
		&ctRaw,
		&c.BusinessName,
		&c.AddressLine1,
		&c.City,
		&c.State,
		&c.PostalCode,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}

	ct, err := domain.ParseCustomerTypeStrict(ctRaw)
	if err != nil {
		return nil, fmt.Errorf("scan customer %s: %w", c.ID, err)
	}
	c.CustomerType = ct
	return &c, nil
}
