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

// ProfileRepository implements repository.ProfileRepository and
// repository.RoleRepository using PostgreSQL.
type ProfileRepository struct {
	db database.DBTX
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(db database.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetWeaverProfile(ctx context.Context, owner string) (*domain.WeaverProfile, error) {
	var p domain.WeaverProfile
	err := r.db.QueryRow(ctx,
		`SELECT owner, name, address, logo_url, updated_at FROM weaver_profiles WHERE owner = $1`, owner,
	).Scan(&p.Owner, &p.Name, &p.Address, &p.LogoURL, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("weaver profile", owner)
		}
		return nil, fmt.Errorf("get weaver profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepository) UpsertWeaverProfile(ctx context.Context, p *domain.WeaverProfile) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO weaver_profiles (owner, name, address, logo_url, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner) DO UPDATE SET
			name = EXCLUDED.name, address = EXCLUDED.address,
			logo_url = EXCLUDED.logo_url, updated_at = EXCLUDED.updated_at`,
		p.Owner, p.Name, p.Address, p.LogoURL, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert weaver profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetUserProfile(ctx context.Context, principal string) (*domain.UserProfile, error) {
	p := domain.UserProfile{Principal: principal}
	err := r.db.QueryRow(ctx, `SELECT name FROM user_profiles WHERE principal = $1`, principal).Scan(&p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user profile", principal)
		}
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepository) UpsertUserProfile(ctx context.Context, p *domain.UserProfile) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_profiles (principal, name) VALUES ($1, $2)
		ON CONFLICT (principal) DO UPDATE SET name = EXCLUDED.name`,
		p.Principal, p.Name,
	)
	if err != nil {
		return fmt.Errorf("upsert user profile: %w", err)
	}
	return nil
}

// GetRole returns the explicit role of principal.
func (r *ProfileRepository) GetRole(ctx context.Context, principal string) (domain.Role, error) {
	var raw string
	err := r.db.QueryRow(ctx, `SELECT role FROM user_roles WHERE principal = $1`, principal).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("get role: %w", err)
	}
	return domain.ParseRole(raw)
}

// SetRole assigns role to principal, replacing any previous assignment.
func (r *ProfileRepository) SetRole(ctx context.Context, principal string, role domain.Role) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_roles (principal, role) VALUES ($1, $2)
		ON CONFLICT (principal) DO UPDATE SET role = EXCLUDED.role`,
		principal, string(role),
	)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	return nil
}
