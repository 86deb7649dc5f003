package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/internal/repository"
	"github.com/caffeinepub/saree-catalogue-portal/internal/sharelink"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
)

// RoleService answers role queries. Authenticated callers without an
// explicit assignment are users.
type RoleService struct {
	repo   repository.RoleRepository
	parser *sharelink.Parser
	logger *slog.Logger
}

// NewRoleService creates a new role service.
func NewRoleService(repo repository.RoleRepository, parser *sharelink.Parser, logger *slog.Logger) *RoleService {
	return &RoleService{
		repo:   repo,
		parser: parser,
		logger: logger,
	}
}

// Bootstrap assigns the admin role to each of admins.
func (s *RoleService) Bootstrap(ctx context.Context, admins []string) error {
	for _, p := range admins {
		if err := s.parser.ValidateIdentity(p); err != nil {
			return fmt.Errorf("admin %q: %w", p, err)
		}
		if err := s.repo.SetRole(ctx, p, domain.RoleAdmin); err != nil {
			return fmt.Errorf("bootstrap admin %q: %w", p, err)
		}
		s.logger.InfoContext(ctx, "admin role bootstrapped", slog.String("principal", p))
	}
	return nil
}

// GetRole returns the caller's role.
func (s *RoleService) GetRole(ctx context.Context, caller string) (domain.Role, error) {
	role, err := s.repo.GetRole(ctx, caller)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return domain.RoleUser, nil
	case err != nil:
		return "", fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// IsAdmin reports whether the caller holds the admin role.
func (s *RoleService) IsAdmin(ctx context.Context, caller string) (bool, error) {
	role, err := s.GetRole(ctx, caller)
	if err != nil {
		return false, err
	}
	return role == domain.RoleAdmin, nil
}

// AssignRole sets target's role. Only admins may assign roles.
func (s *RoleService) AssignRole(ctx context.Context, caller, target string, role domain.Role) error {
	admin, err := s.IsAdmin(ctx, caller)
	if err != nil {
		return err
	}
	if !admin {
		return apperrors.Forbidden("only admins can assign roles")
	}
	if err := s.parser.ValidateIdentity(target); err != nil {
		return apperrors.InvalidInput("invalid principal")
	}

	if err := s.repo.SetRole(ctx, target, role); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}

	s.logger.InfoContext(ctx, "role assigned",
		slog.String("principal", target),
		slog.String("role", string(role)),
	)
	return nil
}
