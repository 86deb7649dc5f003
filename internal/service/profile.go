package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/internal/repository"
	"github.com/caffeinepub/saree-catalogue-portal/internal/sharelink"
	"github.com/caffeinepub/saree-catalogue-portal/internal/storage"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
)

// ProfileService manages weaver and user profiles.
type ProfileService struct {
	repo    repository.ProfileRepository
	roles   *RoleService
	parser  *sharelink.Parser
	storage storage.Storage
	logger  *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(repo repository.ProfileRepository, roles *RoleService, parser *sharelink.Parser, store storage.Storage, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		repo:    repo,
		roles:   roles,
		parser:  parser,
		storage: store,
		logger:  logger,
	}
}

// SaveWeaverProfileInput holds the editable profile fields. A nil LogoURL
// keeps the current logo.
type SaveWeaverProfileInput struct {
	Name    string
	Address string
	LogoURL *string
}

// GetWeaverProfile returns the caller's weaver profile.
func (s *ProfileService) GetWeaverProfile(ctx context.Context, owner string) (*domain.WeaverProfile, error) {
	p, err := s.repo.GetWeaverProfile(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("get weaver profile: %w", err)
	}
	return p, nil
}

// GetPublicWeaverProfile returns the profile shown on a public catalog page.
func (s *ProfileService) GetPublicWeaverProfile(ctx context.Context, weaver string) (*domain.WeaverProfile, error) {
	if err := s.parser.ValidateIdentity(weaver); err != nil {
		return nil, apperrors.InvalidLink("INVALID_CATALOG_LINK", "invalid catalog link")
	}
	return s.GetWeaverProfile(ctx, weaver)
}

// SaveWeaverProfile creates or updates the caller's weaver profile.
func (s *ProfileService) SaveWeaverProfile(ctx context.Context, owner string, input *SaveWeaverProfileInput) (*domain.WeaverProfile, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("business name is required")
	}

	profile := &domain.WeaverProfile{Owner: owner}
	current, err := s.repo.GetWeaverProfile(ctx, owner)
	switch {
	case err == nil:
		profile = current
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("get weaver profile: %w", err)
	}

	profile.Name = name
	profile.Address = strings.TrimSpace(input.Address)
	if input.LogoURL != nil {
		profile.LogoURL = *input.LogoURL
	}
	profile.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpsertWeaverProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save weaver profile: %w", err)
	}
	s.logger.InfoContext(ctx, "weaver profile saved")
	return profile, nil
}

// UploadLogo stores a logo image and sets it on the caller's profile. A
// weaver without a profile must create one first.
func (s *ProfileService) UploadLogo(ctx context.Context, owner, contentType string, size int64, data io.Reader) (*domain.WeaverProfile, error) {
	profile, err := s.repo.GetWeaverProfile(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("get weaver profile: %w", err)
	}

	res, err := uploadImage(ctx, s.storage, storage.LogoKey, owner, contentType, size, data)
	if err != nil {
		return nil, err
	}

	previous := profile.LogoURL
	profile.LogoURL = res.URL
	profile.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpsertWeaverProfile(ctx, profile); err != nil {
		if delErr := s.storage.Delete(ctx, res.Key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned logo",
				slog.String("key", res.Key),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, fmt.Errorf("save weaver profile: %w", err)
	}

	s.logger.InfoContext(ctx, "weaver logo updated",
		slog.String("key", res.Key),
		slog.String("previous", previous),
	)
	return profile, nil
}

// GetUserProfile returns the caller's user profile.
func (s *ProfileService) GetUserProfile(ctx context.Context, caller string) (*domain.UserProfile, error) {
	p, err := s.repo.GetUserProfile(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return p, nil
}

// GetUserProfileOf returns another user's profile. Only the user themselves
// and admins may read it.
func (s *ProfileService) GetUserProfileOf(ctx context.Context, caller, target string) (*domain.UserProfile, error) {
	if caller != target {
		admin, err := s.roles.IsAdmin(ctx, caller)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, apperrors.Forbidden("can only view your own profile")
		}
	}
	return s.GetUserProfile(ctx, target)
}

// SaveUserProfile stores the caller's display name.
func (s *ProfileService) SaveUserProfile(ctx context.Context, caller, name string) (*domain.UserProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	p := &domain.UserProfile{Principal: caller, Name: name}
	if err := s.repo.UpsertUserProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("save user profile: %w", err)
	}
	return p, nil
}
