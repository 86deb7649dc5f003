package http

import (
	"log/slog"
	"net/http"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/internal/service"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/httputil"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/middleware"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/validator"
)

// ProfileHandler handles profiles and roles of the caller.
type ProfileHandler struct {
	profiles *service.ProfileService
	roles    *service.RoleService
	logger   *slog.Logger
}

// NewProfileHandler creates a new profile HTTP handler.
func NewProfileHandler(profiles *service.ProfileService, roles *service.RoleService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		roles:    roles,
		logger:   logger,
	}
}

// WeaverProfileRequest is the JSON request body for saving a weaver profile.
type WeaverProfileRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Address string  `json:"address" validate:"max=500"`
	LogoURL *string `json:"logo_url" validate:"omitempty,url"`
}

// UserProfileRequest is the JSON request body for saving a user profile.
type UserProfileRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// AssignRoleRequest is the JSON request body for assigning a role.
type AssignRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

// GetWeaverProfile handles GET /api/v1/me/profile
func (h *ProfileHandler) GetWeaverProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetWeaverProfile(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, profile)
}

// SaveWeaverProfile handles PUT /api/v1/me/profile
func (h *ProfileHandler) SaveWeaverProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	var req WeaverProfileRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	profile, err := h.profiles.SaveWeaverProfile(r.Context(), middleware.PrincipalFromContext(r.Context()), &service.SaveWeaverProfileInput{
		Name:    req.Name,
		Address: req.Address,
		LogoURL: req.LogoURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, profile)
}

// UploadLogo handles POST /api/v1/me/profile/logo with multipart field "logo".
func (h *ProfileHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	upload, ok := readUpload(w, r, "logo")
	if !ok {
		return
	}
	defer upload.file.Close()

	profile, err := h.profiles.UploadLogo(r.Context(), middleware.PrincipalFromContext(r.Context()), upload.contentType, upload.size, upload.file)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, profile)
}

// GetUserProfile handles GET /api/v1/me/user-profile
func (h *ProfileHandler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetUserProfile(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, profile)
}

// SaveUserProfile handles PUT /api/v1/me/user-profile
func (h *ProfileHandler) SaveUserProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 16<<10)

	var req UserProfileRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	profile, err := h.profiles.SaveUserProfile(r.Context(), middleware.PrincipalFromContext(r.Context()), req.Name)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, profile)
}

// GetUserProfileOf handles GET /api/v1/me/users/{principal}/profile
func (h *ProfileHandler) GetUserProfileOf(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetUserProfileOf(r.Context(), middleware.PrincipalFromContext(r.Context()), pathParam(r, "principal"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, profile)
}

// GetRole handles GET /api/v1/me/role
func (h *ProfileHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.roles.GetRole(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]domain.Role{"role": role})
}

// IsAdmin handles GET /api/v1/me/is-admin
func (h *ProfileHandler) IsAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.roles.IsAdmin(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]bool{"is_admin": admin})
}

// AssignRole handles PUT /api/v1/me/users/{principal}/role
func (h *ProfileHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4<<10)

	var req AssignRoleRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	role, _ := domain.ParseRole(req.Role)
	target := pathParam(r, "principal")

	if err := h.roles.AssignRole(r.Context(), middleware.PrincipalFromContext(r.Context()), target, role); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"principal": target, "role": string(role)})
}
