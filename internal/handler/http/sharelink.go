package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/internal/service"
	"github.com/caffeinepub/saree-catalogue-portal/internal/sharelink"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/httputil"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/middleware"
)

// ShareLinkHandler serves the owner's share links and catalog preview.
type ShareLinkHandler struct {
	service *service.ShareLinkService
	logger  *slog.Logger
}

// NewShareLinkHandler creates a new share-link HTTP handler.
func NewShareLinkHandler(svc *service.ShareLinkService, logger *slog.Logger) *ShareLinkHandler {
	return &ShareLinkHandler{
		service: svc,
		logger:  logger,
	}
}

// ShareLinksResponse lists one link per customer type.
type ShareLinksResponse struct {
	Weaver    string          `json:"weaver"`
	ProductID *uint64         `json:"product_id,omitempty"`
	Links     sharelink.Links `json:"links"`
}

// CatalogLinks handles GET /api/v1/me/share-links
func (h *ShareLinkHandler) CatalogLinks(w http.ResponseWriter, r *http.Request) {
	owner := middleware.PrincipalFromContext(r.Context())
	httputil.WriteData(w, http.StatusOK, ShareLinksResponse{
		Weaver: owner,
		Links:  h.service.CatalogLinks(owner),
	})
}

// ProductLinks handles GET /api/v1/me/products/{id}/share-links
func (h *ShareLinkHandler) ProductLinks(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUint64(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	owner := middleware.PrincipalFromContext(r.Context())

	links, err := h.service.ProductLinks(r.Context(), owner, id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, ShareLinksResponse{Weaver: owner, ProductID: &id, Links: links})
}

// PreviewCatalog handles GET /api/v1/me/catalog/{customerType}. Unlike the
// public route, an unknown customer type is rejected.
func (h *ShareLinkHandler) PreviewCatalog(w http.ResponseWriter, r *http.Request) {
	ct, err := domain.ParseCustomerTypeStrict(pathParam(r, "customerType"))
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("customer type must be one of: retail, wholesale, direct"), h.logger)
		return
	}

	view, err := h.service.PreviewCatalog(r.Context(), middleware.PrincipalFromContext(r.Context()), ct)
	if err != nil {
		if errors.Is(err, service.ErrFetchFailed) {
			err = apperrors.Upstream(err)
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}
