package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/caffeinepub/saree-catalogue-portal/internal/service"
	"github.com/caffeinepub/saree-catalogue-portal/internal/sharelink"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/httputil"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/logger"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/validator"
)

// Error codes of the share-link taxonomy.
const (
	CodeInvalidCatalogLink = "INVALID_CATALOG_LINK"
	CodeInvalidProductLink = "INVALID_PRODUCT_LINK"
	CodeInvalidLink        = "INVALID_LINK"
)

// PublicHandler serves share-link views without authentication.
type PublicHandler struct {
	public     *service.PublicCatalogService
	shareLinks *service.ShareLinkService
	profiles   *service.ProfileService
	logger     *slog.Logger
}

// NewPublicHandler creates a new public HTTP handler.
func NewPublicHandler(public *service.PublicCatalogService, shareLinks *service.ShareLinkService, profiles *service.ProfileService, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{
		public:     public,
		shareLinks: shareLinks,
		profiles:   profiles,
		logger:     logger,
	}
}

// ResolveRequest is the JSON request body for resolving a share URL.
type ResolveRequest struct {
	URL string `json:"url" validate:"required,url,max=2048"`
}

// GetCatalog handles GET /api/v1/public/catalogs/{weaver}/{customerType}
func (h *PublicHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	route := h.public.Parser().ParseCatalogRoute(pathParam(r, "weaver"), pathParam(r, "customerType"))
	if !route.Valid() {
		httputil.WriteError(w, r, apperrors.InvalidLink(CodeInvalidCatalogLink, "invalid catalog link"), h.logger)
		return
	}

	view, err := h.shareLinks.CatalogView(r.Context(), route)
	if err != nil {
		httputil.WriteError(w, r, fetchError(err), h.logger)
		return
	}
	h.warnDefaulted(r, route)

	httputil.WriteData(w, http.StatusOK, view)
}

// GetProduct handles GET /api/v1/public/products/{weaver}/{productId}/{customerType}
func (h *PublicHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	route := h.public.Parser().ParseProductRoute(
		pathParam(r, "weaver"),
		pathParam(r, "productId"),
		pathParam(r, "customerType"),
	)
	if !route.Valid() {
		httputil.WriteError(w, r, apperrors.InvalidLink(CodeInvalidProductLink, "invalid product link"), h.logger)
		return
	}

	view, err := h.shareLinks.ProductView(r.Context(), route)
	if err != nil {
		httputil.WriteError(w, r, fetchError(err), h.logger)
		return
	}
	if view == nil {
		httputil.WriteError(w, r, apperrors.NotFound("product", pathParam(r, "productId")), h.logger)
		return
	}
	h.warnDefaulted(r, route)

	httputil.WriteData(w, http.StatusOK, view)
}

// GetWeaverProfile handles GET /api/v1/public/weavers/{weaver}/profile
func (h *PublicHandler) GetWeaverProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetPublicWeaverProfile(r.Context(), pathParam(r, "weaver"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, profile)
}

// Resolve handles POST /api/v1/resolve. The response always carries the
// visited states; invalid links and fetch failures also carry an error.
func (h *PublicHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 16<<10)

	var req ResolveRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	res := h.public.ResolveLink(r.Context(), req.URL)
	view := h.shareLinks.Render(res)

	switch res.State {
	case service.StateInvalid:
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Data:  view,
			Error: &httputil.ErrorResponse{Code: invalidCode(res), Message: res.Err.Error()},
		})
	case service.StateFetchFailed:
		upstream := apperrors.Upstream(res.Err)
		h.logger.WarnContext(r.Context(), "share link resolution failed", slog.String("error", res.Err.Error()))
		httputil.WriteJSON(w, upstream.Status, httputil.Response{
			Data: view,
			Error: &httputil.ErrorResponse{
				Code:      upstream.Code,
				Message:   upstream.Message,
				Retryable: true,
				RequestID: logger.CorrelationIDFromContext(r.Context()),
			},
		})
	default:
		if res.Route.Valid() {
			h.warnDefaulted(r, res.Route)
		}
		httputil.WriteData(w, http.StatusOK, view)
	}
}

func (h *PublicHandler) warnDefaulted(r *http.Request, route sharelink.Route) {
	if !route.CustomerType.Defaulted {
		return
	}
	logger.FromContext(r.Context()).WarnContext(r.Context(), "unknown customer type in share link, showing retail pricing",
		slog.String("weaver_id", route.Weaver),
		slog.String("customer_type", route.CustomerType.Raw),
	)
}

func invalidCode(res service.Resolution) string {
	switch {
	case errors.Is(res.Err, sharelink.ErrNotShareLink):
		return CodeInvalidLink
	case res.Route.Kind == sharelink.KindProduct:
		return CodeInvalidProductLink
	default:
		return CodeInvalidCatalogLink
	}
}

// fetchError maps a failed public read to the retryable upstream error.
func fetchError(err error) error {
	if errors.Is(err, service.ErrFetchFailed) {
		return apperrors.Upstream(err)
	}
	return err
}

// pathParam returns a route parameter unescaped exactly once. chi matches
// against the escaped path only when the request carries a RawPath.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if s, err := url.PathUnescape(v); err == nil {
		return s
	}
	return v
}
