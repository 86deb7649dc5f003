package http

import (
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/internal/service"
	"github.com/caffeinepub/saree-catalogue-portal/internal/storage"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/httputil"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/middleware"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/pagination"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/validator"
)

// ProductHandler handles the owner's product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// ColorRequest is one fabric colour of a product.
type ColorRequest struct {
	Name string `json:"name" validate:"required,max=50"`
	Hex  string `json:"hex" validate:"required,color_hex"`
}

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Name              string         `json:"name" validate:"required,min=1,max=200"`
	Description       string         `json:"description" validate:"max=5000"`
	RetailPrice       int64          `json:"retail_price" validate:"gte=0"`
	WholesalePrice    int64          `json:"wholesale_price" validate:"gte=0"`
	DirectPrice       int64          `json:"direct_price" validate:"gte=0"`
	AvailableQuantity int64          `json:"available_quantity" validate:"gte=0"`
	MadeToOrder       bool           `json:"made_to_order"`
	Colors            []ColorRequest `json:"colors" validate:"max=20,dive"`
	Visibility        string         `json:"visibility" validate:"omitempty,visibility"`
	Images            []string       `json:"images" validate:"max=10,dive,url"`
}

// UpdateProductRequest is the JSON request body for updating a product. All
// fields are optional.
type UpdateProductRequest struct {
	Name              *string        `json:"name" validate:"omitempty,min=1,max=200"`
	Description       *string        `json:"description" validate:"omitempty,max=5000"`
	RetailPrice       *int64         `json:"retail_price" validate:"omitempty,gte=0"`
	WholesalePrice    *int64         `json:"wholesale_price" validate:"omitempty,gte=0"`
	DirectPrice       *int64         `json:"direct_price" validate:"omitempty,gte=0"`
	AvailableQuantity *int64         `json:"available_quantity" validate:"omitempty,gte=0"`
	MadeToOrder       *bool          `json:"made_to_order"`
	Colors            []ColorRequest `json:"colors" validate:"omitempty,max=20,dive"`
	Visibility        *string        `json:"visibility" validate:"omitempty,visibility"`
	Images            []string       `json:"images" validate:"omitempty,max=10,dive,url"`
}

// UpdateQuantityRequest is the JSON request body for setting stock.
type UpdateQuantityRequest struct {
	Quantity *int64 `json:"quantity" validate:"required,gte=0"`
}

// --- Handlers ---

// ListProducts handles GET /api/v1/me/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)

	res, err := h.service.ListProducts(r.Context(), middleware.PrincipalFromContext(r.Context()), page)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// GetProduct handles GET /api/v1/me/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUint64(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/me/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Prices: domain.PriceSet{
			Retail:    req.RetailPrice,
			Wholesale: req.WholesalePrice,
			Direct:    req.DirectPrice,
		},
		AvailableQuantity: req.AvailableQuantity,
		MadeToOrder:       req.MadeToOrder,
		Colors:            colors(req.Colors),
		Images:            req.Images,
	}
	if req.Visibility != "" {
		input.Visibility, _ = domain.ParseVisibility(req.Visibility)
	}

	product, err := h.service.CreateProduct(r.Context(), middleware.PrincipalFromContext(r.Context()), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/me/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUint64(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.UpdateProductInput{
		Name:              req.Name,
		Description:       req.Description,
		RetailPrice:       req.RetailPrice,
		WholesalePrice:    req.WholesalePrice,
		DirectPrice:       req.DirectPrice,
		AvailableQuantity: req.AvailableQuantity,
		MadeToOrder:       req.MadeToOrder,
		Colors:            colors(req.Colors),
		Images:            req.Images,
	}
	if req.Visibility != nil {
		v, _ := domain.ParseVisibility(*req.Visibility)
		input.Visibility = &v
	}

	product, err := h.service.UpdateProduct(r.Context(), middleware.PrincipalFromContext(r.Context()), id, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/me/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUint64(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), middleware.PrincipalFromContext(r.Context()), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"message": "product deleted successfully"})
}

// ToggleOutOfStock handles POST /api/v1/me/products/{id}/toggle-stock
func (h *ProductHandler) ToggleOutOfStock(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUint64(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.ToggleOutOfStock(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, product)
}

// UpdateQuantity handles PUT /api/v1/me/products/{id}/quantity
func (h *ProductHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUint64(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 4<<10)

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.UpdateQuantity(r.Context(), middleware.PrincipalFromContext(r.Context()), id, *req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, product)
}

// UploadImage handles POST /api/v1/me/products/{id}/images. The multipart
// field "image" holds the file; the response carries its URL.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUint64(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	owner := middleware.PrincipalFromContext(r.Context())

	if _, err := h.service.GetProduct(r.Context(), owner, id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	upload, ok := readUpload(w, r, "image")
	if !ok {
		return
	}
	defer upload.file.Close()

	res, err := h.service.UploadImage(r.Context(), owner, upload.contentType, upload.size, upload.file)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, res)
}

func colors(in []ColorRequest) []domain.Color {
	if in == nil {
		return nil
	}
	out := make([]domain.Color, len(in))
	for i, c := range in {
		out[i] = domain.Color{Name: c.Name, Hex: c.Hex}
	}
	return out
}

type fileUpload struct {
	file        multipart.File
	contentType string
	size        int64
}

// readUpload extracts one multipart file. On failure it writes a 400 and
// returns false.
func readUpload(w http.ResponseWriter, r *http.Request, field string) (*fileUpload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadSize+64<<10)
	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("upload must be a multipart form of at most 5 MiB"), nil)
		return nil, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("multipart field "+field+" is required"), nil)
		return nil, false
	}
	return &fileUpload{file: file, contentType: header.Header.Get("Content-Type"), size: header.Size}, true
}
