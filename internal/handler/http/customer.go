package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/internal/service"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/httputil"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/middleware"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/validator"
)

// CustomerHandler handles the owner's customer book.
type CustomerHandler struct {
	service *service.CustomerService
	logger  *slog.Logger
}

// NewCustomerHandler creates a new customer HTTP handler.
func NewCustomerHandler(svc *service.CustomerService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: svc,
		logger:  logger,
	}
}

// CustomerRequest is the JSON request body for saving a customer.
type CustomerRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	ContactNumber string  `json:"contact_number" validate:"required,max=20"`
	CustomerType  string  `json:"customer_type" validate:"required,customer_type"`
	BusinessName  *string `json:"business_name" validate:"omitempty,max=200"`
	AddressLine1  *string `json:"address_line1" validate:"omitempty,max=300"`
	City          *string `json:"city" validate:"omitempty,max=100"`
	State         *string `json:"state" validate:"omitempty,max=100"`
	PostalCode    *string `json:"postal_code" validate:"omitempty,max=12"`
}

func (req *CustomerRequest) input(id string) *service.SaveCustomerInput {
	ct, _ := domain.ParseCustomerTypeStrict(req.CustomerType)
	return &service.SaveCustomerInput{
		ID:            id,
		Name:          req.Name,
		ContactNumber: req.ContactNumber,
		CustomerType:  ct,
		BusinessName:  req.BusinessName,
		AddressLine1:  req.AddressLine1,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
	}
}

// ListCustomers handles GET /api/v1/me/customers
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, customers)
}

// GetCustomer handles GET /api/v1/me/customers/{id}
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	customer, err := h.service.GetCustomer(r.Context(), middleware.PrincipalFromContext(r.Context()), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, customer)
}

// CreateCustomer handles POST /api/v1/me/customers
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "", http.StatusCreated)
}

// SaveCustomer handles PUT /api/v1/me/customers/{id}, creating the customer
// under that id if it does not exist.
func (h *CustomerHandler) SaveCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.save(w, r, id.String(), http.StatusOK)
}

// DeleteCustomer handles DELETE /api/v1/me/customers/{id}
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteCustomer(r.Context(), middleware.PrincipalFromContext(r.Context()), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"message": "customer deleted successfully"})
}

func (h *CustomerHandler) save(w http.ResponseWriter, r *http.Request, id string, status int) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	var req CustomerRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	customer, err := h.service.SaveCustomer(r.Context(), middleware.PrincipalFromContext(r.Context()), req.input(id))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, status, customer)
}
