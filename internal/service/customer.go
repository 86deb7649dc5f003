package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/internal/repository"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
)

var contactNumberRegexp = regexp.MustCompile(`^\+?[0-9][0-9 -]{5,18}[0-9]$`)

// CustomerService manages a weaver's customer book.
type CustomerService struct {
	repo   repository.CustomerRepository
	logger *slog.Logger
}

// NewCustomerService creates a new customer service.
func NewCustomerService(repo repository.CustomerRepository, logger *slog.Logger) *CustomerService {
	return &CustomerService{
		repo:   repo,
		logger: logger,
	}
}

// SaveCustomerInput holds a full customer record. An empty ID creates a new
// customer.
type SaveCustomerInput struct {
	ID            string
	Name          string
	ContactNumber string
	CustomerType  domain.CustomerType
	BusinessName  *string
	AddressLine1  *string
	City          *string
	State         *string
	PostalCode    *string
}

// SaveCustomer adds or replaces a customer.
func (s *CustomerService) SaveCustomer(ctx context.Context, owner string, input *SaveCustomerInput) (*domain.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("customer name is required")
	}
	if !contactNumberRegexp.MatchString(input.ContactNumber) {
		return nil, apperrors.InvalidInput("contact number must be 7 to 20 digits")
	}

	id := input.ID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.InvalidInput("customer id must be a UUID")
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:            id,
		Owner:         owner,
		Name:          name,
		ContactNumber: input.ContactNumber,
		CustomerType:  input.CustomerType,
		BusinessName:  blankToNil(input.BusinessName),
		AddressLine1:  blankToNil(input.AddressLine1),
		City:          blankToNil(input.City),
		State:         blankToNil(input.State),
		PostalCode:    blankToNil(input.PostalCode),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Upsert(ctx, customer); err != nil {
		return nil, fmt.Errorf("save customer: %w", err)
	}

	s.logger.InfoContext(ctx, "customer saved",
		slog.String("customer_id", customer.ID),
		slog.String("customer_type", customer.CustomerType.Token()),
	)
	return customer, nil
}

// GetCustomer returns one customer of the owner.
func (s *CustomerService) GetCustomer(ctx context.Context, owner, id string) (*domain.Customer, error) {
	customer, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return customer, nil
}

// ListCustomers returns every customer of the owner ordered by name.
func (s *CustomerService) ListCustomers(ctx context.Context, owner string) ([]domain.Customer, error) {
	customers, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	if customers == nil {
		customers = []domain.Customer{}
	}
	return customers, nil
}

// DeleteCustomer removes a customer.
func (s *CustomerService) DeleteCustomer(ctx context.Context, owner, id string) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	s.logger.InfoContext(ctx, "customer deleted", slog.String("customer_id", id))
	return nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
