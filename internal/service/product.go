package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/internal/repository"
	"github.com/caffeinepub/saree-catalogue-portal/internal/storage"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/pagination"
)

// CacheInvalidator drops cached public reads of one weaver.
type CacheInvalidator interface {
	InvalidateOwner(ctx context.Context, owner string) (int, error)
}

// ProductEvents publishes product changes.
type ProductEvents interface {
	PublishProductCreated(ctx context.Context, p *domain.Product) error
	PublishProductUpdated(ctx context.Context, p *domain.Product) error
	PublishProductStockChanged(ctx context.Context, p *domain.Product) error
	PublishProductDeleted(ctx context.Context, owner string, id uint64) error
}

// ProductService implements the owner's catalog management. Successful
// mutations invalidate the owner's cached public reads before returning and
// then publish an event; failed mutations do neither.
type ProductService struct {
	repo    repository.ProductRepository
	cache   CacheInvalidator
	events  ProductEvents
	storage storage.Storage
	logger  *slog.Logger
}

// NewProductService creates a new product service. cache and events may be
// nil when the cache or Kafka is disabled.
func NewProductService(repo repository.ProductRepository, cache CacheInvalidator, events ProductEvents, store storage.Storage, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:    repo,
		cache:   cache,
		events:  events,
		storage: store,
		logger:  logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name              string
	Description       string
	Prices            domain.PriceSet
	AvailableQuantity int64
	MadeToOrder       bool
	Colors            []domain.Color
	Visibility        domain.Visibility
	Images            []string
}

// UpdateProductInput holds the fields to change. Nil fields are kept.
type UpdateProductInput struct {
	Name              *string
	Description       *string
	RetailPrice       *int64
	WholesalePrice    *int64
	DirectPrice       *int64
	AvailableQuantity *int64
	MadeToOrder       *bool
	Colors            []domain.Color
	Visibility        *domain.Visibility
	Images            []string
}

// CreateProduct adds a product to the owner's catalog.
func (s *ProductService) CreateProduct(ctx context.Context, owner string, input *CreateProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	product := &domain.Product{
		Owner:             owner,
		Name:              strings.TrimSpace(input.Name),
		Description:       input.Description,
		Prices:            input.Prices,
		AvailableQuantity: input.AvailableQuantity,
		MadeToOrder:       input.MadeToOrder,
		Colors:            input.Colors,
		Visibility:        input.Visibility,
		Images:            input.Images,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.invalidate(ctx, owner)
	s.publish(ctx, "product.created", product.ID, func() error {
		return s.events.PublishProductCreated(ctx, product)
	})

	s.logger.InfoContext(ctx, "product created",
		slog.Uint64("product_id", product.ID),
		slog.String("weaver_id", owner),
	)
	return product, nil
}

// GetProduct returns one of the owner's products regardless of visibility.
func (s *ProductService) GetProduct(ctx context.Context, owner string, id uint64) (*domain.Product, error) {
	product, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// ListProducts returns a page of the owner's products.
func (s *ProductService) ListProducts(ctx context.Context, owner string, page pagination.Params) (pagination.Result[domain.Product], error) {
	products, total, err := s.repo.ListByOwner(ctx, owner, page)
	if err != nil {
		return pagination.Result[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}
	return pagination.NewResult(products, total, page), nil
}

// UpdateProduct applies input to an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, owner string, id uint64, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.RetailPrice != nil {
		product.Prices.Retail = *input.RetailPrice
	}
	if input.WholesalePrice != nil {
		product.Prices.Wholesale = *input.WholesalePrice
	}
	if input.DirectPrice != nil {
		product.Prices.Direct = *input.DirectPrice
	}
	if input.AvailableQuantity != nil {
		product.AvailableQuantity = *input.AvailableQuantity
	}
	if input.MadeToOrder != nil {
		product.MadeToOrder = *input.MadeToOrder
	}
	if input.Colors != nil {
		product.Colors = input.Colors
	}
	if input.Visibility != nil {
		product.Visibility = *input.Visibility
	}
	if input.Images != nil {
		product.Images = input.Images
	}
	product.UpdatedAt = time.Now().UTC()

	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidate(ctx, owner)
	s.publish(ctx, "product.updated", id, func() error {
		return s.events.PublishProductUpdated(ctx, product)
	})

	s.logger.InfoContext(ctx, "product updated",
		slog.Uint64("product_id", id),
		slog.String("weaver_id", owner),
	)
	return product, nil
}

// DeleteProduct removes a product from the owner's catalog.
func (s *ProductService) DeleteProduct(ctx context.Context, owner string, id uint64) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.invalidate(ctx, owner)
	s.publish(ctx, "product.deleted", id, func() error {
		return s.events.PublishProductDeleted(ctx, owner, id)
	})

	s.logger.InfoContext(ctx, "product deleted",
		slog.Uint64("product_id", id),
		slog.String("weaver_id", owner),
	)
	return nil
}

// ToggleOutOfStock marks a stocked product out of stock, or an out-of-stock
// product as having one piece.
func (s *ProductService) ToggleOutOfStock(ctx context.Context, owner string, id uint64) (*domain.Product, error) {
	product, err := s.repo.ToggleOutOfStock(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("toggle stock: %w", err)
	}
	s.stockChanged(ctx, product)
	return product, nil
}

// UpdateQuantity sets the available quantity.
func (s *ProductService) UpdateQuantity(ctx context.Context, owner string, id uint64, quantity int64) (*domain.Product, error) {
	if quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}
	product, err := s.repo.SetQuantity(ctx, owner, id, quantity)
	if err != nil {
		return nil, fmt.Errorf("set quantity: %w", err)
	}
	s.stockChanged(ctx, product)
	return product, nil
}

// UploadImage stores a product image and returns its URL. The URL is not
// attached to any product until the owner saves it.
func (s *ProductService) UploadImage(ctx context.Context, owner, contentType string, size int64, data io.Reader) (*storage.UploadResult, error) {
	return uploadImage(ctx, s.storage, storage.ProductImageKey, owner, contentType, size, data)
}

func (s *ProductService) stockChanged(ctx context.Context, product *domain.Product) {
	s.invalidate(ctx, product.Owner)
	s.publish(ctx, "product.stock_changed", product.ID, func() error {
		return s.events.PublishProductStockChanged(ctx, product)
	})
	s.logger.InfoContext(ctx, "product stock changed",
		slog.Uint64("product_id", product.ID),
		slog.Int64("available_quantity", product.AvailableQuantity),
	)
}

func (s *ProductService) invalidate(ctx context.Context, owner string) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.InvalidateOwner(ctx, owner); err != nil {
		s.logger.ErrorContext(ctx, "failed to invalidate catalog cache",
			slog.String("weaver_id", owner),
			slog.String("error", err.Error()),
		)
	}
}

func (s *ProductService) publish(ctx context.Context, eventType string, id uint64, fn func() error) {
	if s.events == nil {
		return
	}
	if err := fn(); err != nil {
		// Do not fail the operation if event publishing fails.
		s.logger.ErrorContext(ctx, "failed to publish "+eventType+" event",
			slog.Uint64("product_id", id),
			slog.String("error", err.Error()),
		)
	}
}

func validateProduct(p *domain.Product) error {
	if p.Name == "" {
		return apperrors.InvalidInput("product name is required")
	}
	if p.Prices.Retail < 0 || p.Prices.Wholesale < 0 || p.Prices.Direct < 0 {
		return apperrors.InvalidInput("prices must not be negative")
	}
	if p.AvailableQuantity < 0 {
		return apperrors.InvalidInput("available quantity must not be negative")
	}
	for i, c := range p.Colors {
		if strings.TrimSpace(c.Name) == "" {
			return apperrors.InvalidInput("color " + strconv.Itoa(i) + " has no name")
		}
		if !domain.ValidHex(c.Hex) {
			return apperrors.InvalidInput("color " + strconv.Quote(c.Name) + " must be a #rrggbb hex value")
		}
	}
	return nil
}

func uploadImage(ctx context.Context, store storage.Storage, keyFn func(owner, ext string) string, owner, contentType string, size int64, data io.Reader) (*storage.UploadResult, error) {
	if store == nil {
		return nil, apperrors.Wrap(apperrors.ErrServiceUnavail, "image storage is not configured")
	}
	ext, err := storage.ImageExtension(contentType)
	if err != nil {
		return nil, apperrors.InvalidInput("only jpeg, png, webp and gif images are accepted")
	}
	if size > storage.MaxUploadSize {
		return nil, apperrors.InvalidInput(fmt.Sprintf("image must be at most %d bytes", storage.MaxUploadSize))
	}

	res, err := store.Upload(ctx, &storage.UploadInput{
		Key:         keyFn(owner, ext),
		ContentType: contentType,
		Size:        size,
		Data:        data,
	})
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	return res, nil
}
