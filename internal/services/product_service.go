package services

import (
	"context"
	"fmt"
	"time"

	"productapi/internal/models"
	"productapi/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EventPublisher delivers product events to a message broker.
type EventPublisher interface {
	Publish(messageType string, payload interface{}) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	now       func() time.Time
}

// NewProductService creates a new ProductService. publisher may be nil, in
// which case no events are sent.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// GetAllProducts retrieves all products, newest first.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct stores a new, available product.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	product := &models.Product{
		Name:         input.Name,
		Price:        input.Price,
		Availability: true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.publish(models.EventProductCreated, *product)
	return product, nil
}

// UpdateProduct replaces the name and price of an existing product.
// Availability is left untouched.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, input models.ProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Price = input.Price
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.publish(models.EventProductUpdated, *product)
	return product, nil
}

// ToggleAvailability flips the availability flag of a product.
func (s *ProductService) ToggleAvailability(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Availability = !product.Availability
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.publish(models.EventProductAvailabilityToggled, *product)
	return product, nil
}

// DeleteProduct permanently removes a product.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, product); err != nil {
		return err
	}

	s.publish(models.EventProductDeleted, *product)
	return nil
}

// Ping reports whether the underlying store is reachable.
func (s *ProductService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	return nil
}

// publish sends an event without affecting the outcome of the operation.
func (s *ProductService) publish(eventType string, product models.Product) {
	if s.publisher == nil {
		return
	}

	event := models.ProductEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Product:    product,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(eventType, event); err != nil {
		log.Warn().Err(err).Str("event", eventType).Int64("product_id", product.ID).Msg("Failed to publish product event")
		return
	}
	log.Debug().Str("event", eventType).Int64("product_id", product.ID).Msg("Published product event")
}
