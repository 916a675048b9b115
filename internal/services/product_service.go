package services

import (
	"encoding/json"
	"fmt"
	"time"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UncategorizedKey is the summary bucket for products without a category.
const UncategorizedKey = "uncategorized"

// EventPublisher publishes an encoded message to an exchange.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// Option configures a ProductService.
type Option func(*ProductService)

// WithPublisher enables product events on the given exchange.
func WithPublisher(publisher EventPublisher, exchange string) Option {
	return func(s *ProductService) {
		s.publisher = publisher
		s.exchange = exchange
	}
}

// WithLogger sets the logger used by the service.
func WithLogger(logger *zap.Logger) Option {
	return func(s *ProductService) {
		s.logger = logger
	}
}

// WithClock replaces the time source used for date stamping.
func WithClock(now func() time.Time) Option {
	return func(s *ProductService) {
		s.now = now
	}
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	exchange  string
	logger    *zap.Logger
	now       func() time.Time
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, opts ...Option) *ProductService {
	s := &ProductService{
		repo:   repo,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ProductService) today() models.Date {
	return models.NewDate(s.now())
}

func (s *ProductService) stamp(product *models.Product, today models.Date) {
	if product.CreatedDate == nil {
		created := today
		product.CreatedDate = &created
	}
	updated := today
	product.UpdatedDate = &updated
}

// SaveProduct stamps the creation and update dates and stores the product.
func (s *ProductService) SaveProduct(product *models.Product) (*models.Product, error) {
	s.stamp(product, s.today())
	if err := s.repo.Save(product); err != nil {
		return nil, err
	}
	s.logger.Debug("product saved", zap.Int("id", product.ID), zap.String("name", product.Name))
	s.emit(models.EventProductCreated, product.ID, product)
	return product, nil
}

// SaveProducts stamps every product of the batch and stores them in one call.
func (s *ProductService) SaveProducts(products []models.Product) ([]models.Product, error) {
	today := s.today()
	for i := range products {
		s.stamp(&products[i], today)
	}
	if err := s.repo.SaveAll(products); err != nil {
		return nil, err
	}
	s.logger.Debug("product batch saved", zap.Int("count", len(products)))
	for i := range products {
		s.emit(models.EventProductCreated, products[i].ID, &products[i])
	}
	return products, nil
}

// GetProducts retrieves all products.
func (s *ProductService) GetProducts() ([]models.Product, error) {
	return s.repo.FindAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id int) (*models.Product, error) {
	product, found, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("product with ID %d: %w", id, ErrProductNotFound)
	}
	return product, nil
}

// GetProductByName retrieves a single product by its exact name.
func (s *ProductService) GetProductByName(name string) (*models.Product, error) {
	product, found, err := s.repo.FindByName(name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("product with name %q: %w", name, ErrProductNotFound)
	}
	return product, nil
}

// UpdateProduct copies name, price, description and category onto the stored
// product identified by product.ID. Quantity, stock flag and creation date are kept.
func (s *ProductService) UpdateProduct(product *models.Product) (*models.Product, error) {
	existing, err := s.GetProductByID(product.ID)
	if err != nil {
		return nil, err
	}
	existing.UpdateDetails(product.Name, product.Price, product.Description, product.Category, s.today())
	if err := s.repo.Save(existing); err != nil {
		return nil, err
	}
	s.logger.Debug("product updated", zap.Int("id", existing.ID))
	s.emit(models.EventProductUpdated, existing.ID, existing)
	return existing, nil
}

// DeleteProduct deletes a product by its ID and returns a confirmation message.
// Deleting an ID that does not exist is not an error.
func (s *ProductService) DeleteProduct(id int) (string, error) {
	if err := s.repo.DeleteByID(id); err != nil {
		return "", err
	}
	s.logger.Debug("product deleted", zap.Int("id", id))
	s.emit(models.EventProductDeleted, id, nil)
	return fmt.Sprintf("Product with ID %d deleted successfully.", id), nil
}

// GetProductsByPriceRange returns the products priced within [minPrice, maxPrice].
func (s *ProductService) GetProductsByPriceRange(minPrice, maxPrice float64) ([]models.Product, error) {
	return s.filter(func(p *models.Product) bool {
		return p.Price >= minPrice && p.Price <= maxPrice
	})
}

// GetProductsByCategory returns the products whose category matches, ignoring case.
func (s *ProductService) GetProductsByCategory(category string) ([]models.Product, error) {
	return s.filter(func(p *models.Product) bool {
		return p.IsInCategory(category)
	})
}

func (s *ProductService) filter(keep func(*models.Product) bool) ([]models.Product, error) {
	products, err := s.repo.FindAll()
	if err != nil {
		return nil, err
	}
	matched := make([]models.Product, 0, len(products))
	for i := range products {
		if keep(&products[i]) {
			matched = append(matched, products[i])
		}
	}
	return matched, nil
}

// MarkProductAsOutOfStock zeroes the quantity of a product and flags it as out of stock.
func (s *ProductService) MarkProductAsOutOfStock(id int) (*models.Product, error) {
	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}
	product.MarkOutOfStock()
	if err := s.repo.Save(product); err != nil {
		return nil, err
	}
	s.logger.Debug("product marked out of stock", zap.Int("id", product.ID))
	s.emit(models.EventProductOutOfStock, product.ID, product)
	return product, nil
}

// GetProductSummaryByCategory counts products per category.
// Products without a category are counted under UncategorizedKey.
func (s *ProductService) GetProductSummaryByCategory() (map[string]int64, error) {
	products, err := s.repo.FindAll()
	if err != nil {
		return nil, err
	}
	summary := make(map[string]int64)
	for _, p := range products {
		key := UncategorizedKey
		if p.Category != nil {
			key = *p.Category
		}
		summary[key]++
	}
	return summary, nil
}

// GetTotalStockValue sums price * quantity over all products.
func (s *ProductService) GetTotalStockValue() (float64, error) {
	products, err := s.repo.FindAll()
	if err != nil {
		return 0, err
	}
	var total float64
	for i := range products {
		total += products[i].StockValue()
	}
	return total, nil
}

// emit publishes a product event. Failures are logged and never returned to the caller.
func (s *ProductService) emit(eventType string, productID int, product *models.Product) {
	if s.publisher == nil {
		return
	}
	event := models.ProductEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		ProductID:  productID,
		Product:    product,
		OccurredAt: s.now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("failed to marshal product event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(s.exchange, eventType, body); err != nil {
		s.logger.Warn("failed to publish product event",
			zap.String("type", eventType),
			zap.Int("product_id", productID),
			zap.Error(err),
		)
	}
}
