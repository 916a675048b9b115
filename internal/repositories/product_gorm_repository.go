package repositories

import (
	"errors"
	"fmt"

	"catalog/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Save inserts the product when it has no ID yet and updates every column otherwise.
// The assigned ID is written back into product.
func (r *GORMProductRepository) Save(product *models.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// SaveAll stores the whole batch in a single statement. IDs are written back in input order.
func (r *GORMProductRepository) SaveAll(products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	if err := r.db.Save(&products).Error; err != nil {
		return fmt.Errorf("failed to save %d products: %w", len(products), err)
	}
	return nil
}

// FindAll retrieves all products from the database.
func (r *GORMProductRepository) FindAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a single product by its ID.
func (r *GORMProductRepository) FindByID(id int) (*models.Product, bool, error) {
	return r.first("id = ?", id)
}

// FindByName retrieves a single product whose name matches exactly.
func (r *GORMProductRepository) FindByName(name string) (*models.Product, bool, error) {
	return r.first("name = ?", name)
}

func (r *GORMProductRepository) first(query string, arg any) (*models.Product, bool, error) {
	var product models.Product
	if err := r.db.Where(query, arg).Order("id").Take(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get product (%s %v): %w", query, arg, err)
	}
	return &product, true, nil
}

// DeleteByID deletes a product by its ID. Deleting a missing ID is not an error.
func (r *GORMProductRepository) DeleteByID(id int) error {
	if err := r.db.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}
