package repositories

import (
	"catalog/internal/models"
)

// ProductRepository defines the storage operations available for product records.
// FindByID and FindByName report a missing record through found=false rather than an error.
type ProductRepository interface {
	Save(product *models.Product) error
	SaveAll(products []models.Product) error
	FindAll() ([]models.Product, error)
	FindByID(id int) (product *models.Product, found bool, err error)
	FindByName(name string) (product *models.Product, found bool, err error)
	DeleteByID(id int) error
}
