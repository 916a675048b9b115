package repositories

import (
	"sort"
	"sync"

	"catalog/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// IDs are assigned from a counter, mirroring an auto-increment column.
type MemoryProductRepository struct {
	products map[int]models.Product
	nextID   int
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[int]models.Product),
		nextID:   1,
	}
}

// Save inserts or replaces a product.
func (r *MemoryProductRepository) Save(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store(product)
	return nil
}

// SaveAll inserts or replaces every product of the batch under one lock.
func (r *MemoryProductRepository) SaveAll(products []models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range products {
		r.store(&products[i])
	}
	return nil
}

func (r *MemoryProductRepository) store(product *models.Product) {
	if product.ID == 0 {
		product.ID = r.nextID
	}
	if product.ID >= r.nextID {
		r.nextID = product.ID + 1
	}
	r.products[product.ID] = *product
}

// FindAll returns all products ordered by ID.
func (r *MemoryProductRepository) FindAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool { return productList[i].ID < productList[j].ID })
	return productList, nil
}

// FindByID returns a product by its ID.
func (r *MemoryProductRepository) FindByID(id int) (*models.Product, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, false, nil
	}
	return &product, true, nil
}

// FindByName returns the lowest-ID product with exactly the given name.
func (r *MemoryProductRepository) FindByName(name string) (*models.Product, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var match *models.Product
	for _, p := range r.products {
		if p.Name != name {
			continue
		}
		if match == nil || p.ID < match.ID {
			p := p
			match = &p
		}
	}
	return match, match != nil, nil
}

// DeleteByID removes a product by its ID.
func (r *MemoryProductRepository) DeleteByID(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.products, id)
	return nil
}
