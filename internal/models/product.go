package models

import "strings"

// Product represents a product record in the catalog.
type Product struct {
	ID          int     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"type:varchar(255)"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Description string  `json:"description" gorm:"type:text"`
	Category    *string `json:"category" gorm:"type:varchar(255)"`
	CreatedDate *Date   `json:"createdDate"`
	UpdatedDate *Date   `json:"updatedDate"`
	InStock     bool    `json:"inStock"`
}

// TableName overrides the table name used by GORM.
func (Product) TableName() string {
	return "product_tbl"
}

// StockValue returns the value of the stock held for this product (price * quantity).
func (p *Product) StockValue() float64 {
	return p.Price * float64(p.Quantity)
}

// IsInCategory reports whether the product belongs to category, ignoring case.
// A product without a category never matches.
func (p *Product) IsInCategory(category string) bool {
	return p.Category != nil && strings.EqualFold(*p.Category, category)
}

// MarkOutOfStock zeroes the quantity and clears the in-stock flag.
func (p *Product) MarkOutOfStock() {
	p.Quantity = 0
	p.InStock = false
}

// UpdateDetails overwrites the editable details and stamps the update date.
func (p *Product) UpdateDetails(name string, price float64, description string, category *string, today Date) {
	p.Name = name
	p.Price = price
	p.Description = description
	p.Category = category
	p.UpdatedDate = &today
}
