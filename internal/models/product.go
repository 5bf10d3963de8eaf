package models

// Product represents a product in the catalog.
// Persistence concerns live in the repositories package; this type only
// describes what the API reads and writes.
type Product struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Availability bool    `json:"availability"`
}

// ProductInput holds the fields accepted when creating or replacing a product.
type ProductInput struct {
	Name  string
	Price float64
}
