package repositories

import (
	"fmt"
	"time"

	"productapi/internal/models"

	"gorm.io/gorm"
)

const productsTable = "products"

// productRecord is the row layout of the products table.
type productRecord struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string    `gorm:"column:name;type:varchar(100);not null"`
	Price        float64   `gorm:"column:price;not null"`
	Availability bool      `gorm:"column:availability;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (productRecord) TableName() string {
	return productsTable
}

func newProductRecord(p *models.Product) productRecord {
	return productRecord{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price,
		Availability: p.Availability,
	}
}

func (r productRecord) toModel() models.Product {
	return models.Product{
		ID:           r.ID,
		Name:         r.Name,
		Price:        r.Price,
		Availability: r.Availability,
	}
}

// AutoMigrate creates or updates the products table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&productRecord{}); err != nil {
		return fmt.Errorf("failed to migrate %s table: %w", productsTable, err)
	}
	return nil
}

// ResetSchema drops the products table and creates it again, discarding all rows.
func ResetSchema(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&productRecord{}); err != nil {
		return fmt.Errorf("failed to drop %s table: %w", productsTable, err)
	}
	return AutoMigrate(db)
}
