package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ecommerce-api/models"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindAll(ctx context.Context, page, limit int) ([]models.Product, int64, error)
	// DecrementStock applies the conditional stock decrement for every order
	// line item and returns how many actually applied. An item whose product
	// lacks sufficient stock simply does not match the update condition; the
	// caller detects oversell by comparing the count to len(items).
	DecrementStock(ctx context.Context, items []models.OrderItem) (int64, error)
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) FindAll(ctx context.Context, page, limit int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// DecrementStock runs one conditional UPDATE per line item:
//
//	UPDATE products SET quantity = quantity - n, sold = sold + n
//	WHERE id = ? AND quantity >= n
//
// The quantity >= n guard rides on the database's row-level locking, so two
// concurrent orders against the same product can never both drive the stock
// below zero.
func (r *GormProductRepository) DecrementStock(ctx context.Context, items []models.OrderItem) (int64, error) {
	var applied int64
	for _, item := range items {
		result := r.db.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ? AND quantity >= ?", item.ProductID, item.Quantity).
			Updates(map[string]interface{}{
				"quantity": gorm.Expr("quantity - ?", item.Quantity),
				"sold":     gorm.Expr("sold + ?", item.Quantity),
			})
		if result.Error != nil {
			return applied, result.Error
		}
		applied += result.RowsAffected
	}
	return applied, nil
}
