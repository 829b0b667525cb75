package repository

import (
	"context"

	"github.com/Neo52000/ma-papeterie-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository is the read/write contract this subsystem holds against
// the catalog store: pricing inputs are read, and only the two price columns
// are ever written. Product rows are never created or deleted here.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// ListEligible returns active products with a positive price_ht,
	// optionally restricted to one category.
	ListEligible(ctx context.Context, category *string) ([]model.Product, error)
	// UpdatePricesTx writes price_ht/price_ttc inside the caller's transaction.
	UpdatePricesTx(tx *gorm.DB, id uuid.UUID, priceHT, priceTTC interface{}) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) ListEligible(ctx context.Context, category *string) ([]model.Product, error) {
	q := r.db.WithContext(ctx).Where("is_active = true AND price_ht > 0")
	if category != nil && *category != "" {
		q = q.Where("category = ?", *category)
	}
	var products []model.Product
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) UpdatePricesTx(tx *gorm.DB, id uuid.UUID, priceHT, priceTTC interface{}) error {
	res := tx.Model(&model.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"price_ht":  priceHT,
		"price_ttc": priceTTC,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) DB() *gorm.DB { return r.db }
