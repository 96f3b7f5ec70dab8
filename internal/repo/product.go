package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/plant_shop/internal/models"
)

// ProductsByIDs loads products with their images in two queries.
func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.DB.WithContext(ctx).
		Preload("Images", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormRepo) ProductExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) UpdateProductPrices(ctx context.Context, id uuid.UUID, cutting, seedling any) error {
	return r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).
		Updates(map[string]any{"cutting_price": cutting, "seedling_price": seedling}).Error
}
