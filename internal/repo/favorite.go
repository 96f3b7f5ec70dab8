package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/plant_shop/internal/models"
)

func (r *GormRepo) FavoriteExists(ctx context.Context, owner models.Owner, productID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Favorite{}).
		Scopes(ownedBy(owner)).Where("product_id = ?", productID).Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) CreateFavorite(ctx context.Context, f *models.Favorite) error {
	return r.DB.WithContext(ctx).Create(f).Error
}

func (r *GormRepo) DeleteFavorite(ctx context.Context, owner models.Owner, productID uuid.UUID) (int64, error) {
	res := r.DB.WithContext(ctx).Scopes(ownedBy(owner)).Where("product_id = ?", productID).Delete(&models.Favorite{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) ListFavorites(ctx context.Context, owner models.Owner, offset, limit int) ([]models.Favorite, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Favorite{}).Scopes(ownedBy(owner))

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Favorite
	if err := q.Order("created_at DESC, id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *GormRepo) AllFavorites(ctx context.Context, owner models.Owner) ([]models.Favorite, error) {
	var items []models.Favorite
	if err := r.DB.WithContext(ctx).Scopes(ownedBy(owner)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) DeleteAllFavorites(ctx context.Context, owner models.Owner) error {
	return r.DB.WithContext(ctx).Scopes(ownedBy(owner)).Delete(&models.Favorite{}).Error
}

func (r *GormRepo) ReownFavorite(ctx context.Context, id uuid.UUID, owner models.Owner) error {
	return r.DB.WithContext(ctx).Model(&models.Favorite{}).Where("id = ?", id).
		Updates(map[string]any{"user_id": owner.UserID, "guest_id": owner.GuestID}).Error
}
