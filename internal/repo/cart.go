package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/plant_shop/internal/models"
)

func (r *GormRepo) CartLines(ctx context.Context, owner models.Owner) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.DB.WithContext(ctx).Scopes(ownedBy(owner)).Order("created_at ASC, id ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// CartLinesForUpdate locks the owner's lines until the transaction ends.
func (r *GormRepo) CartLinesForUpdate(ctx context.Context, owner models.Owner) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.DB.WithContext(ctx).Clauses(forUpdate).Scopes(ownedBy(owner)).Order("created_at ASC, id ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// AddCartLine accumulates quantity on the (owner, product, variant) line or
// creates it in a single upsert. line is refreshed with the stored row.
func (r *GormRepo) AddCartLine(ctx context.Context, line *models.CartLine) error {
	owner := line.Owner()
	ownerCol := "user_id"
	if owner.IsGuest() {
		ownerCol = "guest_id"
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: ownerCol}, {Name: "product_id"}, {Name: "variant"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_lines.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).Create(line).Error
		if err != nil {
			return err
		}

		var stored models.CartLine
		if err := tx.Scopes(ownedBy(owner)).
			Where("product_id = ? AND variant = ?", line.ProductID, line.Variant).
			First(&stored).Error; err != nil {
			return err
		}
		*line = stored
		return nil
	})
}

func (r *GormRepo) CartLineByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	if err := r.DB.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id).First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *GormRepo) SetCartLineQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.DB.WithContext(ctx).Model(&models.CartLine{}).Where("id = ?", id).
		Updates(map[string]any{"quantity": quantity, "updated_at": r.DB.NowFunc()}).Error
}

func (r *GormRepo) DeleteCartLine(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.CartLine{}).Error
}

// DeleteCartLines removes exactly the given lines, leaving any line added
// after they were read.
func (r *GormRepo) DeleteCartLines(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).Where("id IN ?", ids).Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) ClearCart(ctx context.Context, owner models.Owner) (int64, error) {
	res := r.DB.WithContext(ctx).Scopes(ownedBy(owner)).Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) CartLineFor(ctx context.Context, owner models.Owner, productID uuid.UUID, v models.Variant) (*models.CartLine, error) {
	var line models.CartLine
	err := r.DB.WithContext(ctx).Clauses(forUpdate).Scopes(ownedBy(owner)).
		Where("product_id = ? AND variant = ?", productID, v).First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *GormRepo) IncrementCartLine(ctx context.Context, id uuid.UUID, by int) error {
	return r.DB.WithContext(ctx).Model(&models.CartLine{}).Where("id = ?", id).
		Updates(map[string]any{"quantity": gorm.Expr("quantity + ?", by), "updated_at": r.DB.NowFunc()}).Error
}

// ReownCartLine moves a line to another owner keeping its id.
func (r *GormRepo) ReownCartLine(ctx context.Context, id uuid.UUID, owner models.Owner) error {
	return r.DB.WithContext(ctx).Model(&models.CartLine{}).Where("id = ?", id).
		Updates(map[string]any{"user_id": owner.UserID, "guest_id": owner.GuestID, "updated_at": r.DB.NowFunc()}).Error
}
