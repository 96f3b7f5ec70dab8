package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/plant_shop/internal/models"
)

type OrderFilter struct {
	Owner  *models.Owner
	UserID *uuid.UUID
	Status models.OrderStatus
	Asc    bool
	Offset int
	Limit  int
}

// CreateOrder inserts the order header and its lines.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	q := r.DB.WithContext(ctx)
	if err := q.Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
	}
	if len(order.Lines) == 0 {
		return nil
	}
	return q.Create(&order.Lines).Error
}

func (r *GormRepo) OrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).
		Preload("Lines", func(q *gorm.DB) *gorm.DB { return q.Order("id ASC") }).
		Where("id = ?", id).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) OrderByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) SetOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": r.DB.NowFunc()}).Error
}

// ListOrders returns one page plus the unpaged total. Lines are loaded with
// a single IN query for the whole page.
func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.Owner != nil {
		q = q.Scopes(ownedBy(*f.Owner))
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	dir := "DESC"
	if f.Asc {
		dir = "ASC"
	}

	var orders []models.Order
	err := q.Preload("Lines", func(q *gorm.DB) *gorm.DB { return q.Order("id ASC") }).
		Order("created_at " + dir).Order("id " + dir).
		Offset(f.Offset).Limit(f.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// LinkGuestOrders re-owns guest orders whose contact email matches email,
// compared trimmed and case-insensitively.
func (r *GormRepo) LinkGuestOrders(ctx context.Context, email string, userID uuid.UUID) (int64, error) {
	norm := strings.ToLower(strings.TrimSpace(email))
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("user_id IS NULL AND guest_id IS NOT NULL").
		Where("LOWER(TRIM(contact_email)) = ?", norm).
		Updates(map[string]any{"user_id": userID, "guest_id": nil, "updated_at": r.DB.NowFunc()})
	return res.RowsAffected, res.Error
}
