package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/plant_shop/internal/models"
)

func (r *GormRepo) CreateGuestSession(ctx context.Context, s *models.GuestSession) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) GuestSession(ctx context.Context, id string) (*models.GuestSession, error) {
	var s models.GuestSession
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) GuestSessionForUpdate(ctx context.Context, id string) (*models.GuestSession, error) {
	var s models.GuestSession
	if err := r.DB.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ExtendGuestSession moves expiry only for sessions that are still live at now.
func (r *GormRepo) ExtendGuestSession(ctx context.Context, id string, now, expiresAt time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.GuestSession{}).
		Where("id = ? AND expires_at > ?", id, now).
		Update("expires_at", expiresAt)
	return res.RowsAffected > 0, res.Error
}

func (r *GormRepo) DeleteGuestSession(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.GuestSession{}).Error
}

// DeleteExpiredGuestSessions removes expired sessions with their carts and
// favorites. Guest orders are kept.
func (r *GormRepo) DeleteExpiredGuestSessions(ctx context.Context, now time.Time) ([]string, error) {
	var ids []string
	err := r.InTx(ctx, func(tx *GormRepo) error {
		if err := tx.DB.WithContext(ctx).Model(&models.GuestSession{}).
			Where("expires_at <= ?", now).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.DB.WithContext(ctx).Where("guest_id IN ?", ids).Delete(&models.CartLine{}).Error; err != nil {
			return err
		}
		if err := tx.DB.WithContext(ctx).Where("guest_id IN ?", ids).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.DB.WithContext(ctx).Where("id IN ?", ids).Delete(&models.GuestSession{}).Error
	})
	return ids, err
}
