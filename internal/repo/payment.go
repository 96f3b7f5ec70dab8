package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/plant_shop/internal/models"
)

func (r *GormRepo) PaymentByProviderID(ctx context.Context, providerID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.DB.WithContext(ctx).Where("provider_payment_id = ?", providerID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) PaymentByProviderIDForUpdate(ctx context.Context, providerID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.DB.WithContext(ctx).Clauses(forUpdate).Where("provider_payment_id = ?", providerID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertPayment creates the mirror row; an existing row with the same
// provider id is left as is.
func (r *GormRepo) InsertPayment(ctx context.Context, p *models.Payment) (bool, error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "provider_payment_id"}}, DoNothing: true}).
		Create(p)
	return res.RowsAffected > 0, res.Error
}

func (r *GormRepo) UpdatePaymentState(ctx context.Context, providerID string, st models.PaymentStatus, paid bool, metadata string) error {
	return r.DB.WithContext(ctx).Model(&models.Payment{}).
		Where("provider_payment_id = ?", providerID).
		Updates(map[string]any{"status": st, "paid": paid, "metadata": metadata, "updated_at": r.DB.NowFunc()}).Error
}

func (r *GormRepo) SetPaymentConfirmationURL(ctx context.Context, providerID, confirmationURL string) error {
	return r.DB.WithContext(ctx).Model(&models.Payment{}).
		Where("provider_payment_id = ?", providerID).
		Updates(map[string]any{"confirmation_url": confirmationURL, "updated_at": r.DB.NowFunc()}).Error
}
