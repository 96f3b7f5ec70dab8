package repo

import (
	"context"
	"encoding/json"

	"github.com/Skotchmaster/plant_shop/internal/models"
)

func (r *GormRepo) WriteAudit(ctx context.Context, owner models.Owner, action string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	entry := models.AuditLog{
		UserID:  owner.UserID,
		GuestID: owner.GuestID,
		Action:  action,
		Data:    string(raw),
	}
	return r.DB.WithContext(ctx).Create(&entry).Error
}

func (r *GormRepo) AuditLogs(ctx context.Context, action string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	if err := r.DB.WithContext(ctx).Where("action = ?", action).Order("id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
