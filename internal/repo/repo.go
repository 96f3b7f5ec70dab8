package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/pkg/db"
)

type GormRepo struct {
	DB *gorm.DB
}

func New(gdb *gorm.DB) *GormRepo {
	return &GormRepo{DB: gdb}
}

// InTx runs fn against a repo bound to a single transaction.
func (r *GormRepo) InTx(ctx context.Context, fn func(tx *GormRepo) error) error {
	return db.WithTransaction(ctx, r.DB, func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(models.All()...)
}

func ownedBy(o models.Owner) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if o.UserID != nil {
			return q.Where("user_id = ?", *o.UserID)
		}
		return q.Where("guest_id = ?", *o.GuestID)
	}
}

var forUpdate = clause.Locking{Strength: "UPDATE"}
