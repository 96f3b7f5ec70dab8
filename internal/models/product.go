package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Variant string

const (
	VariantCutting  Variant = "cutting"
	VariantSeedling Variant = "seedling"
)

func (v Variant) Valid() bool {
	return v == VariantCutting || v == VariantSeedling
}

type Product struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"     json:"id"`
	Name          string              `gorm:"size:255;not null"        json:"name"`
	Description   string              `gorm:"type:text"                json:"description"`
	CuttingPrice  decimal.NullDecimal `gorm:"type:decimal(10,2)"       json:"cutting_price"`
	SeedlingPrice decimal.NullDecimal `gorm:"type:decimal(10,2)"       json:"seedling_price"`
	Attributes    string              `gorm:"type:text"                json:"attributes"`
	Images        []ProductImage      `gorm:"foreignKey:ProductID"     json:"images,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type ProductImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"      json:"product_id"`
	URL       string    `gorm:"size:1024;not null"            json:"url"`
	Position  int       `gorm:"not null;default:0"            json:"position"`
}

// PriceFor returns the current unit price of a variant; ok is false when the
// product is not sold in that variant.
func (p *Product) PriceFor(v Variant) (price decimal.Decimal, ok bool) {
	var nd decimal.NullDecimal
	switch v {
	case VariantCutting:
		nd = p.CuttingPrice
	case VariantSeedling:
		nd = p.SeedlingPrice
	default:
		return decimal.Zero, false
	}
	if !nd.Valid || !nd.Decimal.IsPositive() {
		return decimal.Zero, false
	}
	return nd.Decimal, true
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (i *ProductImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (Product) TableName() string { return "products" }
func (ProductImage) TableName() string { return "product_images" }
