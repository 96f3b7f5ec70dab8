package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/plant_shop/internal/models"
)

// Display is the product data shown next to cart lines and favorites.
type Display struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	ImageURL   string    `json:"image_url,omitempty"`
	Attributes string    `json:"attributes,omitempty"`
}

// Lookup fetches display data for a set of products in one batch. Unknown
// ids are absent from the result.
type Lookup interface {
	Display(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Display, error)
}

type ProductSource interface {
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type SQLLookup struct {
	Products ProductSource
}

func (l *SQLLookup) Display(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Display, error) {
	out := make(map[uuid.UUID]Display, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	products, err := l.Products.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range products {
		out[products[i].ID] = FromProduct(&products[i])
	}
	return out, nil
}

func FromProduct(p *models.Product) Display {
	d := Display{ProductID: p.ID, Name: p.Name, Attributes: p.Attributes}
	if len(p.Images) > 0 {
		d.ImageURL = p.Images[0].URL
	}
	return d
}
