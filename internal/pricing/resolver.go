package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/plant_shop/internal/models"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrVariantUnavailable = errors.New("variant unavailable")
)

type ProductSource interface {
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type Item struct {
	ProductID uuid.UUID
	Variant   models.Variant
}

type Quote struct {
	Item
	ProductName string
	UnitPrice   decimal.Decimal
}

type LookupError struct {
	Item
	Err error
}

func (e *LookupError) Error() string {
	if errors.Is(e.Err, ErrProductNotFound) {
		return fmt.Sprintf("product %s not found", e.ProductID)
	}
	return fmt.Sprintf("product %s is not available as %s", e.ProductID, e.Variant)
}

func (e *LookupError) Unwrap() error { return e.Err }

type Resolver struct {
	src ProductSource
}

func NewResolver(src ProductSource) *Resolver {
	return &Resolver{src: src}
}

// UnitPrice returns the current price of one product variant, rounded to cents.
func (r *Resolver) UnitPrice(ctx context.Context, productID uuid.UUID, v models.Variant) (decimal.Decimal, error) {
	quotes, err := r.Quote(ctx, []Item{{ProductID: productID, Variant: v}})
	if err != nil {
		return decimal.Zero, err
	}
	return quotes[0].UnitPrice, nil
}

// Quote prices all items with one product lookup. It fails on the first
// item, in input order, that cannot be priced.
func (r *Resolver) Quote(ctx context.Context, items []Item) ([]Quote, error) {
	products, err := r.load(ctx, items)
	if err != nil {
		return nil, err
	}

	out := make([]Quote, 0, len(items))
	for _, it := range items {
		q, err := quoteOne(products, it)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// QuoteEach prices every item independently; unpriceable items are reported
// in the second map instead of failing the call.
func (r *Resolver) QuoteEach(ctx context.Context, items []Item) (map[Item]Quote, map[Item]error, error) {
	products, err := r.load(ctx, items)
	if err != nil {
		return nil, nil, err
	}

	quotes := make(map[Item]Quote, len(items))
	failed := make(map[Item]error)
	for _, it := range items {
		q, err := quoteOne(products, it)
		if err != nil {
			failed[it] = err
			continue
		}
		quotes[it] = q
	}
	return quotes, failed, nil
}

func (r *Resolver) load(ctx context.Context, items []Item) (map[uuid.UUID]*models.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	if len(ids) == 0 {
		return map[uuid.UUID]*models.Product{}, nil
	}

	list, err := r.src.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[uuid.UUID]*models.Product, len(list))
	for i := range list {
		byID[list[i].ID] = &list[i]
	}
	return byID, nil
}

func quoteOne(products map[uuid.UUID]*models.Product, it Item) (Quote, error) {
	p, ok := products[it.ProductID]
	if !ok {
		return Quote{}, &LookupError{Item: it, Err: ErrProductNotFound}
	}
	price, ok := p.PriceFor(it.Variant)
	if !ok {
		return Quote{}, &LookupError{Item: it, Err: ErrVariantUnavailable}
	}
	return Quote{Item: it, ProductName: p.Name, UnitPrice: price.Round(2)}, nil
}
