package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/plant_shop/internal/access"
	"github.com/Skotchmaster/plant_shop/internal/actor"
	"github.com/Skotchmaster/plant_shop/internal/catalog"
	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/internal/pricing"
	"github.com/Skotchmaster/plant_shop/internal/repo"
	"github.com/Skotchmaster/plant_shop/pkg/events"
	"github.com/Skotchmaster/plant_shop/pkg/logging"
)

type CartService struct {
	Repo    *repo.GormRepo
	Catalog catalog.Lookup
	Events  events.Publisher
}

type CartLineView struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Variant   models.Variant
	Quantity  int
	Available bool
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Product   catalog.Display
}

// CartView is recomputed from live prices on every read.
type CartView struct {
	Lines      []CartLineView
	TotalPrice decimal.Decimal
	TotalItems int
}

func validateQuantity(q int) error {
	if q < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	return nil
}

func (s *CartService) AddLine(ctx context.Context, a actor.Actor, productID uuid.UUID, variant models.Variant, quantity int) (*CartView, error) {
	owner, err := ownerOf(a)
	if err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, fmt.Errorf("%w: product_id required", ErrValidation)
	}
	if !variant.Valid() {
		return nil, fmt.Errorf("%w: variant must be cutting or seedling", ErrValidation)
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	if _, err := pricing.NewResolver(s.Repo).UnitPrice(ctx, productID, variant); err != nil {
		return nil, priceError(err)
	}

	line := models.CartLine{ProductID: productID, Variant: variant, Quantity: quantity}
	line.SetOwner(owner)
	if err := s.Repo.AddCartLine(ctx, &line); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("cart_item_added_or_updated", "owner", owner.String(), "line_id", line.ID, "quantity", line.Quantity)
	audit(ctx, s.Repo, owner, "cart_item_added_or_updated", map[string]any{
		"product_id": productID, "variant": variant, "added": quantity, "quantity": line.Quantity,
	})
	publish(ctx, s.Events, events.TopicCarts, owner.String(), map[string]any{
		"type": "cart_item_added", "owner": owner.String(), "product_id": productID, "variant": variant, "quantity": line.Quantity,
	})

	return s.view(ctx, owner)
}

func (s *CartService) GetCart(ctx context.Context, a actor.Actor) (*CartView, error) {
	owner, err := ownerOf(a)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, owner)
}

func (s *CartService) UpdateQuantity(ctx context.Context, a actor.Actor, lineID uuid.UUID, quantity int) (*CartView, error) {
	owner, err := ownerOf(a)
	if err != nil {
		return nil, err
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	err = s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		line, err := s.ownedLine(ctx, tx, a, lineID)
		if err != nil {
			return err
		}
		return tx.SetCartLineQuantity(ctx, line.ID, quantity)
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, owner)
}

func (s *CartService) RemoveLine(ctx context.Context, a actor.Actor, lineID uuid.UUID) (*CartView, error) {
	owner, err := ownerOf(a)
	if err != nil {
		return nil, err
	}

	err = s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		line, err := s.ownedLine(ctx, tx, a, lineID)
		if err != nil {
			return err
		}
		return tx.DeleteCartLine(ctx, line.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, owner)
}

func (s *CartService) Clear(ctx context.Context, a actor.Actor) (*CartView, error) {
	owner, err := ownerOf(a)
	if err != nil {
		return nil, err
	}
	if _, err := s.Repo.ClearCart(ctx, owner); err != nil {
		return nil, err
	}
	return s.view(ctx, owner)
}

// ownedLine locks the line and checks ownership before the caller mutates it.
func (s *CartService) ownedLine(ctx context.Context, tx *repo.GormRepo, a actor.Actor, lineID uuid.UUID) (*models.CartLine, error) {
	line, err := tx.CartLineByIDForUpdate(ctx, lineID)
	if err != nil {
		return nil, notFound(err, "cart item")
	}
	if !access.CanAccess(a, line.Owner(), access.Mutate) {
		return nil, fmt.Errorf("%w: cart item belongs to another owner", ErrForbidden)
	}
	return line, nil
}

func (s *CartService) view(ctx context.Context, owner models.Owner) (*CartView, error) {
	lines, err := s.Repo.CartLines(ctx, owner)
	if err != nil {
		return nil, err
	}

	out := &CartView{Lines: make([]CartLineView, 0, len(lines)), TotalPrice: decimal.Zero}
	if len(lines) == 0 {
		return out, nil
	}

	items := make([]pricing.Item, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for i, l := range lines {
		items[i] = pricing.Item{ProductID: l.ProductID, Variant: l.Variant}
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}

	quotes, _, err := pricing.NewResolver(s.Repo).QuoteEach(ctx, items)
	if err != nil {
		return nil, err
	}
	display, err := lookupDisplay(ctx, s.Catalog, ids)
	if err != nil {
		return nil, err
	}

	for i, l := range lines {
		v := CartLineView{
			ID:        l.ID,
			ProductID: l.ProductID,
			Variant:   l.Variant,
			Quantity:  l.Quantity,
			Product:   display[l.ProductID],
		}
		if v.Product.ProductID == uuid.Nil {
			v.Product.ProductID = l.ProductID
		}
		if q, ok := quotes[items[i]]; ok {
			v.Available = true
			v.UnitPrice = q.UnitPrice
			v.Subtotal = q.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
			out.TotalPrice = out.TotalPrice.Add(v.Subtotal)
			if v.Product.Name == "" {
				v.Product.Name = q.ProductName
			}
		}
		out.TotalItems += l.Quantity
		out.Lines = append(out.Lines, v)
	}
	return out, nil
}

// lookupDisplay degrades to an empty result when the catalog is unavailable.
func lookupDisplay(ctx context.Context, lookup catalog.Lookup, ids []uuid.UUID) (map[uuid.UUID]catalog.Display, error) {
	if lookup == nil {
		return map[uuid.UUID]catalog.Display{}, nil
	}
	d, err := lookup.Display(ctx, ids)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		logging.FromContext(ctx).Warn("display_lookup_failed", "error", err)
		return map[uuid.UUID]catalog.Display{}, nil
	}
	return d, nil
}
