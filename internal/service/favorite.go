package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/plant_shop/internal/actor"
	"github.com/Skotchmaster/plant_shop/internal/catalog"
	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/internal/repo"
	"github.com/Skotchmaster/plant_shop/pkg/logging"
)

type FavoriteService struct {
	Repo    *repo.GormRepo
	Catalog catalog.Lookup
}

type FavoriteView struct {
	ProductID uuid.UUID
	AddedAt   time.Time
	Product   catalog.Display
}

func (s *FavoriteService) Add(ctx context.Context, a actor.Actor, productID uuid.UUID) error {
	owner, err := ownerOf(a)
	if err != nil {
		return err
	}
	if productID == uuid.Nil {
		return fmt.Errorf("%w: product_id required", ErrValidation)
	}

	ok, err := s.Repo.ProductExists(ctx, productID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: product not found", ErrNotFound)
	}

	exists, err := s.Repo.FavoriteExists(ctx, owner, productID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: product already in favorites", ErrConflict)
	}

	fav := models.Favorite{ProductID: productID}
	fav.UserID, fav.GuestID = owner.UserID, owner.GuestID
	if err := s.Repo.CreateFavorite(ctx, &fav); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("favorite_added", "owner", owner.String(), "product_id", productID)
	return nil
}

func (s *FavoriteService) Remove(ctx context.Context, a actor.Actor, productID uuid.UUID) error {
	owner, err := ownerOf(a)
	if err != nil {
		return err
	}
	n, err := s.Repo.DeleteFavorite(ctx, owner, productID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: product not in favorites", ErrNotFound)
	}
	logging.FromContext(ctx).Info("favorite_removed", "owner", owner.String(), "product_id", productID)
	return nil
}

func (s *FavoriteService) List(ctx context.Context, a actor.Actor, offset, limit int) ([]FavoriteView, int64, error) {
	owner, err := ownerOf(a)
	if err != nil {
		return nil, 0, err
	}
	favs, total, err := s.Repo.ListFavorites(ctx, owner, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, len(favs))
	for i, f := range favs {
		ids[i] = f.ProductID
	}
	display, err := lookupDisplay(ctx, s.Catalog, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]FavoriteView, len(favs))
	for i, f := range favs {
		d, ok := display[f.ProductID]
		if !ok {
			d = catalog.Display{ProductID: f.ProductID}
		}
		out[i] = FavoriteView{ProductID: f.ProductID, AddedAt: f.CreatedAt, Product: d}
	}
	return out, total, nil
}

func (s *FavoriteService) IsFavorite(ctx context.Context, a actor.Actor, productID uuid.UUID) (bool, error) {
	owner, err := ownerOf(a)
	if err != nil {
		return false, err
	}
	return s.Repo.FavoriteExists(ctx, owner, productID)
}
