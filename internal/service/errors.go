package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/plant_shop/internal/actor"
	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/internal/pricing"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrForbidden  = errors.New("forbidden")  // 403
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409
	ErrUpstream   = errors.New("upstream")   // 502
)

// ownerOf resolves the acting identity; an anonymous actor is a client error.
func ownerOf(a actor.Actor) (models.Owner, error) {
	o, ok := a.Owner()
	if !ok {
		return models.Owner{}, fmt.Errorf("%w: authentication or guest identity required", ErrValidation)
	}
	return o, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s not found", ErrNotFound, what)
	}
	return err
}

// priceError maps resolver failures for cart mutations: a missing product is
// NotFound, a missing variant price is a validation error.
func priceError(err error) error {
	var le *pricing.LookupError
	if !errors.As(err, &le) {
		return err
	}
	if errors.Is(le, pricing.ErrProductNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, le.Error())
	}
	return fmt.Errorf("%w: %s", ErrValidation, le.Error())
}
