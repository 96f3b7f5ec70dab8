package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/plant_shop/internal/actor"
	"github.com/Skotchmaster/plant_shop/internal/catalog"
	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/pkg/events"
)

func newCartService(t *testing.T) (*CartService, *recordingPublisher) {
	t.Helper()
	r := newTestRepo(t)
	pub := &recordingPublisher{}
	return &CartService{Repo: r, Catalog: &catalog.SQLLookup{Products: r}, Events: pub}, pub
}

func lineFor(t *testing.T, view *CartView, productID uuid.UUID) CartLineView {
	t.Helper()
	for _, l := range view.Lines {
		if l.ProductID == productID {
			return l
		}
	}
	t.Fatalf("no cart line for product %s", productID)
	return CartLineView{}
}

func TestCart_AddSameItemAccumulates(t *testing.T) {
	t.Parallel()
	s, pub := newCartService(t)
	ctx := context.Background()
	p := seedProduct(t, s.Repo, "Monstera", "100.00", "")
	u := actor.User(uuid.New(), "user")

	_, err := s.AddLine(ctx, u, p.ID, models.VariantCutting, 3)
	require.NoError(t, err)
	view, err := s.AddLine(ctx, u, p.ID, models.VariantCutting, 2)
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	assert.Equal(t, 5, view.Lines[0].Quantity)
	assert.Equal(t, "500.00", view.TotalPrice.StringFixed(2))
	assert.Equal(t, []string{"cart_item_added", "cart_item_added"}, pub.types(events.TopicCarts))

	logs, err := s.Repo.AuditLogs(ctx, "cart_item_added_or_updated")
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestCart_ConcurrentFirstAddsAccumulate(t *testing.T) {
	t.Parallel()
	s, _ := newCartService(t)
	ctx := context.Background()
	p := seedProduct(t, s.Repo, "Monstera", "100.00", "")
	u := actor.User(uuid.New(), "user")
	uid := u.UserID()

	// the same line lands between the first add's lookup and its insert
	interleaveCreate(t, s.Repo, "cart_lines", func(db *gorm.DB) error {
		return db.Create(&models.CartLine{UserID: &uid, ProductID: p.ID, Variant: models.VariantCutting, Quantity: 2}).Error
	})

	view, err := s.AddLine(ctx, u, p.ID, models.VariantCutting, 3)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 5, view.Lines[0].Quantity)

	g := actor.Guest("guest_abc")
	_, err = s.AddLine(ctx, g, p.ID, models.VariantCutting, 1)
	require.NoError(t, err)
	guestView, err := s.AddLine(ctx, g, p.ID, models.VariantCutting, 4)
	require.NoError(t, err)
	require.Len(t, guestView.Lines, 1)
	assert.Equal(t, 5, guestView.Lines[0].Quantity)
}

func TestCart_ViewTotals(t *testing.T) {
	t.Parallel()
	s, _ := newCartService(t)
	ctx := context.Background()
	a := seedProduct(t, s.Repo, "Monstera", "100.00", "")
	b := seedProduct(t, s.Repo, "Pothos", "", "50.00")
	g := actor.Guest("guest_abc")

	_, err := s.AddLine(ctx, g, a.ID, models.VariantCutting, 2)
	require.NoError(t, err)
	view, err := s.AddLine(ctx, g, b.ID, models.VariantSeedling, 1)
	require.NoError(t, err)

	assert.Equal(t, "250.00", view.TotalPrice.StringFixed(2))
	assert.Equal(t, 3, view.TotalItems)
	require.Len(t, view.Lines, 2)
	la := lineFor(t, view, a.ID)
	assert.Equal(t, "Monstera", la.Product.Name)
	assert.Equal(t, "200.00", la.Subtotal.StringFixed(2))
	assert.True(t, lineFor(t, view, b.ID).Available)
}

func TestCart_AddRejectsBadInput(t *testing.T) {
	t.Parallel()
	s, _ := newCartService(t)
	ctx := context.Background()
	p := seedProduct(t, s.Repo, "Monstera", "", "40.00")
	u := actor.User(uuid.New(), "user")

	tests := []struct {
		name     string
		who      actor.Actor
		product  uuid.UUID
		variant  models.Variant
		quantity int
		want     error
	}{
		{"anonymous", actor.Actor{}, p.ID, models.VariantSeedling, 1, ErrValidation},
		{"zero quantity", u, p.ID, models.VariantSeedling, 0, ErrValidation},
		{"unknown variant", u, p.ID, models.Variant("bulb"), 1, ErrValidation},
		{"variant without price", u, p.ID, models.VariantCutting, 1, ErrValidation},
		{"missing product", u, uuid.New(), models.VariantCutting, 1, ErrNotFound},
	}
	for _, tt := range tests {
		_, err := s.AddLine(ctx, tt.who, tt.product, tt.variant, tt.quantity)
		assert.ErrorIs(t, err, tt.want, tt.name)
	}

	view, err := s.GetCart(ctx, u)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestCart_UpdateAndRemoveCheckOwnership(t *testing.T) {
	t.Parallel()
	s, _ := newCartService(t)
	ctx := context.Background()
	p := seedProduct(t, s.Repo, "Monstera", "100.00", "")
	owner := actor.User(uuid.New(), "user")
	other := actor.User(uuid.New(), "user")
	admin := actor.User(uuid.New(), actor.RoleAdmin)

	view, err := s.AddLine(ctx, owner, p.ID, models.VariantCutting, 1)
	require.NoError(t, err)
	lineID := view.Lines[0].ID

	_, err = s.UpdateQuantity(ctx, other, lineID, 4)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.UpdateQuantity(ctx, admin, lineID, 4)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.RemoveLine(ctx, actor.Guest("guest_x"), lineID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.UpdateQuantity(ctx, owner, lineID, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.UpdateQuantity(ctx, owner, uuid.New(), 2)
	assert.ErrorIs(t, err, ErrNotFound)

	view, err = s.UpdateQuantity(ctx, owner, lineID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Lines[0].Quantity)

	view, err = s.RemoveLine(ctx, owner, lineID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.True(t, view.TotalPrice.IsZero())

	_, err = s.RemoveLine(ctx, owner, lineID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCart_UnpricedLineExcludedFromTotal(t *testing.T) {
	t.Parallel()
	s, _ := newCartService(t)
	ctx := context.Background()
	a := seedProduct(t, s.Repo, "Monstera", "100.00", "")
	b := seedProduct(t, s.Repo, "Pothos", "30.00", "")
	u := actor.User(uuid.New(), "user")

	_, err := s.AddLine(ctx, u, a.ID, models.VariantCutting, 1)
	require.NoError(t, err)
	_, err = s.AddLine(ctx, u, b.ID, models.VariantCutting, 2)
	require.NoError(t, err)

	require.NoError(t, s.Repo.UpdateProductPrices(ctx, b.ID, nil, nil))

	view, err := s.GetCart(ctx, u)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.True(t, lineFor(t, view, a.ID).Available)
	assert.False(t, lineFor(t, view, b.ID).Available)
	assert.Equal(t, "100.00", view.TotalPrice.StringFixed(2))
	assert.Equal(t, 3, view.TotalItems)
}

func TestCart_ClearOnlyTouchesOwner(t *testing.T) {
	t.Parallel()
	s, _ := newCartService(t)
	ctx := context.Background()
	p := seedProduct(t, s.Repo, "Monstera", "100.00", "")
	u := actor.User(uuid.New(), "user")
	g := actor.Guest("guest_abc")

	_, err := s.AddLine(ctx, u, p.ID, models.VariantCutting, 1)
	require.NoError(t, err)
	_, err = s.AddLine(ctx, g, p.ID, models.VariantCutting, 2)
	require.NoError(t, err)

	view, err := s.Clear(ctx, g)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)

	view, err = s.GetCart(ctx, u)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 1, view.Lines[0].Quantity)
}
