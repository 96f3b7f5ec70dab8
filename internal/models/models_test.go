package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOwner_Valid(t *testing.T) {
	t.Parallel()

	uid := uuid.New()
	gid := "guest_abc"
	empty := ""

	tests := []struct {
		name  string
		owner Owner
		want  bool
	}{
		{name: "user", owner: UserOwner(uid), want: true},
		{name: "guest", owner: GuestOwner(gid), want: true},
		{name: "neither", owner: Owner{}, want: false},
		{name: "both", owner: Owner{UserID: &uid, GuestID: &gid}, want: false},
		{name: "nil uuid", owner: UserOwner(uuid.Nil), want: false},
		{name: "empty guest", owner: Owner{GuestID: &empty}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.owner.Valid())
		})
	}
}

func TestOwner_Equal(t *testing.T) {
	t.Parallel()

	a, b := uuid.New(), uuid.New()
	assert.True(t, UserOwner(a).Equal(UserOwner(a)))
	assert.False(t, UserOwner(a).Equal(UserOwner(b)))
	assert.True(t, GuestOwner("g1").Equal(GuestOwner("g1")))
	assert.False(t, GuestOwner("g1").Equal(UserOwner(a)))
}

func TestOrderStatus_Transitions(t *testing.T) {
	t.Parallel()

	assert.True(t, OrderStatusCreated.Cancellable())
	assert.True(t, OrderStatusProcessing.Cancellable())
	assert.False(t, OrderStatusShipped.Cancellable())
	assert.False(t, OrderStatusDelivered.Cancellable())
	assert.False(t, OrderStatusCancelled.Cancellable())

	assert.True(t, OrderStatusCreated.CanAdvanceTo(OrderStatusProcessing))
	assert.True(t, OrderStatusCreated.CanAdvanceTo(OrderStatusShipped))
	assert.False(t, OrderStatusShipped.CanAdvanceTo(OrderStatusProcessing))
	assert.False(t, OrderStatusDelivered.CanAdvanceTo(OrderStatusDelivered))
	assert.False(t, OrderStatusCancelled.CanAdvanceTo(OrderStatusProcessing))
	assert.False(t, OrderStatusCreated.CanAdvanceTo(OrderStatusCancelled))
}

func TestProduct_PriceFor(t *testing.T) {
	t.Parallel()

	p := Product{
		CuttingPrice: decimal.NullDecimal{Decimal: decimal.RequireFromString("100.00"), Valid: true},
	}

	price, ok := p.PriceFor(VariantCutting)
	assert.True(t, ok)
	assert.Equal(t, "100.00", price.StringFixed(2))

	_, ok = p.PriceFor(VariantSeedling)
	assert.False(t, ok)

	_, ok = p.PriceFor(Variant("bulb"))
	assert.False(t, ok)
}
