package models

import (
	"errors"

	"github.com/google/uuid"
)

var ErrOwnerExclusive = errors.New("exactly one of user_id or guest_id must be set")

// Owner is the exclusive user-or-guest identity holding a cart line,
// favorite, order or payment.
type Owner struct {
	UserID  *uuid.UUID
	GuestID *string
}

func UserOwner(id uuid.UUID) Owner {
	return Owner{UserID: &id}
}

func GuestOwner(id string) Owner {
	return Owner{GuestID: &id}
}

func (o Owner) Valid() bool {
	if o.UserID != nil && *o.UserID == uuid.Nil {
		return false
	}
	if o.GuestID != nil && *o.GuestID == "" {
		return false
	}
	return (o.UserID != nil) != (o.GuestID != nil)
}

func (o Owner) IsGuest() bool { return o.GuestID != nil }

func (o Owner) Equal(other Owner) bool {
	switch {
	case o.UserID != nil && other.UserID != nil:
		return *o.UserID == *other.UserID
	case o.GuestID != nil && other.GuestID != nil:
		return *o.GuestID == *other.GuestID
	}
	return false
}

func (o Owner) String() string {
	switch {
	case o.UserID != nil:
		return "user:" + o.UserID.String()
	case o.GuestID != nil:
		return "guest:" + *o.GuestID
	}
	return "none"
}
