package actor

import (
	"github.com/google/uuid"

	"github.com/Skotchmaster/plant_shop/internal/models"
)

type Kind int

const (
	KindNone Kind = iota
	KindUser
	KindGuest
)

const RoleAdmin = "admin"

// Actor is who performs a request: a registered user with a role, or a guest
// session. The zero value is anonymous.
type Actor struct {
	kind    Kind
	userID  uuid.UUID
	role    string
	email   string
	guestID string
}

func User(id uuid.UUID, role string) Actor {
	return Actor{kind: KindUser, userID: id, role: role}
}

func UserWithEmail(id uuid.UUID, role, email string) Actor {
	a := User(id, role)
	a.email = email
	return a
}

func Guest(id string) Actor {
	return Actor{kind: KindGuest, guestID: id}
}

func (a Actor) Kind() Kind { return a.kind }
func (a Actor) IsUser() bool { return a.kind == KindUser && a.userID != uuid.Nil }
func (a Actor) IsGuest() bool { return a.kind == KindGuest && a.guestID != "" }
func (a Actor) IsAdmin() bool { return a.IsUser() && a.role == RoleAdmin }
func (a Actor) UserID() uuid.UUID { return a.userID }
func (a Actor) GuestID() string { return a.guestID }
func (a Actor) Role() string { return a.role }
func (a Actor) Email() string { return a.email }

// Owner converts the actor into the owner identity of rows it creates.
// ok is false for an anonymous actor.
func (a Actor) Owner() (models.Owner, bool) {
	switch {
	case a.IsUser():
		return models.UserOwner(a.userID), true
	case a.IsGuest():
		return models.GuestOwner(a.guestID), true
	}
	return models.Owner{}, false
}

func (a Actor) String() string {
	switch a.kind {
	case KindUser:
		return "user:" + a.userID.String()
	case KindGuest:
		return "guest:" + a.guestID
	}
	return "anonymous"
}
