package access

import (
	"github.com/Skotchmaster/plant_shop/internal/actor"
	"github.com/Skotchmaster/plant_shop/internal/models"
)

type Op int

const (
	Read Op = iota
	Mutate
)

// CanAccess allows the owning user, the owning guest session, or an admin
// for reads. Admins never mutate rows they do not own.
func CanAccess(a actor.Actor, owner models.Owner, op Op) bool {
	if self, ok := a.Owner(); ok && owner.Valid() && self.Equal(owner) {
		return true
	}
	return op == Read && a.IsAdmin()
}
