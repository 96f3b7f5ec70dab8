package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/plant_shop/internal/actor"
	"github.com/Skotchmaster/plant_shop/internal/models"
)

func TestCanAccess(t *testing.T) {
	t.Parallel()

	userA, userB, admin := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name  string
		actor actor.Actor
		owner models.Owner
		op    Op
		want  bool
	}{
		{name: "owner reads", actor: actor.User(userA, "user"), owner: models.UserOwner(userA), op: Read, want: true},
		{name: "owner mutates", actor: actor.User(userA, "user"), owner: models.UserOwner(userA), op: Mutate, want: true},
		{name: "other user reads", actor: actor.User(userB, "user"), owner: models.UserOwner(userA), op: Read, want: false},
		{name: "other user mutates", actor: actor.User(userB, "user"), owner: models.UserOwner(userA), op: Mutate, want: false},
		{name: "guest owner", actor: actor.Guest("guest_1"), owner: models.GuestOwner("guest_1"), op: Mutate, want: true},
		{name: "other guest", actor: actor.Guest("guest_2"), owner: models.GuestOwner("guest_1"), op: Read, want: false},
		{name: "guest vs user row", actor: actor.Guest("guest_1"), owner: models.UserOwner(userA), op: Read, want: false},
		{name: "admin reads", actor: actor.User(admin, actor.RoleAdmin), owner: models.UserOwner(userA), op: Read, want: true},
		{name: "admin reads guest order", actor: actor.User(admin, actor.RoleAdmin), owner: models.GuestOwner("guest_1"), op: Read, want: true},
		{name: "admin mutates", actor: actor.User(admin, actor.RoleAdmin), owner: models.UserOwner(userA), op: Mutate, want: false},
		{name: "anonymous", actor: actor.Actor{}, owner: models.UserOwner(userA), op: Read, want: false},
		{name: "broken owner", actor: actor.User(userA, "user"), owner: models.Owner{}, op: Read, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CanAccess(tt.actor, tt.owner, tt.op))
		})
	}
}
