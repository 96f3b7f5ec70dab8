package actor

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActor_Owner(t *testing.T) {
	t.Parallel()

	uid := uuid.New()

	o, ok := User(uid, "user").Owner()
	require.True(t, ok)
	require.NotNil(t, o.UserID)
	assert.Equal(t, uid, *o.UserID)
	assert.Nil(t, o.GuestID)

	o, ok = Guest("guest_1").Owner()
	require.True(t, ok)
	require.NotNil(t, o.GuestID)
	assert.Equal(t, "guest_1", *o.GuestID)
	assert.Nil(t, o.UserID)

	_, ok = Actor{}.Owner()
	assert.False(t, ok)

	_, ok = Guest("").Owner()
	assert.False(t, ok)
}

func TestActor_IsAdmin(t *testing.T) {
	t.Parallel()

	assert.True(t, User(uuid.New(), RoleAdmin).IsAdmin())
	assert.False(t, User(uuid.New(), "user").IsAdmin())
	assert.False(t, Guest("guest_admin").IsAdmin())
	assert.Equal(t, "anonymous", Actor{}.String())
}
