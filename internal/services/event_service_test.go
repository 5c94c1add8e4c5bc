package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents_RecentFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	uid := "u-1"
	require.NoError(t, env.events.CreateEvent(ctx, "a", "info", "first", nil))
	require.NoError(t, env.events.CreateEvent(ctx, "b", "warn", "second", &uid))
	require.NoError(t, env.events.CreateEvent(ctx, "c", "info", "third", nil))

	events, err := env.events.GetRecentEvents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "third", events[0].Message)
	assert.Equal(t, "second", events[1].Message)
	require.NotNil(t, events[1].UserID)
	assert.Equal(t, uid, *events[1].UserID)

	assert.Len(t, env.pub.events, 3)
}

func TestEvents_SurviveUserDeletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "ephemeral@example.com")
	require.NoError(t, env.users.Delete(ctx, user.ID))

	events, err := env.events.GetRecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventUserDeleted, events[0].Type)
	assert.Equal(t, EventUserRegistered, events[1].Type)
}
