package backend_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userbot-tma/internal/backend/backendtest"
)

func TestUserbotLifecycle(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()
	c := newClient(t, srv.BaseURL())
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))
	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/health", calls[0].Path)

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Running)
	assert.Nil(t, st.UserInfo)

	msg, err := c.StartUserbot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Userbot started successfully", msg)

	st, err = c.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Running)
	require.NotNil(t, st.UserInfo)
	assert.Equal(t, "operator", st.UserInfo.Username)

	_, err = c.StartUserbot(ctx)
	require.Error(t, err)

	_, err = c.StopUserbot(ctx)
	require.NoError(t, err)
}

func TestGroups(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()
	c := newClient(t, srv.BaseURL())
	ctx := context.Background()

	_, err := c.AddGroup(ctx, "@golang")
	require.NoError(t, err)
	msg, err := c.AddGroup(ctx, "@golang")
	require.NoError(t, err)
	assert.Equal(t, "Group already exists", msg)

	msg, err = c.AddGroups(ctx, []string{"@a", "@b"})
	require.NoError(t, err)
	assert.Equal(t, "Added 2 groups", msg)

	groups, err := c.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "@golang", groups[0].Identifier)

	msg, err = c.DeleteGroup(ctx, "@a")
	require.NoError(t, err)
	assert.Equal(t, "Group removed successfully", msg)

	groups, err = c.ListGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}

func TestMessages(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()
	c := newClient(t, srv.BaseURL())
	ctx := context.Background()

	_, err := c.AddMessage(ctx, "hello world")
	require.NoError(t, err)

	msgs, err := c.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello world", msgs[0].Text)

	out, err := c.DeleteMessage(ctx, msgs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Message removed successfully", out)

	out, err = c.DeleteMessage(ctx, msgs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Message not found", out)
}

func TestBlacklist(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()
	c := newClient(t, srv.BaseURL())
	ctx := context.Background()

	hours := 24
	_, err := c.AddBlacklist(ctx, "-100123", "spam", &hours)
	require.NoError(t, err)
	_, err = c.AddBlacklist(ctx, "-100456", "flood", nil)
	require.NoError(t, err)

	entries, err := c.ListBlacklist(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.False(t, entries[0].IsPermanent)
	assert.True(t, entries[1].IsPermanent)

	calls := srv.CallsTo("/blacklist")
	assert.EqualValues(t, 24, calls[0].Body["duration"])
	assert.NotContains(t, calls[1].Body, "duration")

	_, err = c.DeleteBlacklist(ctx, "-100123")
	require.NoError(t, err)
	entries, err = c.ListBlacklist(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSettings(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()
	c := newClient(t, srv.BaseURL())
	ctx := context.Background()

	_, err := c.SetSetting(ctx, "min_delay", "30")
	require.NoError(t, err)
	_, err = c.SetSetting(ctx, "min_delay", "45")
	require.NoError(t, err)

	settings, err := c.ListSettings(ctx)
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, "45", settings[0].Value)
}
