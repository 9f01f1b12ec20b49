package groups

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testRegistry(t *testing.T, reg Registry) {
	assert := assert.New(t)
	ctx := context.Background()

	ok, err := reg.IsEnabled(ctx, "g1")
	assert.NoError(err)
	assert.False(ok)

	added, err := reg.Enable(ctx, "g1", "Book Club", "admin1")
	assert.NoError(err)
	assert.True(added)
	added, err = reg.Enable(ctx, "g1", "Renamed", "admin2")
	assert.NoError(err)
	assert.False(added)

	time.Sleep(5 * time.Millisecond)
	added, err = reg.Enable(ctx, "g2", "", "admin1")
	assert.NoError(err)
	assert.True(added)

	ok, err = reg.IsEnabled(ctx, "g1")
	assert.NoError(err)
	assert.True(ok)

	list, err := reg.List(ctx)
	assert.NoError(err)
	require.Len(t, list, 2)
	assert.Equal("g1", list[0].ID)
	assert.Equal("Book Club", list[0].Name)
	assert.Equal("admin1", list[0].EnabledBy)
	assert.Equal(unknownGroupName, list[1].Name)

	assert.NoError(reg.Rename(ctx, "g2", "Chess"))
	assert.ErrorIs(reg.Rename(ctx, "missing", "x"), ErrNotFound)

	removed, err := reg.Disable(ctx, "g1")
	assert.NoError(err)
	assert.True(removed)
	removed, err = reg.Disable(ctx, "g1")
	assert.NoError(err)
	assert.False(removed)

	list, err = reg.List(ctx)
	assert.NoError(err)
	require.Len(t, list, 1)
	assert.Equal("Chess", list[0].Name)
}

func TestDocRegistry(t *testing.T) {
	reg, err := NewDocRegistry(context.Background(), docstore.NewMemDocStore(), nil)
	require.NoError(t, err)
	testRegistry(t, reg)
}

func TestGormRegistry(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	reg, err := NewGormRegistry(db)
	require.NoError(t, err)
	testRegistry(t, reg)
}

func TestDocRegistryPersistence(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store := docstore.NewMemDocStore()

	reg, err := NewDocRegistry(ctx, store, nil)
	require.NoError(t, err)
	_, err = reg.Enable(ctx, "120363@g.us", "Study Group", "15551234567@s.whatsapp.net")
	require.NoError(t, err)

	raw, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Contains(string(raw), `"name": "Study Group"`)
	assert.Contains(string(raw), `"enabledBy": "15551234567@s.whatsapp.net"`)

	reloaded, err := NewDocRegistry(ctx, store, nil)
	require.NoError(t, err)
	ok, err := reloaded.IsEnabled(ctx, "120363@g.us")
	assert.NoError(err)
	assert.True(ok)

	// failed writes roll back
	store.FailSave = errors.New("disk full")
	_, err = reloaded.Enable(ctx, "other", "Other", "x")
	assert.Error(err)
	ok, _ = reloaded.IsEnabled(ctx, "other")
	assert.False(ok)
	_, err = reloaded.Disable(ctx, "120363@g.us")
	assert.Error(err)
	ok, _ = reloaded.IsEnabled(ctx, "120363@g.us")
	assert.True(ok)
}

func TestDocRegistryNullDocument(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store := docstore.NewMemDocStore()
	require.NoError(t, store.Save(ctx, []byte("null")))

	reg, err := NewDocRegistry(ctx, store, nil)
	require.NoError(t, err)
	list, err := reg.List(ctx)
	assert.NoError(err)
	assert.Empty(list)

	created, err := reg.Enable(ctx, "g1", "Group One", "admin1")
	assert.NoError(err)
	assert.True(created)
	ok, err := reg.IsEnabled(ctx, "g1")
	assert.NoError(err)
	assert.True(ok)
}

func TestFormatGroupsList(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("📋 Enabled Groups\n\nNo groups are currently enabled.", FormatGroupsList(nil))

	out := FormatGroupsList([]Group{
		{ID: "g1", Name: "Book Club", EnabledAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)},
		{ID: "g2", Name: "Chess", EnabledAt: time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)},
	})
	assert.True(strings.HasPrefix(out, "📋 Enabled Groups\n\n1. Book Club\n   ID: g1\n   Added: 2024-03-05\n\n2. Chess"))
	assert.True(strings.HasSuffix(out, "Total: 2 enabled groups"))
}
