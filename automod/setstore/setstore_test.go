package setstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemSetStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewMemSetStore()
	ok, err := s.InSet(ctx, "denylist", "thing")
	assert.NoError(err)
	assert.False(ok)

	s.Add("denylist", "thing", "other")
	ok, err = s.InSet(ctx, "denylist", "thing")
	assert.NoError(err)
	assert.True(ok)

	members, err := s.Members(ctx, "denylist")
	assert.NoError(err)
	assert.Equal([]string{"other", "thing"}, members)

	members, err = s.Members(ctx, "missing")
	assert.NoError(err)
	assert.Empty(members)
}

func TestMemSetStoreLoadFromFileJSON(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	p := filepath.Join(t.TempDir(), "sets.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"denylist": ["alpha", "beta"], "other": []}`), 0o644))

	s := NewMemSetStore()
	s.Add("denylist", "stale")
	assert.NoError(s.LoadFromFileJSON(p))

	members, err := s.Members(ctx, "denylist")
	assert.NoError(err)
	assert.Equal([]string{"alpha", "beta"}, members)

	ok, err := s.InSet(ctx, "denylist", "stale")
	assert.NoError(err)
	assert.False(ok)

	assert.Error(s.LoadFromFileJSON(filepath.Join(t.TempDir(), "missing.json")))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`["not", "a", "map"]`), 0o644))
	assert.Error(s.LoadFromFileJSON(bad))
}
