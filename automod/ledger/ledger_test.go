package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/docstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLedger(t *testing.T) (*Ledger, *docstore.MemDocStore) {
	store := docstore.NewMemDocStore()
	l, err := New(context.Background(), store, slog.Default())
	require.NoError(t, err)
	return l, store
}

func TestLedgerRecordMessage(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	l, store := testLedger(t)

	assert.NoError(l.RecordMessage(ctx, "alice", automod.Funny))
	rec := l.GetUserStats(ctx, "alice")
	assert.Equal(1, rec.TotalMessages)
	assert.Equal(1, rec.Categories[automod.Funny])
	assert.Equal(0, rec.Categories[automod.Plain])
	assert.Equal(1, store.Saves())

	err := l.RecordMessage(ctx, "alice", automod.SuperOffensive)
	assert.ErrorIs(err, ErrInvalidCategory)
	err = l.RecordMessage(ctx, "alice", automod.Category("Spam"))
	assert.ErrorIs(err, ErrInvalidCategory)

	// rejected mutations change nothing and do not flush
	rec = l.GetUserStats(ctx, "alice")
	assert.Equal(1, rec.TotalMessages)
	assert.Equal(1, store.Saves())
}

func TestLedgerTotalsInvariant(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	l, _ := testLedger(t)

	seq := []automod.Category{automod.Funny, automod.Plain, automod.Plain, automod.Helpful, automod.Curious, automod.Plain}
	for i, c := range seq {
		user := fmt.Sprintf("user%d", i%2)
		assert.NoError(l.RecordMessage(ctx, user, c))
		rec := l.GetUserStats(ctx, user)
		assert.Equal(rec.TotalMessages, rec.CategorySum())
	}

	// warnings and appreciations never touch the totals
	_, err := l.AddWarning(ctx, "user0", "spam")
	assert.NoError(err)
	_, err = l.AddAppreciation(ctx, "user1", "nice")
	assert.NoError(err)
	for _, row := range l.GetAllStats(ctx) {
		assert.Equal(row.Record.TotalMessages, row.Record.CategorySum())
	}
	assert.Equal(3, l.GetUserStats(ctx, "user0").TotalMessages)
	assert.Equal(3, l.GetUserStats(ctx, "user1").TotalMessages)
}

func TestLedgerWarningsLIFO(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	l, store := testLedger(t)

	// empty user: not found, nothing created, no flush
	_, err := l.RemoveWarning(ctx, "bob")
	assert.ErrorIs(err, ErrNotFound)
	assert.Empty(l.GetAllStats(ctx))
	assert.Equal(0, store.Saves())

	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	first, err := l.AddWarning(ctx, "bob", "first")
	assert.NoError(err)
	second, err := l.AddWarning(ctx, "bob", "second")
	assert.NoError(err)
	assert.NotEqual(first.ID, second.ID)
	assert.Equal(2, len(l.GetUserStats(ctx, "bob").Warnings))

	removed, err := l.RemoveWarning(ctx, "bob")
	assert.NoError(err)
	assert.Equal(second, removed)
	rec := l.GetUserStats(ctx, "bob")
	assert.Equal([]Entry{first}, rec.Warnings)

	removed, err = l.RemoveWarning(ctx, "bob")
	assert.NoError(err)
	assert.Equal(first, removed)

	saves := store.Saves()
	_, err = l.RemoveWarning(ctx, "bob")
	assert.ErrorIs(err, ErrNotFound)
	assert.Empty(l.GetUserStats(ctx, "bob").Warnings)
	assert.Equal(saves, store.Saves())
}

func TestLedgerAppreciationsLIFO(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	l, _ := testLedger(t)

	_, err := l.RemoveAppreciation(ctx, "carol")
	assert.ErrorIs(err, ErrNotFound)

	_, err = l.AddAppreciation(ctx, "carol", "helpful answer")
	assert.NoError(err)
	_, err = l.AddAppreciation(ctx, "carol", "great meme")
	assert.NoError(err)

	removed, err := l.RemoveAppreciation(ctx, "carol")
	assert.NoError(err)
	assert.Equal("great meme", removed.Reason)
	rec := l.GetUserStats(ctx, "carol")
	assert.Len(rec.Appreciations, 1)
	assert.Equal("helpful answer", rec.Appreciations[0].Reason)

	// warnings are a separate sequence
	_, err = l.RemoveWarning(ctx, "carol")
	assert.ErrorIs(err, ErrNotFound)
}

func TestLedgerReadsAreCopies(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	l, store := testLedger(t)

	rec := l.GetUserStats(ctx, "nobody")
	assert.Equal(0, rec.TotalMessages)
	assert.Equal(0, rec.Categories[automod.Curious])
	assert.Empty(l.GetAllStats(ctx))
	assert.Equal(0, store.Saves())

	assert.NoError(l.RecordMessage(ctx, "dave", automod.Curious))
	rec = l.GetUserStats(ctx, "dave")
	rec.Categories[automod.Curious] = 100
	rec.Warnings = append(rec.Warnings, Entry{Reason: "sneaky"})
	fresh := l.GetUserStats(ctx, "dave")
	assert.Equal(1, fresh.Categories[automod.Curious])
	assert.Empty(fresh.Warnings)
}

func TestLedgerEnsureUser(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	l, store := testLedger(t)

	assert.True(l.EnsureUser(ctx, "kim"))
	assert.Equal(1, store.Saves())
	rows := l.GetAllStats(ctx)
	assert.Len(rows, 1)
	assert.Equal("kim", rows[0].UserID)
	assert.Equal(0, rows[0].Record.TotalMessages)
	assert.Equal(rows[0].Record.TotalMessages, rows[0].Record.CategorySum())

	// existing users are left alone, without a flush
	assert.NoError(l.RecordMessage(ctx, "kim", automod.Funny))
	assert.False(l.EnsureUser(ctx, "kim"))
	assert.Equal(2, store.Saves())
	assert.Equal(1, l.GetUserStats(ctx, "kim").TotalMessages)
}

func TestLedgerTopUsers(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	l, _ := testLedger(t)

	record := func(user string, c automod.Category, n int) {
		for i := 0; i < n; i++ {
			assert.NoError(l.RecordMessage(ctx, user, c))
		}
	}
	record("u1", automod.Plain, 2)
	record("u2", automod.Funny, 3)
	record("u3", automod.Plain, 2)
	record("u4", automod.Funny, 1)
	record("u4", automod.Plain, 4)

	top, err := l.GetTopUsers(ctx, FieldTotalMessages, 3)
	assert.NoError(err)
	assert.Equal([]Ranked{{"u4", 5}, {"u2", 3}, {"u1", 2}}, top)

	top, err = l.GetTopUsers(ctx, string(automod.Plain), 10)
	assert.NoError(err)
	// u1 and u3 tie; insertion order decides
	assert.Equal([]Ranked{{"u4", 4}, {"u1", 2}, {"u3", 2}, {"u2", 0}}, top)

	top, err = l.GetTopUsers(ctx, string(automod.Funny), 0)
	assert.NoError(err)
	assert.Empty(top)

	_, err = l.GetTopUsers(ctx, string(automod.SuperOffensive), 3)
	assert.ErrorIs(err, ErrUnknownField)
}

func TestLedgerPersistence(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	store, err := docstore.NewFileDocStore(filepath.Join(t.TempDir(), "data", "user_stats.json"))
	require.NoError(t, err)
	l, err := New(ctx, store, nil)
	require.NoError(t, err)

	assert.NoError(l.RecordMessage(ctx, "erin@s.whatsapp.net", automod.Helpful))
	_, err = l.AddWarning(ctx, "erin@s.whatsapp.net", "Manual warning: spam")
	assert.NoError(err)

	// every mutation rewrites the whole document
	raw, err := store.Load(ctx)
	require.NoError(t, err)
	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	erin := doc["erin@s.whatsapp.net"]
	assert.Equal(float64(1), erin["totalMessages"])
	assert.Equal(map[string]any{"Funny": float64(0), "Plain": float64(0), "Helpful": float64(1), "Curious": float64(0)}, erin["categories"])
	assert.Len(erin["warnings"], 1)
	assert.Len(erin["appreciations"], 0)

	reloaded, err := New(ctx, store, nil)
	require.NoError(t, err)
	assert.Equal(l.GetAllStats(ctx), reloaded.GetAllStats(ctx))
}

func TestLedgerRedisPersistence(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)

	store, err := docstore.NewRedisDocStore("redis://"+mr.Addr(), "user_stats")
	require.NoError(t, err)
	l, err := New(ctx, store, nil)
	require.NoError(t, err)
	assert.NoError(l.RecordMessage(ctx, "frank", automod.Plain))

	reloaded, err := New(ctx, store, nil)
	require.NoError(t, err)
	assert.Equal(1, reloaded.GetUserStats(ctx, "frank").Categories[automod.Plain])
}

func TestLedgerLoadFillsMissingFields(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	store := docstore.NewMemDocStore()
	require.NoError(t, store.Save(ctx, []byte(`{"gina": {"totalMessages": 2, "categories": {"Funny": 2}}, "hank": null}`)))
	l, err := New(ctx, store, nil)
	require.NoError(t, err)

	rec := l.GetUserStats(ctx, "gina")
	assert.Equal(2, rec.Categories[automod.Funny])
	assert.Equal(0, rec.Categories[automod.Helpful])
	assert.NotNil(rec.Warnings)
	assert.Equal([]string{"gina", "hank"}, []string{l.GetAllStats(ctx)[0].UserID, l.GetAllStats(ctx)[1].UserID})

	require.NoError(t, store.Save(ctx, []byte(`not json`)))
	_, err = New(ctx, store, nil)
	assert.Error(err)
}

func TestLedgerPersistFailureKeepsMemoryState(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	l, store := testLedger(t)

	store.FailSave = errors.New("read-only filesystem")
	assert.NoError(l.RecordMessage(ctx, "ivan", automod.Plain))
	_, err := l.AddWarning(ctx, "ivan", "x")
	assert.NoError(err)

	rec := l.GetUserStats(ctx, "ivan")
	assert.Equal(1, rec.TotalMessages)
	assert.Len(rec.Warnings, 1)
	assert.Equal(0, store.Saves())
}

func TestLedgerConcurrent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	l, store := testLedger(t)

	// automated tallies racing with manual moderation commands; run with -race
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				assert.NoError(l.RecordMessage(ctx, "shared", automod.TallyCategories[(i+j)%4]))
				if j%5 == 0 {
					_, err := l.AddWarning(ctx, "shared", "race")
					assert.NoError(err)
				}
				_ = l.GetUserStats(ctx, "shared")
			}
		}(i)
	}
	wg.Wait()

	rec := l.GetUserStats(ctx, "shared")
	assert.Equal(100, rec.TotalMessages)
	assert.Equal(100, rec.CategorySum())
	assert.Len(rec.Warnings, 20)
	assert.Equal(120, store.Saves())
}
