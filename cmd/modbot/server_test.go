package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/docstore"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/engine"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Delivers a fixed batch of messages, then blocks until ctx is done.
type sliceListener struct {
	msgs      []automod.Inbound
	delivered chan struct{}
}

func (l *sliceListener) Listen(ctx context.Context, handle func(ctx context.Context, in *automod.Inbound) error) error {
	for i := range l.msgs {
		_ = handle(ctx, &l.msgs[i])
	}
	close(l.delivered)
	<-ctx.Done()
	return ctx.Err()
}

func oracleServer(t *testing.T, answer string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": answer},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestServerPipeline(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	setsPath := filepath.Join(dir, "sets.json")
	require.NoError(t, os.WriteFile(setsPath, []byte(`{"denylist": ["frobnicate"]}`), 0o644))

	tr := engine.NewMockTransport()
	tr.Admins["g1"] = []string{"admin1"}

	group := func(id, sender, text string) automod.Inbound {
		return automod.Inbound{ChatID: "g1", ChatName: "Test Group", SenderID: sender, MessageID: id, Text: text, IsGroup: true}
	}
	listener := &sliceListener{
		delivered: make(chan struct{}),
		msgs: []automod.Inbound{
			// ignored: group not enabled yet
			group("m0", "u1", "anyone here?"),
			group("m1", "admin1", "/addgroup"),
			group("m2", "u1", "that cat video was hilarious"),
			group("m3", "u2", "go frobnicate yourself"),
			// direct messages are never classified
			{ChatID: "u3", SenderID: "u3", MessageID: "m4", Text: "hello bot"},
		},
	}

	statsPath := filepath.Join(dir, "data", "user_stats.json")
	srv, err := buildServer(context.Background(), Config{
		OracleAPIKey:    "test-key",
		OracleBaseURL:   oracleServer(t, "Funny").URL,
		OracleTimeout:   time.Second,
		Spacing:         10 * time.Millisecond,
		SetsFileJSON:    setsPath,
		StatsPath:       statsPath,
		GroupsPath:      filepath.Join(dir, "data", "enabled_groups.json"),
		AdminCacheTTL:   time.Minute,
		ShutdownTimeout: 5 * time.Second,
	}, tr, listener)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Run(ctx)
	}()

	<-listener.delivered
	cancel()
	select {
	case err := <-errc:
		assert.NoError(err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}

	assert.Equal([]string{"g1/m3"}, tr.DeletedMessages())

	var texts []string
	for _, s := range tr.SentTexts() {
		texts = append(texts, s.Text)
	}
	assert.Contains(texts, engine.OffensiveNoticeText)
	require.NotEmpty(t, texts)
	assert.Contains(texts[0], "Group Enabled Successfully")

	// queued outcomes were applied and flushed before Run returned
	store, err := docstore.NewFileDocStore(statsPath)
	require.NoError(t, err)
	led, err := ledger.New(context.Background(), store, nil)
	require.NoError(t, err)

	u1 := led.GetUserStats(context.Background(), "u1")
	assert.Equal(1, u1.TotalMessages)
	assert.Equal(1, u1.Categories[automod.Funny])

	u2 := led.GetUserStats(context.Background(), "u2")
	assert.Equal(0, u2.TotalMessages)
	require.Len(t, u2.Warnings, 1)
	assert.Equal(engine.OffensiveWarningReason, u2.Warnings[0].Reason)

	assert.Equal(0, led.GetUserStats(context.Background(), "u3").TotalMessages)
}

func TestLoadDenylist(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	dl, err := loadDenylist(ctx, "")
	require.NoError(t, err)
	assert.Equal("", dl.Match("frobnicate"))

	_, err = loadDenylist(ctx, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(err)
}
