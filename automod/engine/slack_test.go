package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestSlackNotifier(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body SlackWebhookBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		bodies = append(bodies, body.Text)
		mu.Unlock()
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, nil)
	n.Limiter = rate.NewLimiter(rate.Limit(0.001), 2)
	msg := automod.Message{ChatID: "g1", SenderID: "u1", MessageID: "m1"}

	assert.NoError(n.NotifyDegraded(ctx, msg, errors.New("context deadline exceeded")))
	assert.NoError(n.NotifyRemediation(ctx, msg, RemediationReport{DeleteErr: ErrMockTransport}))
	// over the limit: dropped silently
	assert.NoError(n.NotifyDegraded(ctx, msg, errors.New("again")))

	mu.Lock()
	defer mu.Unlock()
	assert.Len(bodies, 2)
	assert.Contains(bodies[0], "recorded as Plain: `context deadline exceeded`")
	assert.Contains(bodies[1], "delete: failed")
	assert.Contains(bodies[1], "warn: ok")
	assert.Contains(bodies[1], "notice: ok")
}

func TestSlackNotifierBadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid_payload"))
	}))
	defer srv.Close()

	n := &SlackNotifier{SlackWebhookURL: srv.URL}
	err := n.NotifyDegraded(context.Background(), automod.Message{}, errors.New("x"))
	assert.Error(t, err)
}
