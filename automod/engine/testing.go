package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
)

// Transport which records every call, for tests. Failures can be injected per operation.
type MockTransport struct {
	mu       sync.Mutex
	Sent     []MockSent
	Deleted  []string
	Admins   map[string][]string
	adminReq int
	// number of times each operation fails before succeeding; negative means always fail
	FailDelete int
	FailSend   int
	// error returned by injected failures; ErrMockTransport if nil
	FailErr        error
	deleteAttempts int
}

type MockSent struct {
	ChatID          string
	Text            string
	QuotedMessageID string
}

var _ automod.Transport = (*MockTransport)(nil)

var ErrMockTransport = errors.New("mock transport failure")

func NewMockTransport() *MockTransport {
	return &MockTransport{Admins: make(map[string][]string)}
}

func (t *MockTransport) SendText(ctx context.Context, chatID, text, quotedMessageID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailSend != 0 {
		if t.FailSend > 0 {
			t.FailSend--
		}
		return t.failErr()
	}
	t.Sent = append(t.Sent, MockSent{ChatID: chatID, Text: text, QuotedMessageID: quotedMessageID})
	return nil
}

func (t *MockTransport) DeleteMessage(ctx context.Context, chatID, messageID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deleteAttempts++
	if t.FailDelete != 0 {
		if t.FailDelete > 0 {
			t.FailDelete--
		}
		return t.failErr()
	}
	t.Deleted = append(t.Deleted, chatID+"/"+messageID)
	return nil
}

func (t *MockTransport) GetGroupAdmins(ctx context.Context, chatID string) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.adminReq++
	return append([]string{}, t.Admins[chatID]...), nil
}

func (t *MockTransport) SentTexts() []MockSent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]MockSent{}, t.Sent...)
}

func (t *MockTransport) DeletedMessages() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string{}, t.Deleted...)
}

// must be called with lock held
func (t *MockTransport) failErr() error {
	if t.FailErr != nil {
		return t.FailErr
	}
	return ErrMockTransport
}

func (t *MockTransport) DeleteAttempts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deleteAttempts
}

func (t *MockTransport) AdminRequests() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.adminReq
}

// Classifier which answers from a fixed table keyed by message text, for tests. Unknown text is Plain.
type MockClassifier struct {
	mu      sync.Mutex
	Answers map[string]automod.Result
	// how long each call takes
	Delay time.Duration
	// text which makes Classify panic
	PanicOn string
	calls   []MockCall
}

type MockCall struct {
	Text  string
	Start time.Time
}

func (c *MockClassifier) Classify(ctx context.Context, text string) automod.Result {
	c.mu.Lock()
	c.calls = append(c.calls, MockCall{Text: text, Start: time.Now()})
	res, ok := c.Answers[text]
	c.mu.Unlock()
	if c.PanicOn != "" && text == c.PanicOn {
		panic("mock classifier panic")
	}
	if c.Delay > 0 {
		time.Sleep(c.Delay)
	}
	if !ok {
		return automod.Ok(automod.Plain)
	}
	return res
}

func (c *MockClassifier) Calls() []MockCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]MockCall{}, c.calls...)
}
