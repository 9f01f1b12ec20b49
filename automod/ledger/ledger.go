package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/docstore"
)

var (
	// Returned when removing a warning or appreciation from a user who has none.
	ErrNotFound = errors.New("no entries found")
	// Returned when recording a message with a category which is not tallied (eg, SuperOffensive).
	ErrInvalidCategory = errors.New("category is not tallied")
	ErrUnknownField    = errors.New("unknown stats field")
)

// Ranking field for the message total; every tally category label is also a valid field.
const FieldTotalMessages = "totalMessages"

// Durable per-user counters and event logs.
//
// The ledger is the single writer of user records. All mutations are serialized by one lock, and each is immediately followed by a full write of the whole document to the backing DocStore (write-through). A failed write is logged and counted, and the in-memory state is kept. Reads never mutate or flush, and return deep copies.
type Ledger struct {
	logger *slog.Logger
	store  docstore.DocStore
	now    func() time.Time

	mu    sync.RWMutex
	users map[string]*UserRecord
	// user IDs in insertion order; used for stable ranking tie-breaks
	order []string
}

// Loads existing state from the store. A missing document starts an empty ledger; an unreadable or corrupt one is an error, rather than silently overwriting it on the first flush.
func New(ctx context.Context, store docstore.DocStore, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Ledger{
		logger: logger.With("component", "ledger"),
		store:  store,
		now:    time.Now,
		users:  make(map[string]*UserRecord),
	}

	raw, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading user stats: %w", err)
	}
	if len(raw) == 0 {
		l.logger.Info("no existing user stats, starting empty ledger")
		return l, nil
	}

	var doc map[string]*UserRecord
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing user stats: %w", err)
	}
	for uid, rec := range doc {
		if rec == nil {
			rec = newUserRecord()
		}
		rec.normalize()
		if rec.TotalMessages != rec.CategorySum() {
			l.logger.Warn("loaded user record with inconsistent totals", "user", uid, "total", rec.TotalMessages, "sum", rec.CategorySum())
		}
		l.users[uid] = rec
		l.order = append(l.order, uid)
	}
	// JSON object order is not preserved, so loaded users get a deterministic order
	sort.Strings(l.order)
	ledgerUsers.Set(float64(len(l.order)))
	l.logger.Info("user stats loaded", "users", len(l.order))
	return l, nil
}

// must be called with lock held
func (l *Ledger) getOrCreate(userID string) *UserRecord {
	rec, ok := l.users[userID]
	if !ok {
		rec = newUserRecord()
		l.users[userID] = rec
		l.order = append(l.order, userID)
		ledgerUsers.Set(float64(len(l.order)))
	}
	return rec
}

// Writes the entire document. Must be called with lock held.
func (l *Ledger) flush(ctx context.Context) {
	start := time.Now()
	defer func() {
		ledgerFlushDuration.Observe(time.Since(start).Seconds())
	}()

	doc, err := json.MarshalIndent(l.users, "", "  ")
	if err != nil {
		ledgerFlushErrors.Inc()
		l.logger.Error("failed to serialize user stats", "err", err)
		return
	}
	if err := l.store.Save(ctx, doc); err != nil {
		ledgerFlushErrors.Inc()
		l.logger.Error("failed to persist user stats", "err", err)
	}
}

func (l *Ledger) newEntry(reason string) Entry {
	now := l.now().UTC()
	return Entry{
		Reason:    reason,
		Timestamp: now,
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
	}
}

// Counts one classified message: increments the total and the category tally together.
func (l *Ledger) RecordMessage(ctx context.Context, userID string, cat automod.Category) error {
	if !cat.IsTally() {
		return fmt.Errorf("%w: %s", ErrInvalidCategory, cat)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.getOrCreate(userID)
	rec.TotalMessages++
	rec.Categories[cat]++
	ledgerMutations.WithLabelValues("record_message").Inc()
	l.flush(ctx)
	l.logger.Debug("updated message stats", "user", userID, "category", cat)
	return nil
}

func (l *Ledger) AddWarning(ctx context.Context, userID, reason string) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.getOrCreate(userID)
	e := l.newEntry(reason)
	rec.Warnings = append(rec.Warnings, e)
	ledgerMutations.WithLabelValues("add_warning").Inc()
	l.flush(ctx)
	l.logger.Info("added warning", "user", userID, "reason", reason, "warnings", len(rec.Warnings))
	return e, nil
}

// Removes the most recently added warning. Returns ErrNotFound, and changes nothing, if the user has no warnings.
func (l *Ledger) RemoveWarning(ctx context.Context, userID string) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.users[userID]
	if !ok || len(rec.Warnings) == 0 {
		return Entry{}, ErrNotFound
	}
	last := len(rec.Warnings) - 1
	e := rec.Warnings[last]
	rec.Warnings = rec.Warnings[:last]
	ledgerMutations.WithLabelValues("remove_warning").Inc()
	l.flush(ctx)
	l.logger.Info("removed warning", "user", userID, "warnings", len(rec.Warnings))
	return e, nil
}

func (l *Ledger) AddAppreciation(ctx context.Context, userID, reason string) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.getOrCreate(userID)
	e := l.newEntry(reason)
	rec.Appreciations = append(rec.Appreciations, e)
	ledgerMutations.WithLabelValues("add_appreciation").Inc()
	l.flush(ctx)
	l.logger.Info("added appreciation", "user", userID, "reason", reason, "appreciations", len(rec.Appreciations))
	return e, nil
}

// Removes the most recently added appreciation. Returns ErrNotFound, and changes nothing, if the user has none.
func (l *Ledger) RemoveAppreciation(ctx context.Context, userID string) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.users[userID]
	if !ok || len(rec.Appreciations) == 0 {
		return Entry{}, ErrNotFound
	}
	last := len(rec.Appreciations) - 1
	e := rec.Appreciations[last]
	rec.Appreciations = rec.Appreciations[:last]
	ledgerMutations.WithLabelValues("remove_appreciation").Inc()
	l.flush(ctx)
	l.logger.Info("removed appreciation", "user", userID, "appreciations", len(rec.Appreciations))
	return e, nil
}

// Registers a user with an all-zero record if they have none yet, flushing only when a record was created. Returns whether one was created.
//
// Used by stats queries, so a queried user shows up in later listings; the read methods themselves never create records.
func (l *Ledger) EnsureUser(ctx context.Context, userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.users[userID]; ok {
		return false
	}
	l.getOrCreate(userID)
	ledgerMutations.WithLabelValues("ensure_user").Inc()
	l.flush(ctx)
	l.logger.Debug("created empty user record", "user", userID)
	return true
}

// Returns a copy of the user's record. Unknown users get an all-zero record; nothing is created or persisted for them.
func (l *Ledger) GetUserStats(ctx context.Context, userID string) UserRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, ok := l.users[userID]
	if !ok {
		return newUserRecord().clone()
	}
	return rec.clone()
}

// Returns copies of all records, in insertion order.
func (l *Ledger) GetAllStats(ctx context.Context) []UserStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]UserStats, 0, len(l.order))
	for _, uid := range l.order {
		out = append(out, UserStats{UserID: uid, Record: l.users[uid].clone()})
	}
	return out
}

// Returns up to k users with the highest value of the given field (FieldTotalMessages or a tally category label), descending. Ties keep insertion order.
func (l *Ledger) GetTopUsers(ctx context.Context, field string, k int) ([]Ranked, error) {
	project, err := projection(field)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	ranked := make([]Ranked, 0, len(l.order))
	for _, uid := range l.order {
		ranked = append(ranked, Ranked{UserID: uid, Value: project(l.users[uid])})
	}
	l.mu.RUnlock()

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})
	if k >= 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked, nil
}

func projection(field string) (func(*UserRecord) int, error) {
	if field == FieldTotalMessages {
		return func(r *UserRecord) int { return r.TotalMessages }, nil
	}
	cat := automod.Category(field)
	if !cat.IsTally() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return func(r *UserRecord) int { return r.Categories[cat] }, nil
}
