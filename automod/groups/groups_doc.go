package groups

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/docstore"
)

// JSON value for each group ID key in the persisted document.
type groupDoc struct {
	Name      string    `json:"name"`
	EnabledAt time.Time `json:"enabledAt"`
	EnabledBy string    `json:"enabledBy"`
}

// Registry kept as a single JSON document (keyed by group ID), rewritten on every change.
type DocRegistry struct {
	logger *slog.Logger
	store  docstore.DocStore
	now    func() time.Time

	mu     sync.RWMutex
	groups map[string]groupDoc
}

var _ Registry = (*DocRegistry)(nil)

func NewDocRegistry(ctx context.Context, store docstore.DocStore, logger *slog.Logger) (*DocRegistry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &DocRegistry{
		logger: logger.With("component", "groups"),
		store:  store,
		now:    time.Now,
		groups: make(map[string]groupDoc),
	}
	raw, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading enabled groups: %w", err)
	}
	if len(raw) > 0 {
		var doc map[string]groupDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing enabled groups: %w", err)
		}
		// a "null" document decodes to a nil map
		if doc != nil {
			r.groups = doc
		}
	}
	r.logger.Info("loaded enabled groups", "count", len(r.groups))
	return r, nil
}

// must be called with lock held
func (r *DocRegistry) flush(ctx context.Context) error {
	doc, err := json.MarshalIndent(r.groups, "", "  ")
	if err != nil {
		return err
	}
	return r.store.Save(ctx, doc)
}

func (r *DocRegistry) Enable(ctx context.Context, id, name, enabledBy string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[id]; ok {
		return false, nil
	}
	if name == "" {
		name = unknownGroupName
	}
	r.groups[id] = groupDoc{Name: name, EnabledAt: r.now().UTC(), EnabledBy: enabledBy}
	if err := r.flush(ctx); err != nil {
		// registry changes are user-visible, so roll back rather than diverge from storage
		delete(r.groups, id)
		return false, fmt.Errorf("persisting enabled groups: %w", err)
	}
	r.logger.Info("enabled group", "group", id, "name", name, "by", enabledBy)
	return true, nil
}

func (r *DocRegistry) Disable(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.groups[id]
	if !ok {
		return false, nil
	}
	delete(r.groups, id)
	if err := r.flush(ctx); err != nil {
		r.groups[id] = prev
		return false, fmt.Errorf("persisting enabled groups: %w", err)
	}
	r.logger.Info("disabled group", "group", id)
	return true, nil
}

func (r *DocRegistry) IsEnabled(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.groups[id]
	return ok, nil
}

func (r *DocRegistry) List(ctx context.Context) ([]Group, error) {
	r.mu.RLock()
	out := make([]Group, 0, len(r.groups))
	for id, g := range r.groups {
		out = append(out, Group{ID: id, Name: g.Name, EnabledAt: g.EnabledAt, EnabledBy: g.EnabledBy})
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].EnabledAt.Equal(out[j].EnabledAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].EnabledAt.Before(out[j].EnabledAt)
	})
	return out, nil
}

func (r *DocRegistry) Rename(ctx context.Context, id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return ErrNotFound
	}
	prevName := g.Name
	g.Name = name
	r.groups[id] = g
	if err := r.flush(ctx); err != nil {
		g.Name = prevName
		r.groups[id] = g
		return fmt.Errorf("persisting enabled groups: %w", err)
	}
	return nil
}
