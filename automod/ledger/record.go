package ledger

import (
	"time"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
)

// Warning or appreciation event in a user's history.
type Entry struct {
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
}

// Per-user counters and event logs. This is also the JSON shape of each value in the persisted document.
type UserRecord struct {
	TotalMessages int                      `json:"totalMessages"`
	Categories    map[automod.Category]int `json:"categories"`
	Warnings      []Entry                  `json:"warnings"`
	Appreciations []Entry                  `json:"appreciations"`
}

func newUserRecord() *UserRecord {
	rec := &UserRecord{
		Categories:    make(map[automod.Category]int, len(automod.TallyCategories)),
		Warnings:      []Entry{},
		Appreciations: []Entry{},
	}
	for _, c := range automod.TallyCategories {
		rec.Categories[c] = 0
	}
	return rec
}

// Fills in any missing fields of a record loaded from storage.
func (r *UserRecord) normalize() {
	if r.Categories == nil {
		r.Categories = make(map[automod.Category]int, len(automod.TallyCategories))
	}
	for _, c := range automod.TallyCategories {
		if _, ok := r.Categories[c]; !ok {
			r.Categories[c] = 0
		}
	}
	if r.Warnings == nil {
		r.Warnings = []Entry{}
	}
	if r.Appreciations == nil {
		r.Appreciations = []Entry{}
	}
}

// Deep copy, so callers never share state with the ledger.
func (r *UserRecord) clone() UserRecord {
	out := UserRecord{
		TotalMessages: r.TotalMessages,
		Categories:    make(map[automod.Category]int, len(r.Categories)),
		Warnings:      append([]Entry{}, r.Warnings...),
		Appreciations: append([]Entry{}, r.Appreciations...),
	}
	for k, v := range r.Categories {
		out.Categories[k] = v
	}
	return out
}

// Sum over all category tallies. Equal to TotalMessages for every consistent record.
func (r UserRecord) CategorySum() int {
	sum := 0
	for _, v := range r.Categories {
		sum += v
	}
	return sum
}

// Single user's record, as returned by whole-ledger reads.
type UserStats struct {
	UserID string
	Record UserRecord
}

// Single row of a top-K ranking.
type Ranked struct {
	UserID string
	Value  int
}
