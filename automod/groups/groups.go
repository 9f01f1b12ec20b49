package groups

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("group not enabled")

// A group chat in which the bot is enabled. Presence in the registry is the only enabled state; there is no disabled-but-present record.
type Group struct {
	ID        string
	Name      string
	EnabledAt time.Time
	EnabledBy string
}

// Registry of enabled groups.
type Registry interface {
	// Enables a group. Returns false (and changes nothing) if it was already enabled.
	Enable(ctx context.Context, id, name, enabledBy string) (bool, error)
	// Disables a group. Returns false if it was not enabled.
	Disable(ctx context.Context, id string) (bool, error)
	IsEnabled(ctx context.Context, id string) (bool, error)
	// All enabled groups, oldest first.
	List(ctx context.Context) ([]Group, error)
	// Updates the display name of an enabled group. Returns ErrNotFound otherwise.
	Rename(ctx context.Context, id, name string) error
}

const unknownGroupName = "Unknown Group"

func FormatGroupsList(groups []Group) string {
	if len(groups) == 0 {
		return "📋 Enabled Groups\n\nNo groups are currently enabled."
	}
	var sb strings.Builder
	sb.WriteString("📋 Enabled Groups\n\n")
	for i, g := range groups {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, g.Name)
		fmt.Fprintf(&sb, "   ID: %s\n", g.ID)
		fmt.Fprintf(&sb, "   Added: %s\n\n", g.EnabledAt.UTC().Format(time.DateOnly))
	}
	fmt.Fprintf(&sb, "Total: %d enabled groups", len(groups))
	return sb.String()
}
