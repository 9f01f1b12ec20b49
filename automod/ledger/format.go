package ledger

import (
	"fmt"
	"strings"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
)

// Short display form of a user ID: anything after an '@' (eg, a server suffix) is dropped.
func DisplayName(userID string) string {
	name, _, _ := strings.Cut(userID, "@")
	return name
}

// Resolves a user-supplied ranking field name, case-insensitively. "total" and "messages" are accepted as shorthand for FieldTotalMessages.
func ParseField(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "", "total", "messages", strings.ToLower(FieldTotalMessages):
		return FieldTotalMessages, nil
	}
	for _, c := range automod.TallyCategories {
		if strings.ToLower(string(c)) == s {
			return string(c), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, raw)
}

func FormatUserStats(displayName string, rec UserRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Stats for %s\n\n", displayName)
	fmt.Fprintf(&sb, "📱 Total Messages: %d\n\n", rec.TotalMessages)
	sb.WriteString("📈 Message Categories:\n")
	fmt.Fprintf(&sb, "😄 Funny: %d\n", rec.Categories[automod.Funny])
	fmt.Fprintf(&sb, "💬 Plain: %d\n", rec.Categories[automod.Plain])
	fmt.Fprintf(&sb, "🤝 Helpful: %d\n", rec.Categories[automod.Helpful])
	fmt.Fprintf(&sb, "🤔 Curious: %d\n\n", rec.Categories[automod.Curious])
	fmt.Fprintf(&sb, "⚠️ Warnings: %d\n", len(rec.Warnings))
	fmt.Fprintf(&sb, "👏 Appreciations: %d", len(rec.Appreciations))
	return sb.String()
}

// Fixed-width table of all users, one row each.
func FormatAllStats(rows []UserStats) string {
	if len(rows) == 0 {
		return "📊 All User Stats\n\nNo users found."
	}

	var sb strings.Builder
	sb.WriteString("📊 All User Stats\n\n")
	sb.WriteString("```\n")
	fmt.Fprintf(&sb, "%-15s | %-5s | %-3s | %-3s | %-3s | %-3s | %-3s | %-3s\n", "User", "Msgs", "F", "P", "H", "C", "W", "A")
	sb.WriteString(strings.Repeat("-", 50) + "\n")
	for _, row := range rows {
		name := DisplayName(row.UserID)
		if r := []rune(name); len(r) > 14 {
			name = string(r[:14])
		}
		rec := row.Record
		fmt.Fprintf(&sb, "%-15s | %-5d | %-3d | %-3d | %-3d | %-3d | %-3d | %-3d\n",
			name,
			rec.TotalMessages,
			rec.Categories[automod.Funny],
			rec.Categories[automod.Plain],
			rec.Categories[automod.Helpful],
			rec.Categories[automod.Curious],
			len(rec.Warnings),
			len(rec.Appreciations),
		)
	}
	sb.WriteString("```\n\n")
	sb.WriteString("Legend: F=Funny, P=Plain, H=Helpful, C=Curious, W=Warnings, A=Appreciations")
	return sb.String()
}

func FormatTopUsers(field string, ranked []Ranked) string {
	if len(ranked) == 0 {
		return fmt.Sprintf("🏆 Top Users (%s)\n\nNo users found.", field)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 Top Users (%s)\n\n", field)
	for i, r := range ranked {
		fmt.Fprintf(&sb, "%d. %s: %d\n", i+1, DisplayName(r.UserID), r.Value)
	}
	return strings.TrimRight(sb.String(), "\n")
}
