package ledger

import (
	"strings"
	"testing"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("15551234567", DisplayName("15551234567@s.whatsapp.net"))
	assert.Equal("12345", DisplayName("12345"))
	assert.Equal("", DisplayName(""))
}

func TestParseField(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		raw string
		out string
		ok  bool
	}{
		{raw: "", out: FieldTotalMessages, ok: true},
		{raw: "total", out: FieldTotalMessages, ok: true},
		{raw: "TotalMessages", out: FieldTotalMessages, ok: true},
		{raw: "funny", out: "Funny", ok: true},
		{raw: " Curious ", out: "Curious", ok: true},
		{raw: "offensive", ok: false},
		{raw: "super offensive", ok: false},
	}
	for _, fix := range fixtures {
		out, err := ParseField(fix.raw)
		if fix.ok {
			assert.NoError(err, fix.raw)
			assert.Equal(fix.out, out)
		} else {
			assert.ErrorIs(err, ErrUnknownField, fix.raw)
		}
	}
}

func TestFormatUserStats(t *testing.T) {
	assert := assert.New(t)

	rec := newUserRecord().clone()
	rec.TotalMessages = 3
	rec.Categories[automod.Funny] = 2
	rec.Categories[automod.Curious] = 1
	rec.Warnings = append(rec.Warnings, Entry{Reason: "x"})

	out := FormatUserStats("alice", rec)
	assert.True(strings.HasPrefix(out, "📊 Stats for alice\n"))
	assert.Contains(out, "📱 Total Messages: 3\n")
	assert.Contains(out, "😄 Funny: 2\n")
	assert.Contains(out, "💬 Plain: 0\n")
	assert.Contains(out, "🤔 Curious: 1\n")
	assert.Contains(out, "⚠️ Warnings: 1\n")
	assert.True(strings.HasSuffix(out, "👏 Appreciations: 0"))
}

func TestFormatAllStats(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("📊 All User Stats\n\nNo users found.", FormatAllStats(nil))

	rec := newUserRecord().clone()
	rec.TotalMessages = 12
	rec.Categories[automod.Plain] = 12
	out := FormatAllStats([]UserStats{
		{UserID: "123456789012345678@s.whatsapp.net", Record: rec},
		{UserID: "bob", Record: newUserRecord().clone()},
	})

	lines := strings.Split(out, "\n")
	assert.Equal("User            | Msgs  | F   | P   | H   | C   | W   | A  ", lines[3])
	assert.Equal(strings.Repeat("-", 50), lines[4])
	assert.Equal("12345678901234  | 12    | 0   | 12  | 0   | 0   | 0   | 0  ", lines[5])
	assert.Equal("bob             | 0     | 0   | 0   | 0   | 0   | 0   | 0  ", lines[6])
	assert.True(strings.HasSuffix(out, "Legend: F=Funny, P=Plain, H=Helpful, C=Curious, W=Warnings, A=Appreciations"))
}

func TestFormatTopUsers(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("🏆 Top Users (Funny)\n\nNo users found.", FormatTopUsers("Funny", nil))
	out := FormatTopUsers(FieldTotalMessages, []Ranked{{UserID: "a@x", Value: 9}, {UserID: "b", Value: 4}})
	assert.Equal("🏆 Top Users (totalMessages)\n\n1. a: 9\n2. b: 4", out)
}
