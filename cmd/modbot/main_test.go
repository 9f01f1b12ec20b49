package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyLinesSpacing(t *testing.T) {
	assert := assert.New(t)

	cls := &engine.MockClassifier{Answers: map[string]automod.Result{
		"knock knock":      automod.Ok(automod.Funny),
		"how does it work": automod.Ok(automod.Curious),
		"hello?":           automod.Degraded(errors.New("rate limited")),
	}}
	spacing := 50 * time.Millisecond
	in := strings.NewReader("knock knock\nhow does it work\nhello?\n")
	var out bytes.Buffer

	err := classifyLines(context.Background(), in, &out, cls, spacing, slog.Default())
	require.NoError(t, err)

	assert.Equal("Funny\tknock knock\nCurious\thow does it work\nPlain\tdegraded: rate limited\thello?\n", out.String())

	calls := cls.Calls()
	require.Len(t, calls, 3)
	for i := 1; i < len(calls); i++ {
		assert.GreaterOrEqual(calls[i].Start.Sub(calls[i-1].Start), spacing)
	}
}
