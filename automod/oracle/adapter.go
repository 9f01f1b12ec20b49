package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/keyword"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/setstore"
)

const DefaultTimeout = 10 * time.Second

// Name of the set (in a setstore) holding operator-supplied denylist words.
const DenylistSetName = "denylist"

var ErrInvalidLabel = errors.New("oracle answered with an unrecognized label")

// Classifies message text: a local denylist check first, then at most one oracle call.
//
// Classify never returns an error. Any oracle failure, timeout, or unrecognized answer yields a degraded Plain result carrying the cause.
type Adapter struct {
	Completer Completer
	// if nil, DefaultDenylist is used
	Denylist *keyword.Denylist
	// per-call deadline; zero means DefaultTimeout
	Timeout time.Duration
	Logger  *slog.Logger
}

// Builds the effective denylist: the built-in words plus every member of the named set, if the store has it.
func LoadDenylist(ctx context.Context, sets setstore.SetStore, name string) (*keyword.Denylist, error) {
	words := append([]string{}, keyword.DefaultDenylistWords...)
	if sets != nil {
		extra, err := sets.Members(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("loading denylist set %s: %w", name, err)
		}
		words = append(words, extra...)
	}
	return keyword.NewDenylist(words...), nil
}

func (a *Adapter) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

func (a *Adapter) Classify(ctx context.Context, text string) automod.Result {
	dl := a.Denylist
	if dl == nil {
		dl = keyword.DefaultDenylist()
	}
	if tok := dl.Match(text); tok != "" {
		oracleCount.WithLabelValues("denylist").Inc()
		oracleCategory.WithLabelValues(automod.SuperOffensive.String()).Inc()
		a.logger().Debug("denylist match, skipping oracle", "token", tok)
		return automod.Ok(automod.SuperOffensive)
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	raw, err := a.Completer.Complete(callCtx, SystemInstruction, BuildPrompt(text))
	oracleDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if callCtx.Err() != nil && !errors.Is(err, callCtx.Err()) {
			err = fmt.Errorf("%w: %w", callCtx.Err(), err)
		}
		return a.degrade("error", err)
	}

	cat, err := automod.ParseCategory(raw)
	if err != nil {
		return a.degrade("invalid", fmt.Errorf("%w: %q", ErrInvalidLabel, raw))
	}
	oracleCount.WithLabelValues("ok").Inc()
	oracleCategory.WithLabelValues(cat.String()).Inc()
	return automod.Ok(cat)
}

func (a *Adapter) degrade(status string, cause error) automod.Result {
	oracleCount.WithLabelValues(status).Inc()
	oracleDegraded.Inc()
	oracleCategory.WithLabelValues(automod.Plain.String()).Inc()
	a.logger().Warn("classification degraded, defaulting to Plain", "err", cause)
	return automod.Degraded(cause)
}
