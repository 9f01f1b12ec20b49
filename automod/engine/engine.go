package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/ledger"
)

// Applies moderation decisions for classified messages: remediation for offensive messages, tallies for everything else.
//
// TODO: careful when initializing: Logger, Transport and Ledger must all be set.
type Engine struct {
	Logger    *slog.Logger
	Transport automod.Transport
	Ledger    *ledger.Ledger
	// operator alerts (optional)
	Notifier Notifier
	// retry policy for remediation transport calls (optional)
	Retry *RetryOptions
}

// Consumes outcomes until the channel is closed or ctx is done. Outcome failures are logged and never stop the loop.
func (eng *Engine) Run(ctx context.Context, outcomes <-chan Outcome) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out, ok := <-outcomes:
			if !ok {
				eng.Logger.Info("outcome channel closed, engine stopping")
				return nil
			}
			if err := eng.ProcessOutcome(ctx, out); err != nil {
				outcomeErrorCount.Inc()
				eng.Logger.Error("failed to process classification outcome", "err", err, "chat", out.Message.ChatID, "message", out.Message.MessageID)
			}
		}
	}
}

func (eng *Engine) ProcessOutcome(ctx context.Context, out Outcome) (err error) {
	// similar to an HTTP server, we want to recover any panics from processing
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("outcome processing panic: %v", r)
		}
	}()

	if out.Err != nil {
		// dropped after one attempt, nothing is recorded
		return fmt.Errorf("classification failed: %w", out.Err)
	}

	msg := out.Message
	start := time.Now()
	cat := out.Result.Category
	defer func() {
		outcomeProcessDuration.WithLabelValues(cat.String()).Observe(time.Since(start).Seconds())
		outcomeProcessCount.WithLabelValues(cat.String()).Inc()
	}()

	if out.Result.IsDegraded() {
		eng.Logger.Warn("classification degraded, recording as Plain", "cause", out.Result.Cause, "chat", msg.ChatID, "sender", msg.SenderID)
		eng.notifyDegraded(ctx, msg, out.Result.Cause)
	}

	rep, err := eng.Decide(ctx, msg, cat)
	if err != nil {
		return err
	}
	if rep != nil && !rep.Complete() {
		eng.notifyRemediation(ctx, msg, *rep)
	}
	return nil
}

// Applies the decision for one classified message. Returns a report only for SuperOffensive, in which case the message is not tallied.
func (eng *Engine) Decide(ctx context.Context, msg automod.Message, cat automod.Category) (*RemediationReport, error) {
	if cat == automod.SuperOffensive {
		rep := eng.remediate(ctx, msg)
		return &rep, nil
	}
	if err := eng.Ledger.RecordMessage(ctx, msg.SenderID, cat); err != nil {
		return nil, fmt.Errorf("recording message stats: %w", err)
	}
	eng.Logger.Debug("recorded message", "sender", msg.SenderID, "category", cat)
	return nil, nil
}

func (eng *Engine) notifyDegraded(ctx context.Context, msg automod.Message, cause error) {
	if eng.Notifier == nil {
		return
	}
	if err := eng.Notifier.NotifyDegraded(ctx, msg, cause); err != nil {
		notifyCount.WithLabelValues("error").Inc()
		eng.Logger.Error("failed to send degraded classification alert", "err", err)
	}
}

func (eng *Engine) notifyRemediation(ctx context.Context, msg automod.Message, rep RemediationReport) {
	if eng.Notifier == nil {
		return
	}
	if err := eng.Notifier.NotifyRemediation(ctx, msg, rep); err != nil {
		notifyCount.WithLabelValues("error").Inc()
		eng.Logger.Error("failed to send remediation alert", "err", err)
	}
}
