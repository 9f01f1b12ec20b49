package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"

	"github.com/cenkalti/backoff/v4"
)

const (
	OffensiveWarningReason = "Automated: Offensive message detected"
	OffensiveNoticeText    = "⚠️ Warning: Your message was deleted for being offensive. This is an automated warning."
)

const (
	StepDelete = "delete"
	StepWarn   = "warn"
	StepNotice = "notice"
)

// Per-step result of handling an offensive message. Each step is attempted regardless of the others; a nil error means the step succeeded.
type RemediationReport struct {
	DeleteErr error
	WarnErr   error
	NoticeErr error
}

func (r RemediationReport) Complete() bool {
	return r.DeleteErr == nil && r.WarnErr == nil && r.NoticeErr == nil
}

// Combined error of all failed steps, or nil.
func (r RemediationReport) Err() error {
	var errs []error
	if r.DeleteErr != nil {
		errs = append(errs, fmt.Errorf("%s: %w", StepDelete, r.DeleteErr))
	}
	if r.WarnErr != nil {
		errs = append(errs, fmt.Errorf("%s: %w", StepWarn, r.WarnErr))
	}
	if r.NoticeErr != nil {
		errs = append(errs, fmt.Errorf("%s: %w", StepNotice, r.NoticeErr))
	}
	return errors.Join(errs...)
}

// Retry policy for transport calls made during remediation.
type RetryOptions struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
	MaxRetries      uint64
}

func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		MaxElapsedTime:  20 * time.Second,
		MaxRetries:      3,
	}
}

func (eng *Engine) retryOptions() RetryOptions {
	if eng.Retry == nil {
		return DefaultRetryOptions()
	}
	return *eng.Retry
}

// Delete, warn, notify. Partial completion is an accepted outcome.
func (eng *Engine) remediate(ctx context.Context, msg automod.Message) RemediationReport {
	logger := eng.Logger.With("chat", msg.ChatID, "sender", msg.SenderID, "message", msg.MessageID)
	var rep RemediationReport

	rep.DeleteErr = eng.runStep(ctx, StepDelete, true, func() error {
		return eng.Transport.DeleteMessage(ctx, msg.ChatID, msg.MessageID)
	})
	rep.WarnErr = eng.runStep(ctx, StepWarn, false, func() error {
		_, err := eng.Ledger.AddWarning(ctx, msg.SenderID, OffensiveWarningReason)
		return err
	})
	rep.NoticeErr = eng.runStep(ctx, StepNotice, true, func() error {
		return eng.Transport.SendText(ctx, msg.ChatID, OffensiveNoticeText, "")
	})

	if rep.Complete() {
		logger.Info("removed offensive message")
	} else {
		logger.Warn("offensive message remediation incomplete", "err", rep.Err())
	}
	return rep
}

// Runs one remediation step, optionally with bounded retries. A panic inside the step is converted to an error so later steps still run.
func (eng *Engine) runStep(ctx context.Context, step string, retry bool, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in remediation step: %v", r)
		}
		status := "ok"
		if err != nil {
			status = "error"
		}
		remediationStepCount.WithLabelValues(step, status).Inc()
	}()

	if !retry {
		return fn()
	}

	opts := eng.retryOptions()
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(opts.InitialInterval),
		backoff.WithMaxInterval(opts.MaxInterval),
		backoff.WithMaxElapsedTime(opts.MaxElapsedTime),
	), opts.MaxRetries)

	op := func() error {
		err := fn()
		if errors.Is(err, automod.ErrPermanent) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.RetryNotify(op, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
		eng.Logger.Warn("remediation step failed, retrying", "step", step, "err", err, "wait", wait)
	})
}
