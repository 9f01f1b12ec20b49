package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/util"

	"golang.org/x/time/rate"
)

type SlackNotifier struct {
	SlackWebhookURL string
	Client          *http.Client
	// alerts over the limit are dropped, not queued
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

var _ Notifier = (*SlackNotifier)(nil)

// Notifier with a retrying HTTP client and a limit of one alert per 10 seconds (burst of 5).
func NewSlackNotifier(webhookURL string, logger *slog.Logger) *SlackNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	opts := util.DefaultRobustHTTPOptions()
	opts.RetryMax = 2
	opts.Timeout = 5 * time.Second
	opts.Logger = logger
	return &SlackNotifier{
		SlackWebhookURL: webhookURL,
		Client:          util.RobustHTTPClientWithOptions(opts),
		Limiter:         rate.NewLimiter(rate.Every(10*time.Second), 5),
		Logger:          logger.With("component", "slack"),
	}
}

func (n *SlackNotifier) NotifyDegraded(ctx context.Context, msg automod.Message, cause error) error {
	body := "⚠️ Modbot Degraded Classification ⚠️\n"
	body += fmt.Sprintf("chat `%s` / message `%s`\n", msg.ChatID, msg.MessageID)
	body += fmt.Sprintf("recorded as Plain: `%s`\n", cause)
	return n.sendSlackMsg(ctx, body)
}

func (n *SlackNotifier) NotifyRemediation(ctx context.Context, msg automod.Message, rep RemediationReport) error {
	body := "⚠️ Modbot Remediation Incomplete ⚠️\n"
	body += fmt.Sprintf("chat `%s` / sender `%s` / message `%s`\n", msg.ChatID, msg.SenderID, msg.MessageID)
	for _, s := range []struct {
		name string
		err  error
	}{{StepDelete, rep.DeleteErr}, {StepWarn, rep.WarnErr}, {StepNotice, rep.NoticeErr}} {
		if s.err != nil {
			body += fmt.Sprintf("%s: failed (`%s`)\n", s.name, s.err)
		} else {
			body += fmt.Sprintf("%s: ok\n", s.name)
		}
	}
	return n.sendSlackMsg(ctx, body)
}

type SlackWebhookBody struct {
	Text string `json:"text"`
}

// Sends a simple slack message to a channel via "incoming webhook".
//
// The slack incoming webhook must be already configured in the slack workplace.
func (n *SlackNotifier) sendSlackMsg(ctx context.Context, msg string) error {
	if n.Limiter != nil && !n.Limiter.Allow() {
		notifyCount.WithLabelValues("dropped").Inc()
		if n.Logger != nil {
			n.Logger.Debug("slack alert rate limited, dropping")
		}
		return nil
	}

	body, err := json.Marshal(SlackWebhookBody{Text: msg})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.SlackWebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	if resp.StatusCode != 200 || buf.String() != "ok" {
		return fmt.Errorf("failed slack webhook POST request. status=%d", resp.StatusCode)
	}
	notifyCount.WithLabelValues("sent").Inc()
	return nil
}
