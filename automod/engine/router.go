package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/groups"
)

type CommandHandler interface {
	HandleCommand(ctx context.Context, in *automod.Inbound) error
	// whether the text is a command which also works in groups that are not enabled
	IsGroupManagement(text string) bool
}

type Enqueuer interface {
	Enqueue(msg automod.Message) bool
}

type Route string

const (
	RouteIgnored  Route = "ignored"
	RouteCommand  Route = "command"
	RouteQueued   Route = "queued"
	RouteRejected Route = "rejected"
)

// Decides what happens to each inbound chat message: dropped, dispatched as a command, or queued for classification.
type Router struct {
	Logger   *slog.Logger
	Groups   groups.Registry
	Commands CommandHandler
	Queue    Enqueuer
}

func (r *Router) Route(ctx context.Context, in *automod.Inbound) (Route, error) {
	route, err := r.route(ctx, in)
	routeCount.WithLabelValues(string(route)).Inc()
	return route, err
}

func (r *Router) route(ctx context.Context, in *automod.Inbound) (Route, error) {
	if in.FromSelf || strings.TrimSpace(in.Text) == "" {
		return RouteIgnored, nil
	}
	logger := r.Logger.With("chat", in.ChatID, "sender", in.SenderID)
	isCommand := strings.HasPrefix(in.Text, "/")

	if in.IsGroup {
		enabled, err := r.Groups.IsEnabled(ctx, in.ChatID)
		if err != nil {
			return RouteIgnored, fmt.Errorf("checking group status: %w", err)
		}
		if !enabled {
			if isCommand && r.Commands.IsGroupManagement(in.Text) {
				logger.Info("group management command in disabled group", "text", in.Text)
				return RouteCommand, r.Commands.HandleCommand(ctx, in)
			}
			logger.Debug("ignoring message in disabled group")
			return RouteIgnored, nil
		}
	}

	if isCommand {
		logger.Info("processing command", "text", in.Text)
		return RouteCommand, r.Commands.HandleCommand(ctx, in)
	}

	if !in.IsGroup {
		logger.Debug("ignoring direct message")
		return RouteIgnored, nil
	}

	if !r.Queue.Enqueue(in.Message()) {
		logger.Warn("classification queue closed, dropping message")
		return RouteRejected, nil
	}
	return RouteQueued, nil
}
