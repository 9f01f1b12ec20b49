package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/groups"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/ledger"
)

const DefaultTopCount = 10

type commandFunc func(ctx context.Context, in *automod.Inbound, args []string) (string, error)

type commandSpec struct {
	fn        commandFunc
	adminOnly bool
	// usable in groups where the bot is not enabled
	management bool
}

// Dispatches slash commands from chat to the ledger and group registry, replying in the same chat.
type Handler struct {
	Logger    *slog.Logger
	Transport automod.Transport
	Ledger    *ledger.Ledger
	Groups    groups.Registry
	Admins    *AdminChecker

	commands map[string]commandSpec
}

func NewHandler(logger *slog.Logger, transport automod.Transport, led *ledger.Ledger, reg groups.Registry, admins *AdminChecker) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		Logger:    logger.With("component", "command"),
		Transport: transport,
		Ledger:    led,
		Groups:    reg,
		Admins:    admins,
	}
	h.commands = map[string]commandSpec{
		"/addgroup":           {fn: h.addGroup, adminOnly: true, management: true},
		"/enable":             {fn: h.addGroup, adminOnly: true, management: true},
		"/removegroup":        {fn: h.removeGroup, adminOnly: true, management: true},
		"/disable":            {fn: h.removeGroup, adminOnly: true, management: true},
		"/listgroups":         {fn: h.listGroups, adminOnly: true, management: true},
		"/warn":               {fn: h.warn, adminOnly: true},
		"/removewarn":         {fn: h.removeWarn, adminOnly: true},
		"/appreciate":         {fn: h.appreciate, adminOnly: true},
		"/removeappreciation": {fn: h.removeAppreciation, adminOnly: true},
		"/stats":              {fn: h.stats, adminOnly: true},
		"/allstats":           {fn: h.allStats, adminOnly: true},
		"/top":                {fn: h.top, adminOnly: true},
		"/help":               {fn: h.help},
	}
	return h
}

// Splits command text into the lower-cased command name and its arguments. A "/cmd@botname" suffix is dropped.
func parseCommand(text string) (string, []string) {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil
	}
	name := strings.ToLower(parts[0])
	name, _, _ = strings.Cut(name, "@")
	return name, parts[1:]
}

func (h *Handler) IsGroupManagement(text string) bool {
	name, _ := parseCommand(text)
	spec, ok := h.commands[name]
	return ok && spec.management
}

// Handles one command message. Every outcome (including refusals and failures) is answered in the chat; the returned error is only for failing to send that answer.
func (h *Handler) HandleCommand(ctx context.Context, in *automod.Inbound) error {
	name, args := parseCommand(in.Text)
	logger := h.Logger.With("command", name, "chat", in.ChatID, "sender", in.SenderID)

	spec, ok := h.commands[name]
	if !ok {
		commandCount.WithLabelValues("unknown", "unknown").Inc()
		return h.reply(ctx, in, textUnknownCommand)
	}

	if spec.adminOnly && !h.Admins.IsAdmin(ctx, in.ChatID, in.SenderID, in.IsGroup) {
		commandCount.WithLabelValues(name, "denied").Inc()
		logger.Info("refused admin command from non-admin")
		return h.reply(ctx, in, textAdminRequired)
	}

	text, err := h.run(ctx, spec.fn, in, args)
	if err != nil {
		commandCount.WithLabelValues(name, "error").Inc()
		logger.Error("command failed", "err", err)
		return h.reply(ctx, in, textCommandError)
	}
	commandCount.WithLabelValues(name, "ok").Inc()
	return h.reply(ctx, in, text)
}

func (h *Handler) run(ctx context.Context, fn commandFunc, in *automod.Inbound, args []string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command panic: %v", r)
		}
	}()
	return fn(ctx, in, args)
}

func (h *Handler) reply(ctx context.Context, in *automod.Inbound, text string) error {
	if err := h.Transport.SendText(ctx, in.ChatID, text, in.MessageID); err != nil {
		return fmt.Errorf("sending command reply: %w", err)
	}
	return nil
}

// The user a moderation command acts on: the first mentioned user, else the sender of the replied-to message.
func targetUser(in *automod.Inbound) string {
	if len(in.Mentions) > 0 {
		return in.Mentions[0]
	}
	return in.QuotedSenderID
}

// Free-form reason following the target. Leading "@user" arguments are the target itself, not part of the reason.
func reasonArgs(args []string) string {
	for len(args) > 0 && strings.HasPrefix(args[0], "@") {
		args = args[1:]
	}
	return strings.Join(args, " ")
}

func (h *Handler) addGroup(ctx context.Context, in *automod.Inbound, args []string) (string, error) {
	if !in.IsGroup {
		return textGroupOnly, nil
	}
	enabled, err := h.Groups.IsEnabled(ctx, in.ChatID)
	if err != nil {
		return "", err
	}
	if enabled {
		if in.ChatName != "" {
			// keep the stored name current; failure here is harmless
			if err := h.Groups.Rename(ctx, in.ChatID, in.ChatName); err != nil {
				h.Logger.Warn("failed to update group name", "chat", in.ChatID, "err", err)
			}
		}
		return textGroupAlreadyEnabled, nil
	}
	created, err := h.Groups.Enable(ctx, in.ChatID, in.ChatName, in.SenderID)
	if err != nil {
		h.Logger.Error("failed to enable group", "chat", in.ChatID, "err", err)
		return textGroupEnableFailed, nil
	}
	if !created {
		return textGroupAlreadyEnabled, nil
	}
	name := in.ChatName
	if name == "" {
		name = "Unknown Group"
	}
	return fmt.Sprintf(textGroupEnabled, name), nil
}

func (h *Handler) removeGroup(ctx context.Context, in *automod.Inbound, args []string) (string, error) {
	if !in.IsGroup {
		return textGroupOnly, nil
	}
	removed, err := h.Groups.Disable(ctx, in.ChatID)
	if err != nil {
		h.Logger.Error("failed to disable group", "chat", in.ChatID, "err", err)
		return textGroupDisableFailed, nil
	}
	if !removed {
		return textGroupNotEnabled, nil
	}
	return textGroupDisabled, nil
}

func (h *Handler) listGroups(ctx context.Context, in *automod.Inbound, args []string) (string, error) {
	list, err := h.Groups.List(ctx)
	if err != nil {
		return "", err
	}
	return groups.FormatGroupsList(list), nil
}

func (h *Handler) warn(ctx context.Context, in *automod.Inbound, args []string) (string, error) {
	target := targetUser(in)
	if target == "" {
		if len(args) == 0 {
			return textWarnUsage, nil
		}
		return textWarnNoTarget, nil
	}
	reason := reasonArgs(args)
	if reason == "" {
		reason = defaultWarnReason
	}
	if _, err := h.Ledger.AddWarning(ctx, target, manualWarningPrefix+reason); err != nil {
		return "", err
	}
	rec := h.Ledger.GetUserStats(ctx, target)
	return fmt.Sprintf(textWarnGiven, reason, len(rec.Warnings)), nil
}

func (h *Handler) removeWarn(ctx context.Context, in *automod.Inbound, args []string) (string, error) {
	target := targetUser(in)
	if target == "" {
		return textRemoveWarnNoTarget, nil
	}
	_, err := h.Ledger.RemoveWarning(ctx, target)
	if errors.Is(err, ledger.ErrNotFound) {
		return textNoWarnings, nil
	} else if err != nil {
		return "", err
	}
	rec := h.Ledger.GetUserStats(ctx, target)
	return fmt.Sprintf(textWarnRemoved, len(rec.Warnings)), nil
}

func (h *Handler) appreciate(ctx context.Context, in *automod.Inbound, args []string) (string, error) {
	target := targetUser(in)
	if target == "" {
		if len(args) == 0 {
			return textAppreciateUsage, nil
		}
		return textAppreciateNoTarget, nil
	}
	reason := reasonArgs(args)
	if reason == "" {
		reason = defaultAppreciateReason
	}
	if _, err := h.Ledger.AddAppreciation(ctx, target, reason); err != nil {
		return "", err
	}
	rec := h.Ledger.GetUserStats(ctx, target)
	return fmt.Sprintf(textAppreciationGiven, reason, len(rec.Appreciations)), nil
}

func (h *Handler) removeAppreciation(ctx context.Context, in *automod.Inbound, args []string) (string, error) {
	target := targetUser(in)
	if target == "" {
		return textRemoveApprNoTarget, nil
	}
	_, err := h.Ledger.RemoveAppreciation(ctx, target)
	if errors.Is(err, ledger.ErrNotFound) {
		return textNoAppreciations, nil
	} else if err != nil {
		return "", err
	}
	rec := h.Ledger.GetUserStats(ctx, target)
	return fmt.Sprintf(textAppreciationRemoved, len(rec.Appreciations)), nil
}

func (h *Handler) stats(ctx context.Context, in *automod.Inbound, args []string) (string, error) {
	target := targetUser(in)
	name := ledger.DisplayName(target)
	if target == "" {
		target = in.SenderID
		name = in.SenderName
		if name == "" {
			name = ledger.DisplayName(target)
		}
	}
	h.Ledger.EnsureUser(ctx, target)
	return ledger.FormatUserStats(name, h.Ledger.GetUserStats(ctx, target)), nil
}

func (h *Handler) allStats(ctx context.Context, in *automod.Inbound, args []string) (string, error) {
	return ledger.FormatAllStats(h.Ledger.GetAllStats(ctx)), nil
}

// /top [field] [count], in either order
func (h *Handler) top(ctx context.Context, in *automod.Inbound, args []string) (string, error) {
	rawField := ""
	k := DefaultTopCount
	for _, a := range args {
		if n, err := strconv.Atoi(a); err == nil && n > 0 {
			k = n
			continue
		}
		rawField = a
	}
	field, err := ledger.ParseField(rawField)
	if err != nil {
		return textTopUsage, nil
	}
	ranked, err := h.Ledger.GetTopUsers(ctx, field, k)
	if err != nil {
		return "", err
	}
	return ledger.FormatTopUsers(field, ranked), nil
}

func (h *Handler) help(ctx context.Context, in *automod.Inbound, args []string) (string, error) {
	return textHelp, nil
}
