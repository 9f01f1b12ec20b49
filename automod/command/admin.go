package command

import (
	"context"
	"log/slog"
	"slices"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/cachestore"
)

const adminCacheName = "admins"

// Resolves whether a user administers a group chat. Admin lists are fetched from the transport and cached.
type AdminChecker struct {
	Transport automod.Transport
	// optional; without it every check hits the transport
	Cache  cachestore.CacheStore
	Logger *slog.Logger
}

// Lookup failures are logged and treated as "not an admin". Direct chats have no admins.
func (a *AdminChecker) IsAdmin(ctx context.Context, chatID, userID string, isGroup bool) bool {
	if !isGroup {
		return false
	}
	admins, err := a.groupAdmins(ctx, chatID)
	if err != nil {
		a.Logger.Error("failed to fetch group admins", "chat", chatID, "err", err)
		return false
	}
	return slices.Contains(admins, userID)
}

func (a *AdminChecker) groupAdmins(ctx context.Context, chatID string) ([]string, error) {
	if a.Cache != nil {
		admins, ok, err := a.Cache.Get(ctx, adminCacheName, chatID)
		if err != nil {
			a.Logger.Warn("admin cache read failed", "chat", chatID, "err", err)
		} else if ok {
			return admins, nil
		}
	}
	admins, err := a.Transport.GetGroupAdmins(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if a.Cache != nil {
		if err := a.Cache.Set(ctx, adminCacheName, chatID, admins); err != nil {
			a.Logger.Warn("admin cache write failed", "chat", chatID, "err", err)
		}
	}
	return admins, nil
}

// Forgets the cached admin list for a chat, eg after membership changes.
func (a *AdminChecker) Purge(ctx context.Context, chatID string) error {
	if a.Cache == nil {
		return nil
	}
	return a.Cache.Purge(ctx, adminCacheName, chatID)
}
