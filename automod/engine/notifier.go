package engine

import (
	"context"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
)

// Interface for a type that can handle sending operator notifications
type Notifier interface {
	NotifyDegraded(ctx context.Context, msg automod.Message, cause error) error
	NotifyRemediation(ctx context.Context, msg automod.Message, rep RemediationReport) error
}
