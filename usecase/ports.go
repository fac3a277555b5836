package usecase

import (
	"context"

	"github.com/fastygo/directory/domain"
)

// Notifier sends the welcome notification for a newly created user. Calls
// must return promptly; delivery failures are the notifier's concern.
type Notifier interface {
	Welcome(ctx context.Context, user domain.User)
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) Welcome(context.Context, domain.User) {}

var _ Notifier = NopNotifier{}
