package adapter

import "context"

// AdminNotifier delivers operational alerts to the admin team.
// Delivery is best-effort; callers log failures and carry on.
type AdminNotifier interface {
	NotifyAdmins(ctx context.Context, text string) error
}
