package notification

import "context"

// Notifier delivers operator alerts
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}
