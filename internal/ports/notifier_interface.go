package ports

import (
	"bearer-auth-server/internal/model"
	"context"
)

// Notifier : постановка писем в очередь
type Notifier interface {
	SendNotification(ctx context.Context, message *model.EmailQueueMessage) error
}
