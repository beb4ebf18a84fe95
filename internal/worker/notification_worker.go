package worker

import (
	"context"

	"github.com/spec-kit/pqrs-service/internal/events"
	"github.com/spec-kit/pqrs-service/internal/service"
)

// StartNotificationWorker subscribes the notification service to lifecycle
// events and starts the delivery loop. The goroutine exits when ctx is
// cancelled.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, notifications *service.NotificationService) {
	notifications.RegisterHandlers(dispatcher)
	go notifications.Run(ctx)
}
