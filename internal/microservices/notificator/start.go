package notificator

import (
	"context"
	"fmt"

	"restaurant-queue/internal/common/config"
	"restaurant-queue/internal/common/logger"
	"restaurant-queue/internal/connections/rabbitmq"
	"restaurant-queue/internal/microservices/notificator/service"
)

// Start subscribes to kitchen status notifications and logs them until ctx ends.
func Start(ctx context.Context, cfg config.MQ) error {
	lg := logger.New("notification-subscriber")

	rmq, err := rabbitmq.Dial(cfg)
	if err != nil {
		return fmt.Errorf("rabbitmq connect: %w", err)
	}
	defer rmq.Close()
	if err := rmq.DeclareNotifications(true); err != nil {
		return err
	}
	lg.Info("subscribed", map[string]any{"queue": rabbitmq.NotificationsQueue})

	return service.NewNotificatorService(rmq, lg).Notify(ctx)
}
