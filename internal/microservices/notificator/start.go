package notificator

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"kitchen-display/internal/common/logger"
	"kitchen-display/internal/domain"
	"kitchen-display/internal/microservices/notificator/service"
)

// Subscriber is the board loop's snapshot feed.
type Subscriber interface {
	Subscribe() (<-chan *domain.Board, func())
}

// Start mirrors board snapshots into Redis until ctx is done.
func Start(ctx context.Context, client *redis.Client, boards Subscriber, display string, ttl time.Duration) {
	lg := logger.New("notificator")
	svc := service.New(client, display, ttl, lg)

	ch, cancel := boards.Subscribe()
	defer cancel()
	lg.Info("notificator_started", map[string]any{"key": service.BoardKey(display), "channel": service.UpdatesChannel(display)})
	svc.NotificatorService.Notify(ctx, ch)
}
