package service

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"kitchen-display/internal/common/logger"
	"kitchen-display/internal/domain"
)

const writeTimeout = 2 * time.Second

type NotificatorServiceInterface interface {
	Publish(ctx context.Context, b *domain.Board) error
	Notify(ctx context.Context, boards <-chan *domain.Board)
}

// NotificatorService mirrors each board into Redis: the latest snapshot
// under BoardKey and a copy on the UpdatesChannel.
type NotificatorService struct {
	redis   *redis.Client
	display string
	ttl     time.Duration
	lg      *logger.Logger
}

func NewNotificatorService(client *redis.Client, display string, ttl time.Duration, lg *logger.Logger) *NotificatorService {
	if ttl < 0 {
		ttl = 0
	}
	return &NotificatorService{redis: client, display: display, ttl: ttl, lg: lg}
}

func BoardKey(display string) string { return "kds:" + display + ":board" }

func UpdatesChannel(display string) string { return "kds:" + display + ":updates" }

func (ns *NotificatorService) Publish(ctx context.Context, b *domain.Board) error {
	data, err := sonic.Marshal(b)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, err = ns.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, BoardKey(ns.display), data, ns.ttl)
		pipe.Publish(ctx, UpdatesChannel(ns.display), data)
		return nil
	})
	return err
}

// Notify publishes every board received until boards is closed or ctx is
// done. Failures are logged and the next board is tried.
func (ns *NotificatorService) Notify(ctx context.Context, boards <-chan *domain.Board) {
	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-boards:
			if !ok {
				return
			}
			if b == nil {
				continue
			}
			if err := ns.Publish(ctx, b); err != nil {
				ns.lg.Error("board_notify_failed", err, map[string]any{"display": ns.display})
				continue
			}
			ns.lg.Debug("board_notified", map[string]any{"display": ns.display, "total": b.Total})
		}
	}
}
