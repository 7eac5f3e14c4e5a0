package service

import (
	"time"

	"github.com/redis/go-redis/v9"

	"kitchen-display/internal/common/logger"
)

type Service struct {
	NotificatorService NotificatorServiceInterface
}

func New(client *redis.Client, display string, ttl time.Duration, lg *logger.Logger) *Service {
	return &Service{NotificatorService: NewNotificatorService(client, display, ttl, lg)}
}
