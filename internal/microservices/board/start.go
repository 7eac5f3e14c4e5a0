// Package board wires one kitchen display: the board loop, the order
// source sync, the Redis mirror, the HTTP API and the terminal board.
package board

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"kitchen-display/internal/common/clock"
	"kitchen-display/internal/common/httpx"
	"kitchen-display/internal/common/logger"
	"kitchen-display/internal/config"
	"kitchen-display/internal/connections/cache"
	"kitchen-display/internal/connections/database"
	"kitchen-display/internal/connections/rabbitmq"
	"kitchen-display/internal/microservices/board/handlers"
	"kitchen-display/internal/microservices/board/repository"
	"kitchen-display/internal/microservices/board/service"
	"kitchen-display/internal/microservices/board/syncer"
	"kitchen-display/internal/microservices/board/tui"
	"kitchen-display/internal/microservices/notificator"
)

const (
	ModeDisplay  = "display"
	ModeHeadless = "headless"
)

// RunOptions select how the process presents the board.
type RunOptions struct {
	Mode string
	// Seed loads the demo orders when no database is configured.
	Seed bool
}

// Run starts every configured part of the display and blocks until ctx is
// done or, in display mode, the operator quits.
func Run(ctx context.Context, cfg *config.Config, ro RunOptions) error {
	lg := logger.New("kitchen-display")
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := service.OptionsFromConfig(cfg.Display)
	publisher := syncer.NewPublisher(opts.Display, cfg.Display.OutboxSize, logger.New("syncer"))
	loop := service.NewLoop(opts, clock.Real(), publisher, logger.New("board"))
	checks := map[string]handlers.HealthCheck{}

	var source syncer.Source
	if cfg.DatabaseEnabled() {
		pool, err := database.ConnectDB(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		source = repository.NewOrdersRepository(pool)
		checks["postgres"] = pingPool(pool)
		lg.Info("db_connected", map[string]any{"host": cfg.Database.Host, "database": cfg.Database.Database})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(gctx) })
	g.Go(func() error { publisher.Run(gctx); return nil })

	if cfg.RabbitEnabled() {
		var current atomic.Pointer[rabbitmq.Client]
		dial := func() (syncer.Broker, error) {
			c, err := rabbitmq.Dial(cfg.RabbitMQ)
			if err != nil {
				return nil, err
			}
			current.Store(c)
			return c, nil
		}
		checks["rabbitmq"] = func(context.Context) error { return current.Load().Ping() }

		slg := logger.New("syncer")
		consumer := syncer.NewConsumer(loop, otel.Tracer("kitchen-display/syncer"), slg)
		adapter := syncer.NewAdapter(opts.Display, dial, source, loop, consumer, publisher, slg)
		g.Go(func() error { return adapter.Run(gctx) })
	} else if source != nil {
		adapter := syncer.NewAdapter(opts.Display, nil, source, loop, nil, publisher, logger.New("syncer"))
		g.Go(func() error { adapter.LoadWithRetry(gctx); return nil })
	}

	if source == nil && ro.Seed {
		g.Go(func() error {
			rows, err := DemoOrders()
			if err != nil {
				return err
			}
			return loop.Reload(gctx, rows)
		})
	}

	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			cancel()
			_ = g.Wait()
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		g.Go(func() error {
			notificator.Start(gctx, client, loop, opts.Display, cfg.Redis.TTL)
			return nil
		})
	}

	if cfg.HTTP.Port > 0 {
		h := handlers.New(loop, checks, logger.New("http"))
		srv := httpx.New(cfg.HTTP.Port, handlers.Router(h))
		lg.Info("http_listening", map[string]any{"port": cfg.HTTP.Port})
		g.Go(func() error { return srv.Run(gctx) })
	}

	if ro.Mode == ModeDisplay {
		g.Go(func() error {
			defer cancel()
			boards, unsubscribe := loop.Subscribe()
			defer unsubscribe()
			p := tea.NewProgram(tui.NewModel(boards, loop.Command), tea.WithAltScreen(), tea.WithContext(gctx))
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("terminal board: %w", err)
			}
			return nil
		})
	}

	lg.Info("service_started", map[string]any{"display": opts.Display, "mode": ro.Mode})
	err := g.Wait()
	lg.Info("service_stopped", map[string]any{"display": opts.Display})
	return err
}

func pingPool(pool *pgxpool.Pool) handlers.HealthCheck {
	return func(ctx context.Context) error { return pool.Ping(ctx) }
}
