// kitchen-display runs one kitchen display board.
//
// In display mode the board is drawn in the terminal and driven from the
// keyboard; headless mode serves only the HTTP API and the Redis mirror,
// for boards driven by button boxes or a browser.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"kitchen-display/internal/common/logger"
	"kitchen-display/internal/config"
	"kitchen-display/internal/microservices/board"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		cfgPath string
		mode    string
		port    int
		display string
		seed    bool
		logFile string
	)
	flagSet := pflag.NewFlagSet("kitchen-display", pflag.ContinueOnError)
	flagSet.StringVarP(&cfgPath, "config", "c", "", "path to YAML config (default: config.yaml or deploy/config.example.yaml)")
	flagSet.StringVar(&mode, "mode", board.ModeDisplay, "display | headless")
	flagSet.IntVar(&port, "port", 0, "HTTP port, overrides http.port (-1 disables the API)")
	flagSet.StringVar(&display, "display", "", "display name, overrides display.name")
	flagSet.BoolVar(&seed, "seed", false, "load the demo orders when no database is configured")
	flagSet.StringVar(&logFile, "log-file", "kitchen-display.log", "where logs go in display mode")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if mode != board.ModeDisplay && mode != board.ModeHeadless {
		return fmt.Errorf("--mode must be %s or %s, got %q", board.ModeDisplay, board.ModeHeadless, mode)
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	switch {
	case port > 0:
		cfg.HTTP.Port = port
	case port < 0:
		cfg.HTTP.Port = 0
	}
	if display != "" {
		cfg.Display.Name = display
	}

	logger.SetLevel(cfg.Log.Level)
	if os.Getenv("DEBUG") == "1" {
		logger.SetLevel("debug")
	}
	if mode == board.ModeDisplay {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	lg := logger.New("bootstrap")
	if err := board.Run(ctx, cfg, board.RunOptions{Mode: mode, Seed: seed}); err != nil {
		lg.Error("fatal", err, nil)
		return err
	}
	return nil
}

// loadConfig reads path, or the first config file found, or falls back to
// the defaults when none exists.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		found, err := config.FindConfig()
		if errors.Is(err, fs.ErrNotExist) {
			cfg := config.Default()
			return &cfg, nil
		}
		path = found
	}
	return config.LoadConfig(path)
}
