package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"restaurant-queue/internal/common/config"
	"restaurant-queue/internal/common/logger"
	"restaurant-queue/internal/domain"
	"restaurant-queue/internal/microservices/kitchen"
	"restaurant-queue/internal/microservices/notificator"
)

func main() {
	mode := flag.String("mode", "kitchen", "kitchen | notification-subscriber")
	cfgPath := flag.String("config", "", "path to config.yaml (default: search ./config.yaml, deploy/config.example.yaml)")
	servers := flag.Int("servers", 0, "kitchen: number of servers (producers)")
	cooks := flag.Int("cooks", 0, "kitchen: number of cooks (consumers)")
	capacity := flag.Int("capacity", 0, "kitchen: order queue capacity")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "servers":
			cfg.Kitchen.Servers = *servers
		case "cooks":
			cfg.Kitchen.Cooks = *cooks
		case "capacity":
			cfg.Kitchen.Capacity = *capacity
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// the dashboard owns stdout
	logOut := os.Stdout
	if cfg.Dashboard.Enabled {
		logOut = os.Stderr
	}
	if err := logger.Configure(cfg.Log.Level, logOut); err != nil {
		fmt.Fprintln(os.Stderr, "bad log.level:", err)
		os.Exit(2)
	}

	lg := logger.New("bootstrap")
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "kitchen":
		lg.Info("service_started", map[string]any{
			"service": "kitchen", "servers": cfg.Kitchen.Servers,
			"cooks": cfg.Kitchen.Cooks, "capacity": cfg.Kitchen.Capacity,
		})
		sum, err := kitchen.Run(ctx, cfg, os.Stdout)
		if sum.RunID != "" {
			fmt.Fprintf(os.Stdout, "\n%s\n", sum)
		}
		if code := kitchenExitCode(sum, err); code != 0 {
			lg.Error("fatal", err, nil)
			os.Exit(code)
		}
	case "notification-subscriber":
		if !cfg.Rabbit.Enabled() {
			fmt.Fprintln(os.Stderr, "notification-subscriber needs a rabbitmq: section in the config")
			os.Exit(2)
		}
		lg.Info("service_started", map[string]any{"service": "notification-subscriber"})
		if err := notificator.Start(ctx, cfg.Rabbit); err != nil {
			lg.Error("fatal", err, nil)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "--mode must be kitchen or notification-subscriber")
		os.Exit(2)
	}
}

// kitchenExitCode is 0 only for a kitchen that started and shut down with
// every side service healthy. A kitchen stopped by a failing side service
// still drained, but the run did not end normally.
func kitchenExitCode(sum domain.Summary, err error) int {
	if sum.RunID == "" || err != nil {
		return 1
	}
	return 0
}

func loadConfig(path string) (config.App, error) {
	if path == "" {
		found, err := config.FindConfig()
		if errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		path = found
	}
	return config.Load(path)
}
