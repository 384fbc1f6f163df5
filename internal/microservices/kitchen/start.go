package kitchen

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"restaurant-queue/internal/common/config"
	"restaurant-queue/internal/common/logger"
	"restaurant-queue/internal/connections/database"
	"restaurant-queue/internal/connections/rabbitmq"
	"restaurant-queue/internal/domain"
	"restaurant-queue/internal/microservices/dashboard"
	"restaurant-queue/internal/microservices/kitchen/repository"
	"restaurant-queue/internal/microservices/kitchen/service"
	notify "restaurant-queue/internal/microservices/notificator/service"
	"restaurant-queue/internal/microservices/tracker"
)

const finishTimeout = 5 * time.Second

// Run wires the optional journal, notifications, status API, dashboard and
// MQTT broadcast around one kitchen, runs it until it has fully drained and
// returns its summary. Cancelling ctx is the stop request.
func Run(ctx context.Context, cfg config.App, out io.Writer) (domain.Summary, error) {
	lg := logger.New("kitchen")
	var sinks []service.EventSink

	var repo *repository.Repository
	if cfg.Database.Enabled() {
		db, err := database.ConnectDB(ctx, cfg.Database)
		if err != nil {
			return domain.Summary{}, fmt.Errorf("db connect: %w", err)
		}
		defer db.Close()
		repo = repository.New(db)
		if err := repo.Journal.EnsureSchema(ctx); err != nil {
			return domain.Summary{}, err
		}
		sinks = append(sinks, repo.Journal)
		lg.Info("journal_ready", map[string]any{"driver": cfg.Database.Driver})
	}

	if cfg.Rabbit.Enabled() {
		rmq, err := rabbitmq.Dial(cfg.Rabbit)
		if err != nil {
			return domain.Summary{}, fmt.Errorf("rabbitmq connect: %w", err)
		}
		defer rmq.Close()
		if err := rmq.DeclareNotifications(false); err != nil {
			return domain.Summary{}, err
		}
		sinks = append(sinks, notify.NewPublisher(rmq))
		lg.Info("notifications_ready", map[string]any{"exchange": rabbitmq.NotificationsExchange})
	}

	var mq *dashboard.Broadcaster
	if cfg.MQTT.Enabled() {
		mq = dashboard.NewBroadcaster(cfg.MQTT, logger.New("mqtt"))
		if err := mq.Connect(ctx); err != nil {
			return domain.Summary{}, err
		}
		defer mq.Disconnect()
	}

	k, err := service.NewKitchenService(ServiceConfig(cfg.Kitchen), lg, sinks...)
	if err != nil {
		return domain.Summary{}, err
	}
	if err := k.Start(ctx); err != nil {
		return domain.Summary{}, err
	}
	if repo != nil {
		if err := repo.Journal.StartRun(ctx, k.Summary()); err != nil {
			lg.Warn("journal_start_run", err, nil)
		}
	}

	// Side surfaces live exactly as long as the kitchen.
	auxCtx, cancelAux := context.WithCancel(context.Background())
	defer cancelAux()
	go func() {
		<-k.Done()
		cancelAux()
	}()

	g, gctx := errgroup.WithContext(auxCtx)
	if cfg.HTTP.Port > 0 {
		g.Go(func() error {
			if err := tracker.Start(gctx, cfg.HTTP.Port, k); err != nil {
				k.Stop()
				return fmt.Errorf("status api: %w", err)
			}
			return nil
		})
	}
	if cfg.Dashboard.Enabled {
		refresh := time.Duration(cfg.Dashboard.RefreshMs) * time.Millisecond
		rep := dashboard.NewReporter(k, out, refresh, logger.New("dashboard"))
		g.Go(func() error { return rep.Run(gctx) })
	}
	if mq != nil {
		g.Go(func() error { return mq.Run(gctx, k) })
	}

	k.Join()
	err = g.Wait()

	sum := k.Summary()
	if repo != nil {
		fctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
		if ferr := repo.Journal.FinishRun(fctx, sum); ferr != nil {
			lg.Warn("journal_finish_run", ferr, nil)
		}
		cancel()
	}
	lg.Info("kitchen_finished", map[string]any{
		"produced": sum.TotalProduced, "completed": sum.TotalCompleted,
	})
	return sum, err
}

// ServiceConfig maps the kitchen: section of the YAML config onto the engine.
func ServiceConfig(c config.Kitchen) service.Config {
	return service.Config{
		Servers:     c.Servers,
		Cooks:       c.Cooks,
		Capacity:    c.Capacity,
		ArrivalMin:  time.Duration(c.ArrivalMinMs) * time.Millisecond,
		ArrivalMax:  time.Duration(c.ArrivalMaxMs) * time.Millisecond,
		WorkMin:     time.Duration(c.WorkMinMs) * time.Millisecond,
		WorkMax:     time.Duration(c.WorkMaxMs) * time.Millisecond,
		EventBuffer: c.EventBuffer,
	}
}
