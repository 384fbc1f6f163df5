package tracker

import (
	"context"
	"strconv"

	"restaurant-queue/internal/common/httpx"
	"restaurant-queue/internal/common/logger"
	"restaurant-queue/internal/microservices/tracker/handler"
	"restaurant-queue/internal/microservices/tracker/service"
)

// Start serves the kitchen status API on port until ctx ends.
func Start(ctx context.Context, port int, src service.KitchenSource) error {
	lg := logger.New("tracking-service")
	svc := service.NewTrackerService(src)
	h := handler.New(svc)

	srv := httpx.New(":"+strconv.Itoa(port), handler.Router(h))
	lg.Info("listening", map[string]any{"port": port})
	return srv.Run(ctx)
}
