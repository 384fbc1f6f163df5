package dashboard

import (
	"context"
	"fmt"
	"io"
	"time"

	"restaurant-queue/internal/common/logger"
	"restaurant-queue/internal/domain"
)

type SnapshotSource interface {
	Snapshot() domain.Snapshot
	Done() <-chan struct{}
}

type Reporter struct {
	src     SnapshotSource
	out     io.Writer
	refresh time.Duration
	lg      *logger.Logger
	frames  int
}

func NewReporter(src SnapshotSource, out io.Writer, refresh time.Duration, lg *logger.Logger) *Reporter {
	if refresh <= 0 {
		refresh = 200 * time.Millisecond
	}
	return &Reporter{src: src, out: out, refresh: refresh, lg: lg}
}

// Run redraws every refresh tick until the kitchen is done or ctx ends,
// then draws one last frame.
func (r *Reporter) Run(ctx context.Context) error {
	fmt.Fprint(r.out, hideCursor)
	defer fmt.Fprint(r.out, showCursor)

	t := time.NewTicker(r.refresh)
	defer t.Stop()

	r.draw()
	for {
		select {
		case <-r.src.Done():
			r.draw()
			r.lg.Debug("dashboard_closed", map[string]any{"frames": r.frames})
			return nil
		case <-ctx.Done():
			r.draw()
			return nil
		case <-t.C:
			r.draw()
		}
	}
}

func (r *Reporter) draw() {
	Render(r.out, r.src.Snapshot(), time.Now())
	r.frames++
}
