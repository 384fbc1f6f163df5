package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"restaurant-queue/internal/domain"
)

// JournalInterface appends what the kitchen did. Nothing is ever read
// back to resume a run.
type JournalInterface interface {
	EnsureSchema(ctx context.Context) error
	StartRun(ctx context.Context, s domain.Summary) error
	FinishRun(ctx context.Context, s domain.Summary) error
	RecordReady(ctx context.Context, ev domain.StatusEvent, startedAt time.Time) error
	Handle(ctx context.Context, ev domain.StatusEvent) error
	CountOrders(ctx context.Context, runID string) (int, error)
}

type Journal struct {
	db *sql.DB

	// cooking start per order, kept until the matching ready event
	started map[int64]time.Time
}

func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db, started: make(map[int64]time.Time)}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS kitchen_runs (
		run_id          TEXT PRIMARY KEY,
		servers         INTEGER NOT NULL,
		cooks           INTEGER NOT NULL,
		capacity        INTEGER NOT NULL,
		total_produced  INTEGER NOT NULL DEFAULT 0,
		total_completed INTEGER NOT NULL DEFAULT 0,
		started_at      TIMESTAMP NOT NULL,
		finished_at     TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS kitchen_orders (
		run_id      TEXT NOT NULL,
		order_id    BIGINT NOT NULL,
		dish        TEXT NOT NULL,
		work_ms     INTEGER NOT NULL,
		cooked_by   TEXT NOT NULL,
		started_at  TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		PRIMARY KEY (run_id, order_id)
	)`,
}

func (j *Journal) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := j.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create journal schema: %w", err)
		}
	}
	return nil
}

func (j *Journal) StartRun(ctx context.Context, s domain.Summary) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO kitchen_runs (run_id, servers, cooks, capacity, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`, s.RunID, s.Servers, s.Cooks, s.Capacity, s.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert run %s: %w", s.RunID, err)
	}
	return nil
}

// FinishRun closes the run row. Call it once the event dispatcher has
// stopped; it also forgets cooking starts whose ready event was dropped.
func (j *Journal) FinishRun(ctx context.Context, s domain.Summary) error {
	defer clear(j.started)

	res, err := j.db.ExecContext(ctx, `
		UPDATE kitchen_runs
		SET total_produced = $1, total_completed = $2, finished_at = $3
		WHERE run_id = $4
	`, s.TotalProduced, s.TotalCompleted, s.FinishedAt.UTC(), s.RunID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", s.RunID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", s.RunID, sql.ErrNoRows)
	}
	return nil
}

func (j *Journal) RecordReady(ctx context.Context, ev domain.StatusEvent, startedAt time.Time) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO kitchen_orders (run_id, order_id, dish, work_ms, cooked_by, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, ev.RunID, ev.OrderID, ev.Dish.String(), ev.WorkMs, ev.ChangedBy, startedAt.UTC(), ev.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("insert order %d: %w", ev.OrderID, err)
	}
	return nil
}

// Handle makes the journal an event sink. Events arrive from a single
// dispatcher goroutine, so the started map needs no lock.
func (j *Journal) Handle(ctx context.Context, ev domain.StatusEvent) error {
	switch ev.NewStatus {
	case domain.StatusCooking:
		j.started[ev.OrderID] = ev.Timestamp
	case domain.StatusReady:
		startedAt, ok := j.started[ev.OrderID]
		if !ok {
			startedAt = ev.Timestamp.Add(-time.Duration(ev.WorkMs) * time.Millisecond)
		}
		delete(j.started, ev.OrderID)
		return j.RecordReady(ctx, ev, startedAt)
	}
	return nil
}

// CountOrders reports how many orders a run has journaled.
func (j *Journal) CountOrders(ctx context.Context, runID string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kitchen_orders WHERE run_id = $1`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count orders of %s: %w", runID, err)
	}
	return n, nil
}
