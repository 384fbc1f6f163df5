package domain

import (
	"fmt"
	"time"
)

type ServerStatus struct {
	LastOrderID int64     `json:"last_order_id"`
	LastDish    Dish      `json:"last_dish"`
	LastWorkMs  int       `json:"last_work_ms"`
	Timestamp   time.Time `json:"timestamp"`
	Produced    int       `json:"produced"`
}

// HasOrder reports whether the server has written up at least one order.
func (s ServerStatus) HasOrder() bool { return s.LastOrderID > 0 }

type CookStatus struct {
	Busy           bool      `json:"busy"`
	CurrentOrderID int64     `json:"current_order_id"`
	CurrentDish    Dish      `json:"current_dish"`
	WorkMs         int       `json:"work_ms"`
	EstimatedEnd   time.Time `json:"estimated_end"`
	Completed      int       `json:"completed"`
	Stopped        bool      `json:"stopped"`
}

// Remaining is the time left on the current order, clamped at zero.
func (c CookStatus) Remaining(now time.Time) time.Duration {
	if !c.Busy {
		return 0
	}
	if d := c.EstimatedEnd.Sub(now); d > 0 {
		return d
	}
	return 0
}

type Totals struct {
	Produced      int    `json:"produced"`
	Completed     int    `json:"completed"`
	CooksStopped  int    `json:"cooks_stopped"`
	EventsDropped uint64 `json:"events_dropped"`
}

type Snapshot struct {
	RunID         string         `json:"run_id"`
	Servers       []ServerStatus `json:"servers"`
	Cooks         []CookStatus   `json:"cooks"`
	Totals        Totals         `json:"totals"`
	QueueLen      int            `json:"queue_len"`
	Capacity      int            `json:"capacity"`
	StopRequested bool           `json:"stop_requested"`
	TakenAt       time.Time      `json:"taken_at"`
}

type Summary struct {
	RunID          string    `json:"run_id"`
	TotalProduced  int       `json:"total_produced"`
	TotalCompleted int       `json:"total_completed"`
	Capacity       int       `json:"capacity"`
	Servers        int       `json:"servers"`
	Cooks          int       `json:"cooks"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at,omitempty"`
}

func (s Summary) String() string {
	return fmt.Sprintf("Summary: produced=%d | completed=%d | capacity=%d | servers=%d | cooks=%d",
		s.TotalProduced, s.TotalCompleted, s.Capacity, s.Servers, s.Cooks)
}
