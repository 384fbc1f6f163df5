package service

import (
	"time"

	"restaurant-queue/internal/domain"
)

// KitchenSource is the read side of a running kitchen.
type KitchenSource interface {
	Snapshot() domain.Snapshot
	Summary() domain.Summary
	Done() <-chan struct{}
}

type Health struct {
	Status    string    `json:"status"` // cooking | draining | closed
	RunID     string    `json:"run_id"`
	QueueLen  int       `json:"queue_len"`
	Capacity  int       `json:"capacity"`
	CheckedAt time.Time `json:"checked_at"`
}

type TrackerServiceInterface interface {
	GetStatus() domain.Snapshot
	GetSummary() domain.Summary
	GetHealth() Health
}

type TrackerService struct {
	src KitchenSource
}

func NewTrackerService(src KitchenSource) *TrackerService {
	return &TrackerService{src: src}
}

func (s *TrackerService) GetStatus() domain.Snapshot { return s.src.Snapshot() }
func (s *TrackerService) GetSummary() domain.Summary { return s.src.Summary() }

func (s *TrackerService) GetHealth() Health {
	snap := s.src.Snapshot()
	h := Health{
		Status:    "cooking",
		RunID:     snap.RunID,
		QueueLen:  snap.QueueLen,
		Capacity:  snap.Capacity,
		CheckedAt: time.Now().UTC(),
	}
	select {
	case <-s.src.Done():
		h.Status = "closed"
	default:
		if snap.StopRequested {
			h.Status = "draining"
		}
	}
	return h
}
