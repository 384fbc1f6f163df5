package domain

import "time"

type OrderStatus string

const (
	StatusReceived OrderStatus = "received"
	StatusCooking  OrderStatus = "cooking"
	StatusReady    OrderStatus = "ready"
)

// StatusEvent is one lifecycle transition of a real order.
type StatusEvent struct {
	RunID               string      `json:"run_id"`
	OrderID             int64       `json:"order_id"`
	Dish                Dish        `json:"dish"`
	WorkMs              int         `json:"work_ms"`
	OldStatus           OrderStatus `json:"old_status,omitempty"`
	NewStatus           OrderStatus `json:"new_status"`
	ChangedBy           string      `json:"changed_by"`
	Timestamp           time.Time   `json:"timestamp"`
	EstimatedCompletion time.Time   `json:"estimated_completion,omitempty"`
}
