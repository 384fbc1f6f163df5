package dashboard

import (
	"fmt"
	"io"
	"time"

	"restaurant-queue/internal/domain"
)

const (
	clearScreen = "\033[H\033[J"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Render writes one full frame of the kitchen state.
func Render(w io.Writer, snap domain.Snapshot, now time.Time) {
	fmt.Fprint(w, clearScreen)
	fmt.Fprintf(w, "=== RESTAURANT ===   queue=%d/%d   produced=%d   completed=%d   STOP=%t\n",
		snap.QueueLen, snap.Capacity, snap.Totals.Produced, snap.Totals.Completed, snap.StopRequested)

	fmt.Fprint(w, "\n-- Servers --\n")
	for i, s := range snap.Servers {
		if !s.HasOrder() {
			fmt.Fprintf(w, "Server %d : (no order yet)\n", i+1)
			continue
		}
		fmt.Fprintf(w, "Server %d : +#%d %-6s %4dms  | total=%d | %dms ago\n",
			i+1, s.LastOrderID, s.LastDish, s.LastWorkMs, s.Produced, now.Sub(s.Timestamp).Milliseconds())
	}

	fmt.Fprint(w, "\n-- Cooks --\n")
	for i, c := range snap.Cooks {
		switch {
		case c.Busy:
			fmt.Fprintf(w, "Cook %d : #%-4d %-6s  ~%dms left | done=%d\n",
				i+1, c.CurrentOrderID, c.CurrentDish, c.Remaining(now).Milliseconds(), c.Completed)
		case c.Stopped:
			fmt.Fprintf(w, "Cook %d : (stopped)              | done=%d\n", i+1, c.Completed)
		default:
			fmt.Fprintf(w, "Cook %d : (idle)                 | done=%d\n", i+1, c.Completed)
		}
	}

	if snap.Totals.EventsDropped > 0 {
		fmt.Fprintf(w, "\nevents dropped: %d\n", snap.Totals.EventsDropped)
	}
	if snap.StopRequested {
		fmt.Fprint(w, "\nStopping: cooks finish the queued orders first.\n")
	} else {
		fmt.Fprint(w, "\nCtrl+C to stop (queued orders are still cooked).\n")
	}
}
