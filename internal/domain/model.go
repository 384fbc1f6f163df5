package domain

import (
	"fmt"
	"strings"
	"time"
)

type Dish int

const (
	DishPizza Dish = iota
	DishBurger
	DishSushi
	DishPasta
	DishSalad

	dishCount
)

// PoisonID marks an order that tells exactly one cook to leave the kitchen.
const PoisonID int64 = -1

var dishNames = [...]string{"Pizza", "Burger", "Sushi", "Pasta", "Salad"}

// DishCount is the number of dishes on the menu.
func DishCount() int { return int(dishCount) }

func (d Dish) String() string {
	if d < 0 || d >= dishCount {
		return "???"
	}
	return dishNames[d]
}

func (d Dish) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Dish) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	for i, n := range dishNames {
		if strings.EqualFold(n, s) {
			*d = Dish(i)
			return nil
		}
	}
	return fmt.Errorf("unknown dish %q", s)
}

// Order is immutable once a server has written it up.
type Order struct {
	ID     int64 `json:"id"`
	Dish   Dish  `json:"dish"`
	WorkMs int   `json:"work_ms"`
}

// Poison returns the sentinel order. Its dish and work time carry no meaning.
func Poison() Order { return Order{ID: PoisonID} }

func (o Order) IsPoison() bool { return o.ID == PoisonID }

func (o Order) WorkDuration() time.Duration { return time.Duration(o.WorkMs) * time.Millisecond }
