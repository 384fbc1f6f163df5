package domain

import (
	"testing"
	"time"
)

func TestDishText(t *testing.T) {
	tests := []struct {
		in   string
		want Dish
		ok   bool
	}{
		{"Pizza", DishPizza, true},
		{"sushi", DishSushi, true},
		{" SALAD ", DishSalad, true},
		{"soup", 0, false},
	}
	for _, tc := range tests {
		var d Dish
		err := d.UnmarshalText([]byte(tc.in))
		if (err == nil) != tc.ok {
			t.Errorf("UnmarshalText(%q) err = %v", tc.in, err)
			continue
		}
		if tc.ok && d != tc.want {
			t.Errorf("UnmarshalText(%q) = %v, want %v", tc.in, d, tc.want)
		}
	}

	if got := Dish(42).String(); got != "???" {
		t.Errorf("out of range dish = %q", got)
	}
	if DishCount() != len(dishNames) {
		t.Errorf("DishCount = %d, names = %d", DishCount(), len(dishNames))
	}
}

func TestPoison(t *testing.T) {
	p := Poison()
	if !p.IsPoison() || p.ID != PoisonID {
		t.Fatalf("Poison() = %+v", p)
	}
	if (Order{ID: 1}).IsPoison() {
		t.Error("real order reported as poison")
	}
	if got := (Order{WorkMs: 250}).WorkDuration(); got != 250*time.Millisecond {
		t.Errorf("WorkDuration = %v", got)
	}
}

func TestCookRemaining(t *testing.T) {
	now := time.Now()
	c := CookStatus{Busy: true, EstimatedEnd: now.Add(time.Second)}
	if c.Remaining(now) != time.Second {
		t.Errorf("Remaining = %v", c.Remaining(now))
	}
	c.EstimatedEnd = now.Add(-time.Second)
	if c.Remaining(now) != 0 {
		t.Error("overdue cook should report zero")
	}
	if (CookStatus{}).Remaining(now) != 0 {
		t.Error("idle cook should report zero")
	}
}

func TestSummaryLine(t *testing.T) {
	s := Summary{TotalProduced: 12, TotalCompleted: 12, Capacity: 5, Servers: 3, Cooks: 2}
	want := "Summary: produced=12 | completed=12 | capacity=5 | servers=3 | cooks=2"
	if s.String() != want {
		t.Errorf("String() = %q", s.String())
	}
}
