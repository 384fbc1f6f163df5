package service

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"restaurant-queue/internal/domain"
)

var ErrInvalidConfig = errors.New("invalid kitchen config")

type Config struct {
	Servers  int
	Cooks    int
	Capacity int

	// Client arrival gap per server and preparation time per order.
	ArrivalMin time.Duration
	ArrivalMax time.Duration
	WorkMin    time.Duration
	WorkMax    time.Duration

	// EventBuffer bounds the lifecycle events waiting for sinks.
	EventBuffer int

	// NewGenerator builds the order source of server i. Nil means seeded random.
	NewGenerator func(server int) Generator
}

func DefaultConfig() Config {
	return Config{
		Servers:     3,
		Cooks:       2,
		Capacity:    20,
		ArrivalMin:  200 * time.Millisecond,
		ArrivalMax:  600 * time.Millisecond,
		WorkMin:     500 * time.Millisecond,
		WorkMax:     2500 * time.Millisecond,
		EventBuffer: 256,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity %d must be positive", ErrInvalidConfig, c.Capacity)
	case c.Servers < 0 || c.Cooks < 0:
		return fmt.Errorf("%w: servers=%d cooks=%d must not be negative", ErrInvalidConfig, c.Servers, c.Cooks)
	case c.ArrivalMin < 0 || c.ArrivalMax < c.ArrivalMin:
		return fmt.Errorf("%w: arrival range [%s,%s]", ErrInvalidConfig, c.ArrivalMin, c.ArrivalMax)
	case c.WorkMin < 0 || c.WorkMax < c.WorkMin:
		return fmt.Errorf("%w: work range [%s,%s]", ErrInvalidConfig, c.WorkMin, c.WorkMax)
	case c.EventBuffer < 0:
		return fmt.Errorf("%w: event buffer %d", ErrInvalidConfig, c.EventBuffer)
	}
	return nil
}

// Generator decides when the next client shows up and what they order.
// Each server owns its generator; implementations need not be thread-safe.
type Generator interface {
	NextArrival() time.Duration
	NextDish() domain.Dish
	NextWork() time.Duration
}

type randGenerator struct {
	r                *rand.Rand
	arrMin, arrMax   time.Duration
	workMin, workMax time.Duration
}

func newRandGenerator(cfg Config, seed uint64, server int) *randGenerator {
	return &randGenerator{
		r:       rand.New(rand.NewPCG(seed, 0xA53+uint64(server)*997)),
		arrMin:  cfg.ArrivalMin,
		arrMax:  cfg.ArrivalMax,
		workMin: cfg.WorkMin,
		workMax: cfg.WorkMax,
	}
}

func (g *randGenerator) NextArrival() time.Duration { return g.between(g.arrMin, g.arrMax) }
func (g *randGenerator) NextWork() time.Duration    { return g.between(g.workMin, g.workMax) }
func (g *randGenerator) NextDish() domain.Dish      { return domain.Dish(g.r.IntN(domain.DishCount())) }

func (g *randGenerator) between(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(g.r.Int64N(int64(hi-lo)+1))
}
