package difficulty

import (
	"context"
	"math"
	"time"
)

// State is one user's position on the difficulty staircase.
type State struct {
	UserID       string
	Difficulty   float64
	Streak       int // > 0 consecutive correct, < 0 consecutive incorrect
	CorrectCount int
	TotalCount   int
	LastItemID   string
	UpdatedAt    time.Time
}

// Accuracy returns CorrectCount / TotalCount, or 0 before the first attempt.
func (s *State) Accuracy() float64 {
	if s == nil || s.TotalCount == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.TotalCount)
}

// Clone returns a copy of s.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// StateStore persists one State per user.
type StateStore interface {
	// Get returns the user's state, or (nil, nil) when none exists.
	Get(ctx context.Context, userID string) (*State, error)
	Put(ctx context.Context, st *State) error
}

// Config holds the staircase parameters.
type Config struct {
	Start    float64 `yaml:"start"`
	StepUp   float64 `yaml:"step_up"`
	StepDown float64 `yaml:"step_down"`
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
}

// DefaultConfig returns the standard staircase: start at 1.0, +0.30 on a
// correct answer, -0.50 on a wrong one, bounded to [1, 5].
func DefaultConfig() Config {
	return Config{
		Start:    1.0,
		StepUp:   0.30,
		StepDown: 0.50,
		Min:      1.0,
		Max:      5.0,
	}
}

// Clamp bounds v to [Min, Max].
func (c Config) Clamp(v float64) float64 {
	return math.Max(c.Min, math.Min(c.Max, v))
}

// Band maps a difficulty to an integer band: round half to even, then clamp
// to [Min, Max].
func (c Config) Band(v float64) int {
	b := int(math.RoundToEven(v))
	lo, hi := int(math.Ceil(c.Min)), int(math.Floor(c.Max))
	if b < lo {
		return lo
	}
	if b > hi {
		return hi
	}
	return b
}

// Apply returns the state after one answer. st is not modified.
func Apply(st State, correct bool, cfg Config) State {
	next := st
	next.Difficulty = cfg.Clamp(st.Difficulty)
	if correct {
		next.Difficulty = cfg.Clamp(next.Difficulty + cfg.StepUp)
		next.Streak = max(0, st.Streak) + 1
		next.CorrectCount++
	} else {
		next.Difficulty = cfg.Clamp(next.Difficulty - cfg.StepDown)
		next.Streak = min(0, st.Streak) - 1
	}
	next.TotalCount++
	// Keep the stored value free of float drift like 3.3000000000000003.
	next.Difficulty = math.Round(next.Difficulty*1e6) / 1e6
	return next
}
