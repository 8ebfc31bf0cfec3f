package difficulty

import (
	"context"
	"fmt"
	"time"
)

// Controller owns the staircase for every user. It is not safe to call
// RecordOutcome concurrently for the same user; callers serialize per user.
type Controller struct {
	store StateStore
	cfg   Config
	now   func() time.Time
}

// NewController creates a Controller over store.
func NewController(store StateStore, cfg Config) *Controller {
	return &Controller{store: store, cfg: cfg, now: time.Now}
}

// WithClock replaces the controller's time source.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// Config returns the staircase parameters in use.
func (c *Controller) Config() Config {
	return c.cfg
}

// State returns the user's state, creating and persisting the initial state
// on first access. The returned difficulty is always within bounds.
func (c *Controller) State(ctx context.Context, userID string) (*State, error) {
	st, err := c.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	if st == nil {
		st = &State{
			UserID:     userID,
			Difficulty: c.cfg.Clamp(c.cfg.Start),
			UpdatedAt:  c.now(),
		}
		if err := c.store.Put(ctx, st); err != nil {
			return nil, fmt.Errorf("create state: %w", err)
		}
		return st, nil
	}
	st.Difficulty = c.cfg.Clamp(st.Difficulty)
	return st, nil
}

// CurrentTarget returns the user's current difficulty.
func (c *Controller) CurrentTarget(ctx context.Context, userID string) (float64, error) {
	st, err := c.State(ctx, userID)
	if err != nil {
		return 0, err
	}
	return st.Difficulty, nil
}

// RecordOutcome applies one answer to the user's state and persists it.
func (c *Controller) RecordOutcome(ctx context.Context, userID string, correct bool) (*State, error) {
	_, next, err := c.RecordAnswer(ctx, userID, "", correct)
	return next, err
}

// RecordAnswer is RecordOutcome that also notes the answered item. It
// returns the difficulty before the update alongside the new state.
func (c *Controller) RecordAnswer(ctx context.Context, userID, itemID string, correct bool) (float64, *State, error) {
	st, err := c.State(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	before := st.Difficulty

	next := Apply(*st, correct, c.cfg)
	next.UpdatedAt = c.now()
	if itemID != "" {
		next.LastItemID = itemID
	}
	if err := c.store.Put(ctx, &next); err != nil {
		return 0, nil, fmt.Errorf("put state: %w", err)
	}
	return before, &next, nil
}
