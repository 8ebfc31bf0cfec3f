package arcade

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/phishdrill/internal/attempts"
	"github.com/abhisek/phishdrill/internal/content"
	"github.com/abhisek/phishdrill/internal/difficulty"
	"github.com/abhisek/phishdrill/internal/hints"
	"github.com/abhisek/phishdrill/internal/selection"
)

// Ledger commits a state update and an attempt append together. fn receives
// transaction-scoped stores; if it returns an error nothing it wrote is
// visible afterwards.
type Ledger interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, states difficulty.StateStore, log attempts.Log) error) error
}

// Deps are the engine's collaborators.
type Deps struct {
	Items    selection.ItemStore
	States   difficulty.StateStore
	Attempts attempts.Log
	Ledger   Ledger
}

// Options tune the engine. Zero values select defaults.
type Options struct {
	Difficulty   difficulty.Config
	RecentWindow int
	// Seed fixes the selection RNG when non-zero.
	Seed   uint64
	Logger *zap.Logger
	Hints  *hints.Engine
	Clock  func() time.Time
}

// Trial is an item served to a user.
type Trial struct {
	Item             *content.Item
	TargetDifficulty float64
	TargetBand       int
	Tier             selection.Tier
}

// Submission is one answer from a user. GuessedDeceptive must be set.
type Submission struct {
	UserID           string
	ItemID           string
	GuessedDeceptive *bool
	ResponseTimeMs   *int
}

// Outcome is the result of a submission.
type Outcome struct {
	AttemptID          string
	WasCorrect         bool
	PreviousDifficulty float64
	NewDifficulty      float64
	NewBand            int
	RollingAccuracy    float64
	Streak             int
	// Hint is nil when the answer was correct.
	Hint *hints.Result
}

// Engine serves trials and evaluates answers.
type Engine struct {
	deps     Deps
	cfg      difficulty.Config
	selector *selection.Selector
	hints    *hints.Engine
	logger   *zap.Logger
	now      func() time.Time
	locks    *userLocks
}

// New creates an Engine.
func New(deps Deps, opts Options) *Engine {
	if opts.Difficulty == (difficulty.Config{}) {
		opts.Difficulty = difficulty.DefaultConfig()
	}
	if opts.RecentWindow <= 0 {
		opts.RecentWindow = attempts.DefaultRecentWindow
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Hints == nil {
		opts.Hints = hints.New()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	selOpts := []selection.Option{selection.WithRecentWindow(opts.RecentWindow)}
	if opts.Seed != 0 {
		selOpts = append(selOpts, selection.WithSeed(opts.Seed))
	}

	return &Engine{
		deps:     deps,
		cfg:      opts.Difficulty,
		selector: selection.New(deps.Items, deps.Attempts, selOpts...),
		hints:    opts.Hints,
		logger:   opts.Logger,
		now:      opts.Clock,
		locks:    newUserLocks(),
	}
}

func (e *Engine) controller(states difficulty.StateStore) *difficulty.Controller {
	return difficulty.NewController(states, e.cfg).WithClock(e.now)
}

// RequestTrial picks the next item for userID at the user's current
// difficulty.
func (e *Engine) RequestTrial(ctx context.Context, userID string) (*Trial, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &ValidationError{Field: "user_id", Message: "required"}
	}

	// Both reads run under the user lock so the target and the recent
	// window come from the same side of any concurrent submit.
	unlock := e.locks.lock(userID)
	var (
		target float64
		recent []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := e.controller(e.deps.States).CurrentTarget(gctx, userID)
		if err != nil {
			return storeErr("current target", err)
		}
		target = t
		return nil
	})
	g.Go(func() error {
		ids, err := e.selector.Recent(gctx, userID)
		if err != nil {
			return storeErr("recent attempts", err)
		}
		recent = ids
		return nil
	})
	err := g.Wait()
	unlock()
	if err != nil {
		e.logger.Error("request trial failed", zap.String("user", userID), zap.Error(err))
		return nil, err
	}

	band := e.cfg.Band(target)
	sel, err := e.selector.SelectExcluding(ctx, band, recent)
	if errors.Is(err, selection.ErrNoContent) {
		return nil, ErrNoContentAvailable
	}
	if err != nil {
		err = storeErr("select item", err)
		e.logger.Error("request trial failed", zap.String("user", userID), zap.Error(err))
		return nil, err
	}

	if sel.Tier > selection.TierExact {
		e.logger.Warn("selection degraded",
			zap.String("user", userID),
			zap.Int("band", band),
			zap.Stringer("tier", sel.Tier),
			zap.String("item", sel.Item.ID),
		)
	}

	return &Trial{
		Item:             sel.Item,
		TargetDifficulty: target,
		TargetBand:       band,
		Tier:             sel.Tier,
	}, nil
}

func validateSubmission(sub Submission) error {
	switch {
	case strings.TrimSpace(sub.UserID) == "":
		return &ValidationError{Field: "user_id", Message: "required"}
	case strings.TrimSpace(sub.ItemID) == "":
		return &ValidationError{Field: "item_id", Message: "required"}
	case sub.GuessedDeceptive == nil:
		return &ValidationError{Field: "guessed_deceptive", Message: "required"}
	case sub.ResponseTimeMs != nil && *sub.ResponseTimeMs < 0:
		return &ValidationError{Field: "response_time_ms", Message: "must be non-negative"}
	}
	return nil
}

// SubmitAttempt scores an answer, advances the user's difficulty and
// appends the attempt in one transaction, and explains wrong answers.
func (e *Engine) SubmitAttempt(ctx context.Context, sub Submission) (*Outcome, error) {
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}

	it, err := e.deps.Items.GetByID(ctx, sub.ItemID)
	if err != nil {
		err = storeErr("get item", err)
		e.logger.Error("submit failed", zap.String("user", sub.UserID), zap.Error(err))
		return nil, err
	}
	if it == nil {
		return nil, ErrItemNotFound
	}

	guess := *sub.GuessedDeceptive
	correct := it.IsDeceptive == guess

	unlock := e.locks.lock(sub.UserID)
	defer unlock()

	var (
		before float64
		next   *difficulty.State
		rec    *attempts.Record
	)
	err = e.deps.Ledger.RunInTx(ctx, func(ctx context.Context, states difficulty.StateStore, log attempts.Log) error {
		b, st, err := e.controller(states).RecordAnswer(ctx, sub.UserID, it.ID, correct)
		if err != nil {
			return err
		}
		r := &attempts.Record{
			ID:                        ulid.Make().String(),
			UserID:                    sub.UserID,
			ItemID:                    it.ID,
			GuessedDeceptive:          guess,
			WasCorrect:                correct,
			TargetDifficultyAtRequest: b,
			ItemDifficulty:            it.Difficulty,
			ResponseTimeMs:            sub.ResponseTimeMs,
			Timestamp:                 e.now(),
		}
		if err := log.Append(ctx, r); err != nil {
			return err
		}
		before, next, rec = b, st, r
		return nil
	})
	if err != nil {
		err = storeErr("record attempt", err)
		e.logger.Error("submit failed", zap.String("user", sub.UserID), zap.String("item", it.ID), zap.Error(err))
		return nil, err
	}

	out := &Outcome{
		AttemptID:          rec.ID,
		WasCorrect:         correct,
		PreviousDifficulty: before,
		NewDifficulty:      next.Difficulty,
		NewBand:            e.cfg.Band(next.Difficulty),
		RollingAccuracy:    next.Accuracy(),
		Streak:             next.Streak,
	}
	if !correct {
		out.Hint = e.hints.Explain(it, hints.DirectionFor(it.IsDeceptive, guess))
	}

	e.logger.Debug("attempt recorded",
		zap.String("user", sub.UserID),
		zap.String("item", it.ID),
		zap.Bool("correct", correct),
		zap.Float64("before", before),
		zap.Float64("after", next.Difficulty),
	)
	return out, nil
}

// Stats returns the user's state without creating it. It returns (nil, nil)
// for a user who has never played.
func (e *Engine) Stats(ctx context.Context, userID string) (*difficulty.State, error) {
	st, err := e.deps.States.Get(ctx, userID)
	if err != nil {
		return nil, storeErr("get state", err)
	}
	if st != nil {
		st.Difficulty = e.cfg.Clamp(st.Difficulty)
	}
	return st, nil
}

// Config returns the staircase parameters in use.
func (e *Engine) Config() difficulty.Config {
	return e.cfg
}
