package selection

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/abhisek/phishdrill/internal/attempts"
	"github.com/abhisek/phishdrill/internal/content"
)

// ErrNoContent is returned when the item store holds nothing to serve.
var ErrNoContent = errors.New("no content available")

// ItemStore is the read side of the item catalog.
type ItemStore interface {
	// GetByID returns the item, or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id string) (*content.Item, error)

	// ByDifficulty returns items at exactly band whose id is not in
	// exclude. A nil or empty exclude disables the filter.
	ByDifficulty(ctx context.Context, band int, exclude []string) ([]*content.Item, error)

	// ByDifficulties is ByDifficulty over a set of bands.
	ByDifficulties(ctx context.Context, bands []int, exclude []string) ([]*content.Item, error)

	All(ctx context.Context) ([]*content.Item, error)
}

// Tier records how far selection had to relax its constraints.
type Tier int

const (
	TierExact Tier = iota + 1
	TierAdjacent
	TierRepeat
	TierAny
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierAdjacent:
		return "adjacent"
	case TierRepeat:
		return "repeat"
	case TierAny:
		return "any"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Selection is a chosen item and the tier that produced it.
type Selection struct {
	Item *content.Item
	Tier Tier
}

// Selector picks the next item for a user.
type Selector struct {
	items  ItemStore
	log    attempts.Log
	window int

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Selector.
type Option func(*Selector)

// WithRecentWindow sets how many recent attempts are excluded.
func WithRecentWindow(n int) Option {
	return func(s *Selector) {
		if n >= 0 {
			s.window = n
		}
	}
}

// WithRand sets the random source used to pick within a pool.
func WithRand(r *rand.Rand) Option {
	return func(s *Selector) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithSeed seeds the random source deterministically.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// New creates a Selector.
func New(items ItemStore, log attempts.Log, opts ...Option) *Selector {
	s := &Selector{
		items:  items,
		log:    log,
		window: attempts.DefaultRecentWindow,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Recent returns the ids the user saw most recently, newest first.
func (s *Selector) Recent(ctx context.Context, userID string) ([]string, error) {
	if s.window == 0 {
		return nil, nil
	}
	ids, err := s.log.RecentItemIDs(ctx, userID, s.window)
	if err != nil {
		return nil, fmt.Errorf("recent item ids: %w", err)
	}
	return ids, nil
}

// Select returns an item for band, excluding the user's recent items.
func (s *Selector) Select(ctx context.Context, userID string, band int) (*Selection, error) {
	recent, err := s.Recent(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.SelectExcluding(ctx, band, recent)
}

// SelectExcluding runs the tiered fallback with an already-fetched recent
// list:
//
//  1. exact band, recent excluded
//  2. band-1 and band+1 (clamped), recent excluded
//  3. exact band, recent allowed
//  4. any item
func (s *Selector) SelectExcluding(ctx context.Context, band int, recent []string) (*Selection, error) {
	band = content.ClampDifficulty(band)

	pool, err := s.items.ByDifficulty(ctx, band, recent)
	if err != nil {
		return nil, fmt.Errorf("query exact: %w", err)
	}
	if len(pool) > 0 {
		return s.pick(pool, TierExact), nil
	}

	pool, err = s.items.ByDifficulties(ctx, adjacentBands(band), recent)
	if err != nil {
		return nil, fmt.Errorf("query adjacent: %w", err)
	}
	if len(pool) > 0 {
		return s.pick(pool, TierAdjacent), nil
	}

	pool, err = s.items.ByDifficulty(ctx, band, nil)
	if err != nil {
		return nil, fmt.Errorf("query repeat: %w", err)
	}
	if len(pool) > 0 {
		return s.pick(pool, TierRepeat), nil
	}

	pool, err = s.items.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query all: %w", err)
	}
	if len(pool) > 0 {
		return s.pick(pool, TierAny), nil
	}

	return nil, ErrNoContent
}

func (s *Selector) pick(pool []*content.Item, tier Tier) *Selection {
	s.mu.Lock()
	i := s.rng.IntN(len(pool))
	s.mu.Unlock()
	return &Selection{Item: pool[i], Tier: tier}
}

// adjacentBands returns the distinct clamped neighbours of band.
func adjacentBands(band int) []int {
	lo := content.ClampDifficulty(band - 1)
	hi := content.ClampDifficulty(band + 1)
	if lo == hi {
		return []int{lo}
	}
	return []int{lo, hi}
}
