package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/abhisek/phishdrill/internal/attempts"
	"github.com/abhisek/phishdrill/internal/content"
	"github.com/abhisek/phishdrill/internal/difficulty"
)

// Memory is an in-process backend with the same contracts as Store.
// Transactions stage writes and apply them on commit. A commit publishes
// the staged states and records under one write lock that every read
// through States and Attempts also takes, so a reader never sees a new
// difficulty without its attempt record.
type Memory struct {
	txMu   sync.Mutex
	mu     sync.RWMutex
	items  *MemoryItems
	states *difficulty.MemoryStore
	log    *attempts.MemoryLog
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		items:  NewMemoryItems(),
		states: difficulty.NewMemoryStore(),
		log:    attempts.NewMemoryLog(),
	}
}

func (m *Memory) Items() *MemoryItems { return m.items }
func (m *Memory) States() *MemoryStates { return &MemoryStates{m: m} }
func (m *Memory) Attempts() *MemoryAttempts { return &MemoryAttempts{m: m} }

// RunInTx runs fn against staged views of the state store and attempt log.
// Staged writes become visible only if fn returns nil.
func (m *Memory) RunInTx(ctx context.Context, fn func(ctx context.Context, states difficulty.StateStore, log attempts.Log) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	st := &stagedStates{base: m.states, puts: make(map[string]*difficulty.State)}
	lg := &stagedLog{base: m.log}
	if err := fn(ctx, st, lg); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range st.puts {
		if err := m.states.Put(ctx, s); err != nil {
			return err
		}
	}
	for _, rec := range lg.appended {
		if err := m.log.Append(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// ResetUser deletes the user's state and attempt history.
func (m *Memory) ResetUser(_ context.Context, userID string) {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states.Delete(userID)
	m.log.DeleteUser(userID)
}

// MemoryStates is the committed view of a Memory's user states.
type MemoryStates struct{ m *Memory }

func (v *MemoryStates) Get(ctx context.Context, userID string) (*difficulty.State, error) {
	v.m.mu.RLock()
	defer v.m.mu.RUnlock()
	return v.m.states.Get(ctx, userID)
}

func (v *MemoryStates) Put(ctx context.Context, st *difficulty.State) error {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	return v.m.states.Put(ctx, st)
}

// MemoryAttempts is the committed view of a Memory's attempt log.
type MemoryAttempts struct{ m *Memory }

func (v *MemoryAttempts) Append(ctx context.Context, rec *attempts.Record) error {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	return v.m.log.Append(ctx, rec)
}

func (v *MemoryAttempts) RecentItemIDs(ctx context.Context, userID string, limit int) ([]string, error) {
	v.m.mu.RLock()
	defer v.m.mu.RUnlock()
	return v.m.log.RecentItemIDs(ctx, userID, limit)
}

func (v *MemoryAttempts) Recent(ctx context.Context, userID string, limit int) ([]*attempts.Record, error) {
	v.m.mu.RLock()
	defer v.m.mu.RUnlock()
	return v.m.log.Recent(ctx, userID, limit)
}

// Len returns the number of committed records.
func (v *MemoryAttempts) Len() int {
	v.m.mu.RLock()
	defer v.m.mu.RUnlock()
	return v.m.log.Len()
}

type stagedStates struct {
	base *difficulty.MemoryStore
	puts map[string]*difficulty.State
}

func (s *stagedStates) Get(ctx context.Context, userID string) (*difficulty.State, error) {
	if st, ok := s.puts[userID]; ok {
		return st.Clone(), nil
	}
	return s.base.Get(ctx, userID)
}

func (s *stagedStates) Put(_ context.Context, st *difficulty.State) error {
	s.puts[st.UserID] = st.Clone()
	return nil
}

type stagedLog struct {
	base     *attempts.MemoryLog
	appended []*attempts.Record
}

func (l *stagedLog) Append(_ context.Context, rec *attempts.Record) error {
	l.appended = append(l.appended, rec)
	return nil
}

func (l *stagedLog) RecentItemIDs(ctx context.Context, userID string, limit int) ([]string, error) {
	var staged []string
	for i := len(l.appended) - 1; i >= 0; i-- {
		if l.appended[i].UserID == userID {
			staged = append(staged, l.appended[i].ItemID)
		}
	}
	committed, err := l.base.RecentItemIDs(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	out := append(staged, committed...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MemoryItems is an in-process selection.ItemStore.
type MemoryItems struct {
	mu    sync.RWMutex
	items map[string]*content.Item
}

// NewMemoryItems creates an empty item store.
func NewMemoryItems() *MemoryItems {
	return &MemoryItems{items: make(map[string]*content.Item)}
}

// Put validates and stores an item, replacing any item with the same id.
func (m *MemoryItems) Put(_ context.Context, it *content.Item) error {
	if err := content.Validate(it); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[it.ID] = it
	return nil
}

func (m *MemoryItems) GetByID(_ context.Context, id string) (*content.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[id], nil
}

func (m *MemoryItems) ByDifficulty(ctx context.Context, band int, exclude []string) ([]*content.Item, error) {
	return m.ByDifficulties(ctx, []int{band}, exclude)
}

func (m *MemoryItems) ByDifficulties(_ context.Context, bands []int, exclude []string) ([]*content.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*content.Item
	for _, it := range m.items {
		if slices.Contains(bands, it.Difficulty) && !slices.Contains(exclude, it.ID) {
			out = append(out, it)
		}
	}
	sortByID(out)
	return out, nil
}

func (m *MemoryItems) All(_ context.Context) ([]*content.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*content.Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	sortByID(out)
	return out, nil
}

func sortByID(items []*content.Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
