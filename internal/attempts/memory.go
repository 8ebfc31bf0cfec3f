package attempts

import (
	"context"
	"sync"
)

// MemoryLog is an in-process Log, safe for concurrent use.
type MemoryLog struct {
	mu      sync.RWMutex
	seq     int64
	byUser  map[string][]*Record
	ordered []*Record
}

// NewMemoryLog creates an empty MemoryLog.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{byUser: make(map[string][]*Record)}
}

func (l *MemoryLog) Append(_ context.Context, rec *Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	rec.Sequence = l.seq
	cp := *rec
	l.byUser[rec.UserID] = append(l.byUser[rec.UserID], &cp)
	l.ordered = append(l.ordered, &cp)
	return nil
}

func (l *MemoryLog) RecentItemIDs(_ context.Context, userID string, limit int) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	recs := l.byUser[userID]
	if limit <= 0 || limit > len(recs) {
		limit = len(recs)
	}
	out := make([]string, 0, limit)
	for i := len(recs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, recs[i].ItemID)
	}
	return out, nil
}

// Recent returns copies of the user's last limit records, most recent first.
func (l *MemoryLog) Recent(_ context.Context, userID string, limit int) ([]*Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	recs := l.byUser[userID]
	if limit <= 0 || limit > len(recs) {
		limit = len(recs)
	}
	out := make([]*Record, 0, limit)
	for i := len(recs) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *recs[i]
		out = append(out, &cp)
	}
	return out, nil
}

// Len returns the number of records across all users.
func (l *MemoryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ordered)
}

// DeleteUser drops every record for userID. It exists for administrative
// resets; the engine never calls it.
func (l *MemoryLog) DeleteUser(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.byUser, userID)
	kept := l.ordered[:0]
	for _, r := range l.ordered {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	l.ordered = kept
}
