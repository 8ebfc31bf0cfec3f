package attempts

import (
	"context"
	"time"
)

// DefaultRecentWindow is how many recent attempts count as "recently seen".
const DefaultRecentWindow = 25

// Record is one submitted trial. Records are append-only.
type Record struct {
	// ID is a time-sortable unique id assigned by the engine.
	ID string

	// Sequence is assigned by the log on append and orders records
	// globally; zero until appended.
	Sequence int64

	UserID           string
	ItemID           string
	GuessedDeceptive bool
	WasCorrect       bool

	// TargetDifficultyAtRequest is the user's difficulty before this
	// attempt updated it.
	TargetDifficultyAtRequest float64
	ItemDifficulty            int

	// ResponseTimeMs is nil when the client did not report it.
	ResponseTimeMs *int

	Timestamp time.Time
}

// Log is the append-only attempt history.
type Log interface {
	// Append stores rec and sets rec.Sequence.
	Append(ctx context.Context, rec *Record) error

	// RecentItemIDs returns the item ids of the user's last limit
	// attempts, most recent first. Ids may repeat.
	RecentItemIDs(ctx context.Context, userID string, limit int) ([]string, error)
}
