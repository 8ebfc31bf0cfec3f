package arcade

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/phishdrill/internal/attempts"
	"github.com/abhisek/phishdrill/internal/content"
	"github.com/abhisek/phishdrill/internal/difficulty"
	"github.com/abhisek/phishdrill/internal/hints"
	"github.com/abhisek/phishdrill/internal/selection"
	"github.com/abhisek/phishdrill/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func boolPtr(b bool) *bool { return &b }

func newEngine(t *testing.T, items ...*content.Item) (*Engine, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	for _, it := range items {
		require.NoError(t, mem.Items().Put(context.Background(), it))
	}
	e := New(Deps{
		Items:    mem.Items(),
		States:   mem.States(),
		Attempts: mem.Attempts(),
		Ledger:   mem,
	}, Options{Seed: 1})
	return e, mem
}

func urgentPhish(id string, d int) *content.Item {
	return &content.Item{
		ID:          id,
		IsDeceptive: true,
		Difficulty:  d,
		Sender:      content.Sender{Name: "IT Desk", Address: "support@it-helpdesk-login.com"},
		Subject:     "URGENT: account suspended",
		Body:        "Dear User, verify now or lose access within 24 hours.",
		Links:       []string{"https://it-helpdesk-login.com/reset"},
	}
}

func legit(id string, d int) *content.Item {
	return &content.Item{
		ID:          id,
		IsDeceptive: false,
		Difficulty:  d,
		Sender:      content.Sender{Name: "Facilities", Address: "facilities@company.com"},
		Subject:     "Lift maintenance on Friday",
		Body:        "Hi all, the east lift is closed on Friday.",
		Attachments: []string{"Schedule.pdf"},
	}
}

func TestSubmitAttempt_MissedDeceptionScenario(t *testing.T) {
	e, mem := newEngine(t, urgentPhish("p3", 3))
	ctx := context.Background()
	require.NoError(t, mem.States().Put(ctx, &difficulty.State{
		UserID: "alice", Difficulty: 3.0, Streak: 0, CorrectCount: 10, TotalCount: 10,
	}))

	out, err := e.SubmitAttempt(ctx, Submission{UserID: "alice", ItemID: "p3", GuessedDeceptive: boolPtr(false)})
	require.NoError(t, err)

	assert.False(t, out.WasCorrect)
	assert.InDelta(t, 2.5, out.NewDifficulty, 1e-9)
	assert.InDelta(t, 10.0/11.0, out.RollingAccuracy, 1e-9)
	assert.Equal(t, -1, out.Streak)
	assert.Equal(t, 2, out.NewBand)
	require.NotNil(t, out.Hint)
	assert.Equal(t, hints.MissedDeception, out.Hint.Direction)
	assert.NotEmpty(t, out.Hint.RuleIDs)
	assert.LessOrEqual(t, len(out.Hint.RuleIDs), hints.MaxRules)

	recs, _ := mem.Attempts().Recent(ctx, "alice", 1)
	require.Len(t, recs, 1)
	assert.InDelta(t, 3.0, recs[0].TargetDifficultyAtRequest, 1e-9)
	assert.Equal(t, 3, recs[0].ItemDifficulty)
	assert.False(t, recs[0].GuessedDeceptive)
	assert.False(t, recs[0].WasCorrect)
	assert.Equal(t, out.AttemptID, recs[0].ID)

	st, _ := mem.States().Get(ctx, "alice")
	assert.Equal(t, "p3", st.LastItemID)
}

func TestSubmitAttempt_CorrectHasNoHint(t *testing.T) {
	e, _ := newEngine(t, legit("l1", 1))
	rt := 900

	out, err := e.SubmitAttempt(context.Background(), Submission{
		UserID: "bob", ItemID: "l1", GuessedDeceptive: boolPtr(false), ResponseTimeMs: &rt,
	})
	require.NoError(t, err)
	assert.True(t, out.WasCorrect)
	assert.Nil(t, out.Hint)
	assert.InDelta(t, 1.3, out.NewDifficulty, 1e-9)
	assert.InDelta(t, 1.0, out.PreviousDifficulty, 1e-9)
	assert.Equal(t, 1.0, out.RollingAccuracy)
	assert.Equal(t, 1, out.Streak)
}

func TestSubmitAttempt_FalseAlarmHint(t *testing.T) {
	e, _ := newEngine(t, legit("l1", 1))

	out, err := e.SubmitAttempt(context.Background(), Submission{UserID: "bob", ItemID: "l1", GuessedDeceptive: boolPtr(true)})
	require.NoError(t, err)
	require.NotNil(t, out.Hint)
	assert.Equal(t, hints.FalseAlarm, out.Hint.Direction)
	allowed := hints.AllowList(hints.FalseAlarm)
	for _, id := range out.Hint.RuleIDs {
		assert.Contains(t, allowed, id)
	}
}

func TestSubmitAttempt_Validation(t *testing.T) {
	e, mem := newEngine(t, legit("l1", 1))
	neg := -5

	tests := []struct {
		name  string
		sub   Submission
		field string
	}{
		{"missing user", Submission{ItemID: "l1", GuessedDeceptive: boolPtr(true)}, "user_id"},
		{"missing item", Submission{UserID: "u", GuessedDeceptive: boolPtr(true)}, "item_id"},
		{"missing guess", Submission{UserID: "u", ItemID: "l1"}, "guessed_deceptive"},
		{"negative time", Submission{UserID: "u", ItemID: "l1", GuessedDeceptive: boolPtr(true), ResponseTimeMs: &neg}, "response_time_ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.SubmitAttempt(context.Background(), tt.sub)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
	assert.Equal(t, 0, mem.Attempts().Len())
}

func TestSubmitAttempt_UnknownItem(t *testing.T) {
	e, mem := newEngine(t, legit("l1", 1))

	_, err := e.SubmitAttempt(context.Background(), Submission{UserID: "u", ItemID: "forged", GuessedDeceptive: boolPtr(true)})
	assert.ErrorIs(t, err, ErrItemNotFound)

	st, _ := mem.States().Get(context.Background(), "u")
	assert.Nil(t, st)
	assert.Equal(t, 0, mem.Attempts().Len())
}

// failingLedger wraps a ledger with an attempt log whose Append always
// fails.
type failingLedger struct {
	inner Ledger
}

type failingLog struct{ attempts.Log }

func (failingLog) Append(context.Context, *attempts.Record) error {
	return errors.New("disk full")
}

func (f failingLedger) RunInTx(ctx context.Context, fn func(ctx context.Context, states difficulty.StateStore, log attempts.Log) error) error {
	return f.inner.RunInTx(ctx, func(ctx context.Context, states difficulty.StateStore, log attempts.Log) error {
		return fn(ctx, states, failingLog{log})
	})
}

func TestSubmitAttempt_AppendFailureRollsBack(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.Items().Put(ctx, urgentPhish("p1", 1)))
	require.NoError(t, mem.States().Put(ctx, &difficulty.State{UserID: "u", Difficulty: 3.0, TotalCount: 4, CorrectCount: 2}))

	e := New(Deps{Items: mem.Items(), States: mem.States(), Attempts: mem.Attempts(), Ledger: failingLedger{mem}}, Options{})

	_, err := e.SubmitAttempt(ctx, Submission{UserID: "u", ItemID: "p1", GuessedDeceptive: boolPtr(true)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "record attempt", serr.Op)

	st, _ := mem.States().Get(ctx, "u")
	assert.InDelta(t, 3.0, st.Difficulty, 1e-9)
	assert.Equal(t, 4, st.TotalCount)
	assert.Equal(t, 0, mem.Attempts().Len())
}

func TestRequestTrial_LazyStateAndBand(t *testing.T) {
	e, mem := newEngine(t, legit("l1", 1), urgentPhish("p2", 2))
	ctx := context.Background()

	trial, err := e.RequestTrial(ctx, "new-user")
	require.NoError(t, err)
	assert.Equal(t, 1.0, trial.TargetDifficulty)
	assert.Equal(t, 1, trial.TargetBand)
	assert.Equal(t, "l1", trial.Item.ID)
	assert.Equal(t, selection.TierExact, trial.Tier)

	st, _ := mem.States().Get(ctx, "new-user")
	require.NotNil(t, st, "state should be created on first request")
}

func TestRequestTrial_ExcludesRecentAndLogsFallback(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.Items().Put(ctx, legit("a", 3)))
	require.NoError(t, mem.Items().Put(ctx, legit("b", 3)))
	require.NoError(t, mem.Items().Put(ctx, urgentPhish("c", 4)))
	require.NoError(t, mem.States().Put(ctx, &difficulty.State{UserID: "u", Difficulty: 3.0}))
	require.NoError(t, mem.Attempts().Append(ctx, &attempts.Record{UserID: "u", ItemID: "a"}))
	require.NoError(t, mem.Attempts().Append(ctx, &attempts.Record{UserID: "u", ItemID: "b"}))

	core, logs := observer.New(zapcore.WarnLevel)
	e := New(Deps{Items: mem.Items(), States: mem.States(), Attempts: mem.Attempts(), Ledger: mem},
		Options{Logger: zap.New(core)})

	trial, err := e.RequestTrial(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "c", trial.Item.ID)
	assert.Equal(t, selection.TierAdjacent, trial.Tier)
	assert.Equal(t, 1, logs.FilterMessage("selection degraded").Len())
}

func TestRequestTrial_NoContent(t *testing.T) {
	e, _ := newEngine(t)
	_, err := e.RequestTrial(context.Background(), "u")
	assert.ErrorIs(t, err, ErrNoContentAvailable)
}

func TestRequestTrial_RequiresUser(t *testing.T) {
	e, _ := newEngine(t, legit("l1", 1))
	_, err := e.RequestTrial(context.Background(), "  ")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

type brokenStates struct{}

func (brokenStates) Get(context.Context, string) (*difficulty.State, error) {
	return nil, errors.New("connection reset")
}
func (brokenStates) Put(context.Context, *difficulty.State) error { return nil }

func TestRequestTrial_StoreUnavailable(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.Items().Put(context.Background(), legit("l1", 1)))
	e := New(Deps{Items: mem.Items(), States: brokenStates{}, Attempts: mem.Attempts(), Ledger: mem}, Options{})

	_, err := e.RequestTrial(context.Background(), "u")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestSubmitAttempt_ConcurrentSameUser(t *testing.T) {
	e, mem := newEngine(t, legit("l1", 1))
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := e.SubmitAttempt(ctx, Submission{UserID: "u", ItemID: "l1", GuessedDeceptive: boolPtr(i%2 == 0)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	st, _ := mem.States().Get(ctx, "u")
	require.NotNil(t, st)
	assert.Equal(t, n, st.TotalCount)
	assert.Equal(t, n/2, st.CorrectCount)
	assert.Equal(t, n, mem.Attempts().Len())
	assert.GreaterOrEqual(t, st.Difficulty, 1.0)
	assert.LessOrEqual(t, st.Difficulty, 5.0)
	assert.Equal(t, 0, e.locks.size())
}

func TestSubmitAttempt_UsersIndependent(t *testing.T) {
	e, mem := newEngine(t, legit("l1", 1))
	ctx := context.Background()

	var wg sync.WaitGroup
	for u := 0; u < 8; u++ {
		wg.Add(1)
		go func(u int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", u)
			for i := 0; i < 10; i++ {
				_, err := e.SubmitAttempt(ctx, Submission{UserID: user, ItemID: "l1", GuessedDeceptive: boolPtr(false)})
				assert.NoError(t, err)
			}
		}(u)
	}
	wg.Wait()

	for u := 0; u < 8; u++ {
		st, _ := mem.States().Get(ctx, fmt.Sprintf("user-%d", u))
		require.NotNil(t, st)
		assert.Equal(t, 10, st.TotalCount)
		assert.Equal(t, 10, st.Streak)
		// 1.0 + 10*0.3, clamped
		assert.InDelta(t, 4.0, st.Difficulty, 1e-9)
	}
}

func TestStats(t *testing.T) {
	e, _ := newEngine(t, legit("l1", 1))
	ctx := context.Background()

	st, err := e.Stats(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, st)

	_, err = e.SubmitAttempt(ctx, Submission{UserID: "u", ItemID: "l1", GuessedDeceptive: boolPtr(false)})
	require.NoError(t, err)
	st, err = e.Stats(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalCount)
}
