package difficulty

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestApply_Staircase(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name    string
		start   float64
		correct bool
		want    float64
	}{
		{"correct steps up", 3.0, true, 3.3},
		{"incorrect steps down", 3.0, false, 2.5},
		{"clamped at max", 4.9, true, 5.0},
		{"stays at max", 5.0, true, 5.0},
		{"clamped at min", 1.2, false, 1.0},
		{"stays at min", 1.0, false, 1.0},
		{"out of range input clamped first", 7.0, false, 4.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(State{Difficulty: tt.start}, tt.correct, cfg)
			if !approx(got.Difficulty, tt.want) {
				t.Errorf("Difficulty = %v, want %v", got.Difficulty, tt.want)
			}
		})
	}
}

func TestApply_StoresDecimalSteps(t *testing.T) {
	cfg := DefaultConfig()
	st := State{Difficulty: 1.0}
	want := []float64{1.3, 1.6, 1.9, 2.2, 2.5, 2.8, 3.1, 3.4, 3.7, 4.0}
	for i, w := range want {
		st = Apply(st, true, cfg)
		if st.Difficulty != w {
			t.Fatalf("step %d: Difficulty = %v, want exactly %v", i+1, st.Difficulty, w)
		}
	}
	st = Apply(State{Difficulty: 3.3}, false, cfg)
	if st.Difficulty != 2.8 {
		t.Errorf("3.3 down = %v, want exactly 2.8", st.Difficulty)
	}
}

func TestApply_Streak(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		streak  int
		correct bool
		want    int
	}{
		{0, true, 1},
		{3, true, 4},
		{-4, true, 1},
		{0, false, -1},
		{-2, false, -3},
		{5, false, -1},
	}
	for _, tt := range tests {
		got := Apply(State{Difficulty: 2, Streak: tt.streak}, tt.correct, cfg)
		if got.Streak != tt.want {
			t.Errorf("streak %d correct=%v: got %d, want %d", tt.streak, tt.correct, got.Streak, tt.want)
		}
	}
}

func TestApply_Counters(t *testing.T) {
	cfg := DefaultConfig()
	st := State{Difficulty: 3, CorrectCount: 10, TotalCount: 10}

	wrong := Apply(st, false, cfg)
	if wrong.CorrectCount != 10 || wrong.TotalCount != 11 {
		t.Errorf("after wrong: %d/%d, want 10/11", wrong.CorrectCount, wrong.TotalCount)
	}
	right := Apply(st, true, cfg)
	if right.CorrectCount != 11 || right.TotalCount != 11 {
		t.Errorf("after right: %d/%d, want 11/11", right.CorrectCount, right.TotalCount)
	}
	if st.TotalCount != 10 {
		t.Error("Apply modified its input")
	}
}

func TestApply_AlwaysInBounds(t *testing.T) {
	cfg := DefaultConfig()
	st := State{Difficulty: cfg.Start}
	// Deterministic pseudo-random answer pattern.
	x := uint32(7)
	for i := 0; i < 2000; i++ {
		x = x*1103515245 + 12345
		st = Apply(st, x&0x10000 != 0, cfg)
		if st.Difficulty < cfg.Min || st.Difficulty > cfg.Max {
			t.Fatalf("step %d: difficulty %v out of bounds", i, st.Difficulty)
		}
		if st.CorrectCount > st.TotalCount {
			t.Fatalf("step %d: correct %d > total %d", i, st.CorrectCount, st.TotalCount)
		}
	}
}

func TestBand(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{1.0, 1},
		{1.4, 1},
		{1.6, 2},
		{2.5, 2},
		{3.5, 4},
		{4.6, 5},
		{5.0, 5},
		{0.2, 1},
		{9.0, 5},
	}
	cfg := DefaultConfig()
	for _, tt := range tests {
		if got := cfg.Band(tt.in); got != tt.want {
			t.Errorf("Band(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAccuracy(t *testing.T) {
	var nilState *State
	if got := nilState.Accuracy(); got != 0 {
		t.Errorf("nil accuracy = %v", got)
	}
	if got := (&State{}).Accuracy(); got != 0 {
		t.Errorf("empty accuracy = %v", got)
	}
	if got := (&State{CorrectCount: 10, TotalCount: 11}).Accuracy(); !approx(got, 10.0/11.0) {
		t.Errorf("accuracy = %v, want %v", got, 10.0/11.0)
	}
}
