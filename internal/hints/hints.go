package hints

import (
	"github.com/abhisek/phishdrill/internal/content"
	"github.com/abhisek/phishdrill/internal/rules"
)

// MaxRules is the most rule ids a single hint carries.
const MaxRules = 3

// Direction classifies a wrong answer.
type Direction string

const (
	// MissedDeception: a deceptive item was judged legitimate.
	MissedDeception Direction = "missed_deception"
	// FalseAlarm: a legitimate item was judged deceptive.
	FalseAlarm Direction = "false_alarm"
)

// DirectionFor returns the direction of a wrong answer, or "" when the guess
// was correct.
func DirectionFor(isDeceptive, guessedDeceptive bool) Direction {
	switch {
	case isDeceptive && !guessedDeceptive:
		return MissedDeception
	case !isDeceptive && guessedDeceptive:
		return FalseAlarm
	}
	return ""
}

// Result is the feedback for one wrong answer.
type Result struct {
	Direction Direction
	Title     string
	RuleIDs   []rules.ID
}

// policy is what a direction may surface.
type policy struct {
	title string
	allow map[rules.ID]bool
	// extra ids appended after catalog matches, regardless of the item.
	extra []rules.ID
}

var policies = map[Direction]policy{
	MissedDeception: {
		title: "Signs you missed",
		allow: set(
			rules.SuspiciousSender,
			rules.UrgencyLanguage,
			rules.GenericGreeting,
			rules.CredentialBait,
			rules.LinkPresent,
			rules.UserinfoLink,
			rules.AttachmentPresent,
		),
	},
	FalseAlarm: {
		title: "This one was legitimate",
		allow: set(
			rules.LinkPresent,
			rules.AttachmentPresent,
			rules.DoubleCheck,
			rules.SecondaryChannel,
		),
		extra: []rules.ID{rules.DoubleCheck, rules.SecondaryChannel},
	},
}

func set(ids ...rules.ID) map[rules.ID]bool {
	m := make(map[rules.ID]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// AllowList returns the ids a direction may surface. Unknown directions
// allow nothing.
func AllowList(d Direction) []rules.ID {
	p, ok := policies[d]
	if !ok {
		return nil
	}
	var out []rules.ID
	for _, in := range rules.AllInfo() {
		if p.allow[in.ID] {
			out = append(out, in.ID)
		}
	}
	return out
}

// Engine turns a wrong answer into at most MaxRules rule ids.
type Engine struct {
	catalog []rules.Rule
}

// New creates an Engine over the default rule catalog.
func New() *Engine {
	return &Engine{catalog: rules.DefaultCatalog()}
}

// NewWithCatalog creates an Engine over a custom catalog.
func NewWithCatalog(catalog []rules.Rule) *Engine {
	return &Engine{catalog: catalog}
}

// Explain evaluates every catalog rule against the item, drops ids the
// direction does not allow, appends the direction's fixed ids, and keeps
// the first MaxRules.
func (e *Engine) Explain(it *content.Item, d Direction) *Result {
	p, ok := policies[d]
	if !ok {
		return &Result{Direction: d}
	}

	matched := rules.Evaluate(e.catalog, it)
	candidates := append(matched, p.extra...)

	out := make([]rules.ID, 0, MaxRules)
	seen := make(map[rules.ID]bool, len(candidates))
	for _, id := range candidates {
		if len(out) == MaxRules {
			break
		}
		if seen[id] || !p.allow[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}

	return &Result{Direction: d, Title: p.title, RuleIDs: out}
}
