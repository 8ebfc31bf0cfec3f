package content

import (
	"fmt"
	"strings"
)

// Difficulty bounds for an Item.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Sender is who a message claims to come from.
type Sender struct {
	// Name is the display name, e.g. "Royal Mail Notifications".
	Name string `json:"name" yaml:"name"`

	// Address is the mailbox, e.g. "no-reply@parcel-service.co.uk".
	Address string `json:"address" yaml:"address"`
}

// Domain returns the lowercased domain part of the sender address, or ""
// when the address has no "@".
func (s Sender) Domain() string {
	addr := strings.TrimSpace(s.Address)
	addr = strings.Trim(addr, "<>")
	i := strings.LastIndex(addr, "@")
	if i < 0 || i == len(addr)-1 {
		return ""
	}
	return strings.ToLower(addr[i+1:])
}

// String renders the sender the way a mail client header would.
func (s Sender) String() string {
	if s.Name == "" {
		return s.Address
	}
	return fmt.Sprintf("%s <%s>", s.Name, s.Address)
}

// Item is a single message-like unit the learner classifies as deceptive or
// legitimate. Items are immutable once they reach the engine.
type Item struct {
	// ID is an opaque identifier.
	ID string

	// IsDeceptive is the ground truth: true for phishing.
	IsDeceptive bool

	// Difficulty ranges from 1 (easiest) to 5 (hardest).
	Difficulty int

	Sender  Sender
	Subject string
	Body    string

	// Links and Attachments are mutually exclusive: exactly one is non-empty.
	Links       []string
	Attachments []string

	// Category is an optional free-text tag ("bank", "delivery", ...).
	Category string
}

// HasLinks reports whether the item carries at least one link.
func (it *Item) HasLinks() bool { return len(it.Links) > 0 }

// HasAttachments reports whether the item carries at least one attachment.
func (it *Item) HasAttachments() bool { return len(it.Attachments) > 0 }

// FirstLink returns the first link, or "" if there are none.
func (it *Item) FirstLink() string {
	if len(it.Links) == 0 {
		return ""
	}
	return it.Links[0]
}

// ClampDifficulty bounds d to [MinDifficulty, MaxDifficulty].
func ClampDifficulty(d int) int {
	if d < MinDifficulty {
		return MinDifficulty
	}
	if d > MaxDifficulty {
		return MaxDifficulty
	}
	return d
}
