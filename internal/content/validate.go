package content

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Authoring limits enforced at the boundary.
const (
	MaxLinks       = 5
	MaxAttachments = 5
)

// attachmentNameRe allows letters, digits and ._- and requires an extension
// such as ".pdf".
var attachmentNameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+\.[A-Za-z0-9]{2,8}$`)

// ValidationError describes one reason an item was rejected.
// Extractable via errors.As().
type ValidationError struct {
	ItemID  string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("item: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("item %s: %s: %s", e.ItemID, e.Field, e.Message)
}

// Validate checks an item before it is stored or served. It returns nil for a
// valid item, otherwise every problem found joined with errors.Join.
func Validate(it *Item) error {
	if it == nil {
		return &ValidationError{Field: "item", Message: "is nil"}
	}

	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{
			ItemID:  it.ID,
			Field:   field,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if it.Difficulty < MinDifficulty || it.Difficulty > MaxDifficulty {
		fail("difficulty", "must be between %d and %d, got %d", MinDifficulty, MaxDifficulty, it.Difficulty)
	}
	if !strings.Contains(it.Sender.Address, "@") {
		fail("sender.address", "must be an email address, got %q", it.Sender.Address)
	}
	if strings.TrimSpace(it.Subject) == "" {
		fail("subject", "required")
	}
	if strings.TrimSpace(it.Body) == "" {
		fail("body", "required")
	}

	switch {
	case it.HasLinks() && it.HasAttachments():
		fail("links", "choose either links or attachments, not both")
	case !it.HasLinks() && !it.HasAttachments():
		fail("links", "provide at least one link or one attachment")
	}

	if len(it.Links) > MaxLinks {
		fail("links", "maximum %d links allowed", MaxLinks)
	}
	for _, l := range it.Links {
		if !validLink(l) {
			fail("links", "invalid URL: %s", l)
		}
	}

	if len(it.Attachments) > MaxAttachments {
		fail("attachments", "maximum %d attachments allowed", MaxAttachments)
	}
	for _, a := range it.Attachments {
		if !attachmentNameRe.MatchString(a) {
			fail("attachments", "invalid filename: %s (example: invoice.pdf)", a)
		}
	}

	return errors.Join(errs...)
}

func validLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != "" && strings.Contains(u.Host, ".")
}
