package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/phishdrill/internal/content"
	"github.com/abhisek/phishdrill/internal/hints"
	"github.com/abhisek/phishdrill/internal/rules"
	"github.com/abhisek/phishdrill/internal/ui/theme"
)

// ContentWidth returns the inner width used for every card so they align.
func ContentWidth(termWidth int) int {
	w := termWidth - 6
	if w > 72 {
		w = 72
	}
	if w < 30 {
		w = 30
	}
	return w
}

func field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, theme.Label.Render(label), theme.Body.Render(value))
}

// EmailCard renders an item the way a mail client would show it.
func EmailCard(it *content.Item, cw int) string {
	var b strings.Builder
	b.WriteString(field("From:", it.Sender.String()) + "\n")
	b.WriteString(field("Subject:", it.Subject) + "\n\n")
	b.WriteString(theme.Body.Width(cw-6).Render(it.Body))

	if it.HasLinks() {
		b.WriteString("\n\n")
		for _, l := range it.Links {
			b.WriteString(theme.Link.Render(l) + "\n")
		}
	}
	if it.HasAttachments() {
		b.WriteString("\n\n")
		for _, a := range it.Attachments {
			b.WriteString(theme.Attachment.Render("📎 "+a) + "\n")
		}
	}

	return theme.Card.Width(cw).Render(strings.TrimRight(b.String(), "\n"))
}

// Verdict renders the correct/incorrect line.
func Verdict(correct bool) string {
	if correct {
		return theme.Correct.Render("✓ Correct")
	}
	return theme.Incorrect.Render("✗ Not quite")
}

// HintView renders a hint with a title line and one bullet per rule.
func HintView(h *hints.Result, cw int) string {
	if h == nil || len(h.RuleIDs) == 0 {
		return ""
	}
	lines := []string{theme.Title.Render(h.Title)}
	for _, id := range h.RuleIDs {
		info := rules.Describe(id)
		lines = append(lines, fmt.Sprintf("• %s", theme.Body.Render(info.Title)))
		if info.Summary != "" {
			lines = append(lines, "  "+theme.Hint.Width(cw-6).Render(info.Summary))
		}
	}
	return theme.HintCard.Render(strings.Join(lines, "\n"))
}
