package rules

import (
	"regexp"
	"strings"

	"github.com/abhisek/phishdrill/internal/content"
)

// ID identifies a feedback rule. The values are stable: clients map them to
// their own help content.
type ID string

const (
	SuspiciousSender  ID = "basic.sender"
	UrgencyLanguage   ID = "basic.urgency"
	GenericGreeting   ID = "basic.language"
	CredentialBait    ID = "intermediate.login-path"
	LinkPresent       ID = "basic.links"
	UserinfoLink      ID = "advanced.subtle-links"
	AttachmentPresent ID = "basic.attachments"

	// Not produced by any predicate; attached by direction.
	DoubleCheck      ID = "intermediate.consistency"
	SecondaryChannel ID = "intermediate.secondary-channel"
)

// Rule is a named, pure predicate over an item. Match returns the rule ids
// it flags, usually zero or one, in the order they should surface.
type Rule struct {
	Name  string
	Match func(it *content.Item) []ID
}

// suspiciousSenderKeywords mark sender domains that pose as a service desk.
var suspiciousSenderKeywords = []string{"secure", "login", "verify", "support", "alerts"}

var (
	urgencyRe = regexp.MustCompile(`(?i)\b(urgent(ly)?|immediately|verify now|account (is )?(locked|suspended)|within 24 hours|final warning|open (the )?attachment|action required)\b`)

	genericGreetingRe = regexp.MustCompile(`(?i)\b(dear (valued )?(customer|user|client|member|account holder|sir or madam|sir/madam)|hello user)\b`)

	credentialRe = regexp.MustCompile(`(?i)\b(passwords?|passcode|log ?in|sign ?in|credentials?|mfa|2fa|one-time (pass)?code|verification code)\b`)
)

// DefaultCatalog returns the rules in priority order.
func DefaultCatalog() []Rule {
	return []Rule{
		{Name: "suspicious-sender", Match: matchSuspiciousSender},
		{Name: "urgency", Match: matchPattern(urgencyRe, UrgencyLanguage, true)},
		{Name: "generic-greeting", Match: matchPattern(genericGreetingRe, GenericGreeting, false)},
		{Name: "credential-bait", Match: matchPattern(credentialRe, CredentialBait, true)},
		{Name: "link", Match: matchLink},
		{Name: "userinfo-link", Match: matchUserinfoLink},
		{Name: "attachment", Match: matchAttachment},
	}
}

// Evaluate runs every rule in order and returns the flagged ids with
// duplicates collapsed to their first occurrence.
func Evaluate(catalog []Rule, it *content.Item) []ID {
	if it == nil {
		return nil
	}
	var out []ID
	seen := make(map[ID]bool)
	for _, r := range catalog {
		for _, id := range r.Match(it) {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func matchSuspiciousSender(it *content.Item) []ID {
	if !it.IsDeceptive {
		return nil
	}
	dom := it.Sender.Domain()
	for _, kw := range suspiciousSenderKeywords {
		if strings.Contains(dom, kw) {
			return []ID{SuspiciousSender}
		}
	}
	return nil
}

// matchPattern flags id when re matches the body, or the subject too when
// withSubject is set.
func matchPattern(re *regexp.Regexp, id ID, withSubject bool) func(*content.Item) []ID {
	return func(it *content.Item) []ID {
		if (withSubject && re.MatchString(it.Subject)) || re.MatchString(it.Body) {
			return []ID{id}
		}
		return nil
	}
}

func matchLink(it *content.Item) []ID {
	if !it.HasLinks() {
		return nil
	}
	senderRoot := RootDomain(it.Sender.Domain())
	linkRoot := RootDomain(LinkHost(it.FirstLink()))
	if senderRoot != "" && linkRoot != "" && senderRoot != linkRoot {
		return []ID{SuspiciousSender, LinkPresent}
	}
	return []ID{LinkPresent}
}

func matchUserinfoLink(it *content.Item) []ID {
	if it.HasLinks() && HasUserinfo(it.FirstLink()) {
		return []ID{UserinfoLink}
	}
	return nil
}

func matchAttachment(it *content.Item) []ID {
	if it.HasAttachments() {
		return []ID{AttachmentPresent}
	}
	return nil
}
