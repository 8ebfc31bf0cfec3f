package rules

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/abhisek/phishdrill/internal/content"
)

func linkItem(deceptive bool, sender, link string) *content.Item {
	return &content.Item{
		ID:          "x",
		IsDeceptive: deceptive,
		Difficulty:  3,
		Sender:      content.Sender{Name: "Sender", Address: sender},
		Subject:     "Hello",
		Body:        "Hi Sam,\n\nSee below.",
		Links:       []string{link},
	}
}

func TestDefaultCatalog_Order(t *testing.T) {
	want := []string{
		"suspicious-sender",
		"urgency",
		"generic-greeting",
		"credential-bait",
		"link",
		"userinfo-link",
		"attachment",
	}
	var got []string
	for _, r := range DefaultCatalog() {
		got = append(got, r.Name)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("catalog order mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		item *content.Item
		want []ID
	}{
		{
			name: "plain link, same root domain",
			item: linkItem(false, "no-reply@parcel-service.co.uk", "https://parcel-service.co.uk/track/1"),
			want: []ID{LinkPresent},
		},
		{
			name: "suspicious sender keyword on deceptive item",
			item: linkItem(true, "alerts@natwest-verify.com", "https://natwest-verify.com/x"),
			want: []ID{SuspiciousSender, LinkPresent},
		},
		{
			name: "sender keyword ignored on legitimate item",
			item: linkItem(false, "no-reply@alerts.bank.com", "https://bank.com/statement"),
			want: []ID{LinkPresent},
		},
		{
			name: "root domain mismatch flags sender then link",
			item: linkItem(false, "team@dropbox.com", "https://files-share.net/d/1"),
			want: []ID{SuspiciousSender, LinkPresent},
		},
		{
			name: "userinfo trick",
			item: linkItem(true, "it@kestrel.ac.uk", "https://kestrel.ac.uk@kestrel-portal.ac.uk/reset"),
			want: []ID{LinkPresent, UserinfoLink},
		},
		{
			name: "urgency in subject",
			item: func() *content.Item {
				it := linkItem(true, "a@shop.com", "https://shop.com/x")
				it.Subject = "URGENT: payment failed"
				return it
			}(),
			want: []ID{UrgencyLanguage, LinkPresent},
		},
		{
			name: "greeting and credentials in body",
			item: func() *content.Item {
				it := linkItem(true, "a@shop.com", "https://shop.com/x")
				it.Body = "Dear Customer,\nplease confirm your password within 24 hours."
				return it
			}(),
			want: []ID{UrgencyLanguage, GenericGreeting, CredentialBait, LinkPresent},
		},
		{
			name: "attachment",
			item: &content.Item{
				IsDeceptive: true,
				Difficulty:  2,
				Sender:      content.Sender{Address: "hr@company.co.uk"},
				Subject:     "Payroll update",
				Body:        "Please review.",
				Attachments: []string{"Payroll_Update.pdf.exe"},
			},
			want: []ID{AttachmentPresent},
		},
		{
			name: "greeting only counted in body",
			item: func() *content.Item {
				it := linkItem(false, "a@shop.com", "https://shop.com/x")
				it.Subject = "Dear Customer"
				return it
			}(),
			want: []ID{LinkPresent},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(DefaultCatalog(), tt.item)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Evaluate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluate_NilItem(t *testing.T) {
	if got := Evaluate(DefaultCatalog(), nil); got != nil {
		t.Errorf("Evaluate(nil) = %v, want nil", got)
	}
}

func TestEvaluate_CollapsesDuplicates(t *testing.T) {
	// Keyword sender plus root mismatch both flag the sender rule.
	it := linkItem(true, "support@secure-paypal.com", "https://paypal.account-check.net/")
	got := Evaluate(DefaultCatalog(), it)
	want := []ID{SuspiciousSender, LinkPresent}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Evaluate mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_CustomCatalog(t *testing.T) {
	always := Rule{Name: "always", Match: func(*content.Item) []ID { return []ID{"custom.rule"} }}
	got := Evaluate([]Rule{always, always}, linkItem(false, "a@b.com", "https://b.com"))
	if diff := cmp.Diff([]ID{"custom.rule"}, got); diff != "" {
		t.Errorf("Evaluate mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribe(t *testing.T) {
	in := Describe(UrgencyLanguage)
	if in.Title != "Spot urgency and pressure" {
		t.Errorf("title = %q", in.Title)
	}
	unknown := Describe("nope")
	if unknown.Title != "nope" || unknown.Summary != "" {
		t.Errorf("unknown = %+v", unknown)
	}
	if len(AllInfo()) != 9 {
		t.Errorf("AllInfo() len = %d, want 9", len(AllInfo()))
	}
}
