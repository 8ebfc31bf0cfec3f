package content

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
items:
  - id: bank-1
    phish: true
    difficulty: 2
    category: bank
    sender:
      name: NatWest Security
      address: alerts@natwest-verify.co.uk
    subject: "URGENT: account locked"
    body: |
      Dear Customer,
      Verify now to restore access.
    links:
      - https://natwest-verify.co.uk/login
  - phish: false
    difficulty: 1
    sender:
      name: DPD Notifications
      address: no-reply@parcel-service.co.uk
    subject: "DPD: Tracking update"
    body: Your parcel tracking has been updated.
    attachments:
      - Delivery_Notice_123456.pdf
`

func TestParseCatalog(t *testing.T) {
	items, err := ParseCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, items, 2)

	bank := items[0]
	assert.Equal(t, "bank-1", bank.ID)
	assert.True(t, bank.IsDeceptive)
	assert.Equal(t, 2, bank.Difficulty)
	assert.Equal(t, "bank", bank.Category)
	assert.Equal(t, "alerts@natwest-verify.co.uk", bank.Sender.Address)
	assert.Equal(t, []string{"https://natwest-verify.co.uk/login"}, bank.Links)
	assert.Empty(t, bank.Attachments)

	parcel := items[1]
	_, err = uuid.Parse(parcel.ID)
	assert.NoError(t, err, "missing id should be replaced with a UUID")
	assert.False(t, parcel.IsDeceptive)
	assert.Equal(t, []string{"Delivery_Notice_123456.pdf"}, parcel.Attachments)
}

func TestParseCatalog_SchemaRejectsBothLinksAndAttachments(t *testing.T) {
	doc := `
items:
  - phish: true
    difficulty: 3
    sender: {address: a@b.co}
    subject: s
    body: b
    links: [https://b.co/x]
    attachments: [x.pdf]
`
	_, err := ParseCatalog(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestParseCatalog_SchemaRejectsNeither(t *testing.T) {
	doc := `
items:
  - phish: true
    difficulty: 3
    sender: {address: a@b.co}
    subject: s
    body: b
`
	_, err := ParseCatalog(strings.NewReader(doc))
	require.Error(t, err)
}

func TestParseCatalog_SchemaRejectsDifficultyOutOfRange(t *testing.T) {
	doc := `
items:
  - phish: false
    difficulty: 7
    sender: {address: a@b.co}
    subject: s
    body: b
    links: [https://b.co/x]
`
	_, err := ParseCatalog(strings.NewReader(doc))
	require.Error(t, err)
}

func TestParseCatalog_SchemaRejectsUnknownField(t *testing.T) {
	doc := `
items:
  - phish: false
    difficulty: 2
    sender: {address: a@b.co}
    subject: s
    body: b
    links: [https://b.co/x]
    level: 4
`
	_, err := ParseCatalog(strings.NewReader(doc))
	require.Error(t, err)
}

func TestParseCatalog_GoRulesApplied(t *testing.T) {
	// Structurally valid, but the link scheme fails Validate.
	doc := `
items:
  - id: bad-link
    phish: true
    difficulty: 2
    sender: {address: a@b.co}
    subject: s
    body: b
    links: ["hxxp://b.co/x"]
`
	_, err := ParseCatalog(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad-link")
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestParseCatalog_DuplicateIDs(t *testing.T) {
	doc := `
items:
  - id: dup
    phish: true
    difficulty: 2
    sender: {address: a@b.co}
    subject: s
    body: b
    links: [https://b.co/x]
  - id: dup
    phish: false
    difficulty: 2
    sender: {address: a@b.co}
    subject: s
    body: b
    links: [https://b.co/y]
`
	_, err := ParseCatalog(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestParseCatalog_InvalidYAML(t *testing.T) {
	_, err := ParseCatalog(strings.NewReader("items: [\n"))
	require.Error(t, err)
}
