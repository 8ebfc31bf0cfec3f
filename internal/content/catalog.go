package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// catalogDoc is the on-disk shape of a catalog file.
//
//	items:
//	  - id: optional
//	    phish: true
//	    difficulty: 3
//	    sender: {name: "...", address: "..."}
//	    subject: "..."
//	    body: "..."
//	    links: ["https://..."]
type catalogDoc struct {
	Items []itemDoc `yaml:"items"`
}

type itemDoc struct {
	ID          string   `yaml:"id"`
	Phish       bool     `yaml:"phish"`
	Difficulty  int      `yaml:"difficulty"`
	Category    string   `yaml:"category"`
	Sender      Sender   `yaml:"sender"`
	Subject     string   `yaml:"subject"`
	Body        string   `yaml:"body"`
	Links       []string `yaml:"links"`
	Attachments []string `yaml:"attachments"`
}

func (d itemDoc) toItem() *Item {
	id := d.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &Item{
		ID:          id,
		IsDeceptive: d.Phish,
		Difficulty:  d.Difficulty,
		Sender:      d.Sender,
		Subject:     d.Subject,
		Body:        d.Body,
		Links:       d.Links,
		Attachments: d.Attachments,
		Category:    d.Category,
	}
}

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// ParseCatalog reads a YAML catalog, checks it against the catalog schema,
// and returns its items. Items without an id get a fresh UUID. Every item is
// run through Validate; all failures are reported together.
func ParseCatalog(r io.Reader) ([]*Item, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	if err := validateCatalogDocument(raw); err != nil {
		return nil, err
	}

	var doc catalogDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	items := make([]*Item, 0, len(doc.Items))
	seen := make(map[string]bool, len(doc.Items))
	var errs []error
	for i, d := range doc.Items {
		it := d.toItem()
		if seen[it.ID] {
			errs = append(errs, &ValidationError{ItemID: it.ID, Field: "id", Message: fmt.Sprintf("duplicate id at index %d", i)})
			continue
		}
		seen[it.ID] = true
		if err := Validate(it); err != nil {
			errs = append(errs, err)
			continue
		}
		items = append(items, it)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return items, nil
}

// validateCatalogDocument checks the raw YAML against catalogSchema.
func validateCatalogDocument(raw []byte) error {
	var parsed any
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("decode catalog: %w", err)
	}

	// The schema validator expects JSON-shaped values, so round-trip the
	// YAML tree through encoding/json.
	asJSON, err := json.Marshal(parsed)
	if err != nil {
		return fmt.Errorf("normalize catalog: %w", err)
	}
	var instance any
	if err := json.Unmarshal(asJSON, &instance); err != nil {
		return fmt.Errorf("normalize catalog: %w", err)
	}

	sch, err := catalogValidator()
	if err != nil {
		return err
	}
	if err := sch.Validate(instance); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}

// catalogValidator compiles catalogSchema once.
func catalogValidator() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		defBytes, err := json.Marshal(catalogSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal catalog schema: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compileErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const schemaURL = "schema://phishdrill-catalog.json"
		if err := c.AddResource(schemaURL, defParsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile catalog schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}
