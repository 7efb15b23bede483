package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/olajaido/smart-receipt-parser/constants"
	"github.com/olajaido/smart-receipt-parser/internal/common"
)

// AmountMax bounds any plausible single receipt total.
const AmountMax = 1_000_000

// BuildCandidateSchema returns the JSON-Schema (draft 2020-12 subset) a parsed
// candidate must satisfy. Extra keys from chatty models are tolerated; bounds
// that the schema cannot express (trimmed vendor length) are checked in Go.
func BuildCandidateSchema(categories []string) map[string]any {
	enum := make([]any, len(categories))
	for i, c := range categories {
		enum[i] = c
	}
	return map[string]any{
		"type":     "object",
		"required": []any{"amount", "vendor", "category"},
		"properties": map[string]any{
			"amount":     map[string]any{"type": "number", "minimum": 0, "maximum": AmountMax},
			"vendor":     map[string]any{"type": "string", "minLength": 1},
			"category":   map[string]any{"type": "string", "enum": enum},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"currency":   map[string]any{"type": "string"},
			"date":       map[string]any{"type": "string"},
			"subtotal":   map[string]any{"type": "number", "minimum": 0},
			"totalTax":   map[string]any{"type": "number", "minimum": 0},
			"lineItems": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"description"},
					"properties": map[string]any{
						"description": map[string]any{"type": "string", "minLength": 1},
						"quantity":    map[string]any{"type": "number"},
						"unitPrice":   map[string]any{"type": "number"},
						"subtotal":    map[string]any{"type": "number"},
						"taxRate":     map[string]any{"type": "number"},
						"taxAmount":   map[string]any{"type": "number"},
					},
				},
			},
		},
	}
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func candidateSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		b, err := json.Marshal(BuildCandidateSchema(constants.AsStringSlice()))
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("candidate.json", bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("candidate.json")
	})
	return schema, schemaErr
}

// ValidateCandidate applies the schema plus the Go-side invariants to a parsed
// object. Any failure is ErrInvalidCandidate, retryable at the attempt level.
func ValidateCandidate(m map[string]any) error {
	sch, err := candidateSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(m); err != nil {
		return fmt.Errorf("%v: %w", err, common.ErrInvalidCandidate)
	}
	vendor, _ := m["vendor"].(string)
	if len(strings.TrimSpace(vendor)) < 2 {
		return fmt.Errorf("vendor too short: %w", common.ErrInvalidCandidate)
	}
	return nil
}

// ToCandidate decodes a validated object into the typed shape.
func ToCandidate(m map[string]any) (Candidate, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return Candidate{}, fmt.Errorf("encode candidate: %w", err)
	}
	var c Candidate
	if err := json.Unmarshal(b, &c); err != nil {
		return Candidate{}, fmt.Errorf("decode candidate: %v: %w", err, common.ErrInvalidCandidate)
	}
	if c.LineItems == nil {
		c.LineItems = []LineItem{}
	}
	c.HasDetailedItems = len(c.LineItems) > 0
	return c, nil
}
