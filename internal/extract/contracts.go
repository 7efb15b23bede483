package extract

import "context"

// LineItem is a single purchased entry on a receipt.
type LineItem struct {
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	UnitPrice   float64  `json:"unitPrice"`
	Subtotal    float64  `json:"subtotal"`
	TaxRate     *float64 `json:"taxRate,omitempty"`
	TaxAmount   *float64 `json:"taxAmount,omitempty"`
}

// Candidate is the structured receipt guess produced by either the
// model-driven orchestrator or the heuristic extractor. Exactly one candidate
// becomes authoritative per request after validation.
type Candidate struct {
	Amount           float64    `json:"amount"`
	Vendor           string     `json:"vendor"`
	Category         string     `json:"category"`
	Confidence       float64    `json:"confidence"`
	Currency         string     `json:"currency"`
	Date             string     `json:"date,omitempty"` // YYYY-MM-DD
	LineItems        []LineItem `json:"lineItems"`
	Subtotal         *float64   `json:"subtotal,omitempty"`
	TotalTax         *float64   `json:"totalTax,omitempty"`
	HasDetailedItems bool       `json:"hasDetailedItems"`
}

// Backend is the generative extraction collaborator: one prompt in, one
// textual completion out.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
