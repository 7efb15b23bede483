package extract

import (
	"errors"
	"testing"

	"github.com/olajaido/smart-receipt-parser/internal/common"
)

func validCandidateMap() map[string]any {
	return map[string]any{
		"amount":     15.43,
		"vendor":     "Tesco",
		"category":   "Food",
		"confidence": 0.9,
		"currency":   "GBP",
		"lineItems":  []any{},
	}
}

func TestValidateAmountBounds(t *testing.T) {
	tests := []struct {
		amount float64
		ok     bool
	}{
		{0, true},
		{0.01, true},
		{999999.99, true},
		{1000000, true},
		{-0.01, false},
		{1000000.01, false},
	}
	for _, tc := range tests {
		m := validCandidateMap()
		m["amount"] = tc.amount
		err := ValidateCandidate(m)
		if tc.ok && err != nil {
			t.Errorf("amount %v: expected valid, got %v", tc.amount, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("amount %v: expected rejection", tc.amount)
		}
		if !tc.ok && !errors.Is(err, common.ErrInvalidCandidate) {
			t.Errorf("amount %v: expected ErrInvalidCandidate, got %v", tc.amount, err)
		}
	}
}

func TestValidateCategoryCaseSensitive(t *testing.T) {
	for _, category := range []string{"food", "FOOD", "Groceries", ""} {
		m := validCandidateMap()
		m["category"] = category
		if err := ValidateCandidate(m); err == nil {
			t.Errorf("category %q: expected rejection", category)
		}
	}

	m := validCandidateMap()
	m["category"] = "Healthcare"
	if err := ValidateCandidate(m); err != nil {
		t.Errorf("category Healthcare: expected valid, got %v", err)
	}
}

func TestValidateVendorLength(t *testing.T) {
	for _, vendor := range []string{"", "X", "  ", " A "} {
		m := validCandidateMap()
		m["vendor"] = vendor
		err := ValidateCandidate(m)
		if err == nil {
			t.Errorf("vendor %q: expected rejection", vendor)
			continue
		}
		if !errors.Is(err, common.ErrInvalidCandidate) {
			t.Errorf("vendor %q: expected ErrInvalidCandidate, got %v", vendor, err)
		}
	}
}

func TestValidateMissingRequiredField(t *testing.T) {
	for _, field := range []string{"amount", "vendor", "category"} {
		m := validCandidateMap()
		delete(m, field)
		if err := ValidateCandidate(m); err == nil {
			t.Errorf("missing %q: expected rejection", field)
		}
	}
}

func TestValidateConfidenceBounds(t *testing.T) {
	m := validCandidateMap()
	m["confidence"] = 1.5
	if err := ValidateCandidate(m); err == nil {
		t.Error("confidence 1.5: expected rejection")
	}
}

func TestValidateLineItemsRequireDescription(t *testing.T) {
	m := validCandidateMap()
	m["lineItems"] = []any{
		map[string]any{"quantity": 1.0, "unitPrice": 2.0},
	}
	if err := ValidateCandidate(m); err == nil {
		t.Error("line item without description: expected rejection")
	}
}

func TestToCandidate(t *testing.T) {
	m := validCandidateMap()
	m["lineItems"] = []any{
		map[string]any{"description": "Latte", "quantity": 1.0, "unitPrice": 3.20, "subtotal": 3.20},
	}

	c, err := ToCandidate(m)
	if err != nil {
		t.Fatalf("ToCandidate failed: %v", err)
	}
	if c.Vendor != "Tesco" || c.Amount != 15.43 {
		t.Errorf("Unexpected candidate: %+v", c)
	}
	if len(c.LineItems) != 1 || c.LineItems[0].Description != "Latte" {
		t.Errorf("Unexpected line items: %+v", c.LineItems)
	}
	if !c.HasDetailedItems {
		t.Error("Expected hasDetailedItems true")
	}

	delete(m, "lineItems")
	c, err = ToCandidate(m)
	if err != nil {
		t.Fatalf("ToCandidate failed: %v", err)
	}
	if c.LineItems == nil {
		t.Error("Expected non-nil line items slice")
	}
	if c.HasDetailedItems {
		t.Error("Expected hasDetailedItems false without items")
	}
}
