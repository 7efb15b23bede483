package ocr

import (
	"strings"
	"testing"
)

func TestLooksLikeReceipt(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"typical receipt", "TESCO STORES\nTOTAL  15.43\nTHANK YOU", true},
		{"currency symbol only", "CORNER SHOP something 12.50 £", true},
		{"keyword uppercase", "SUBTOTAL 9.99 plus extras", true},
		{"too short", "total", false},
		{"empty", "", false},
		{"no keywords", "hello world this is not a shopping document", false},
		{"mostly noise", "total ~~~ ### !!! ***  ^^^ %%% @@@ &&&", false},
	}
	for _, tc := range tests {
		if got := LooksLikeReceipt(tc.text); got != tc.want {
			t.Errorf("%s: LooksLikeReceipt(%q) = %v, want %v", tc.name, tc.text, got, tc.want)
		}
	}
}

func TestAlnumRatio(t *testing.T) {
	if r := alnumRatio("abc123"); r != 1.0 {
		t.Errorf("Expected ratio 1.0, got %v", r)
	}
	if r := alnumRatio("!!!"); r != 0 {
		t.Errorf("Expected ratio 0, got %v", r)
	}
	if r := alnumRatio(""); r != 0 {
		t.Errorf("Expected ratio 0 for empty input, got %v", r)
	}
	mixed := alnumRatio("ab  " + strings.Repeat("!", 6))
	if mixed >= 0.3 {
		t.Errorf("Expected ratio below 0.3, got %v", mixed)
	}
}
