package extract

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// Tiered response parsing, ordered cheapest-first. Generative backends are
// asked for bare JSON but routinely wrap it in fences or prose; each tier
// peels one more layer of that. First structural success wins.
type Parser struct {
	DefaultCurrency string
	Logger          *slog.Logger
}

func NewParser(defaultCurrency string, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultCurrency == "" {
		defaultCurrency = "GBP"
	}
	return &Parser{DefaultCurrency: defaultCurrency, Logger: logger}
}

var (
	reFence      = regexp.MustCompile("```(?:json)?\\s*")
	reEmbedded   = regexp.MustCompile(`(?s)\{.*?"amount".*?\}`)
	reAmountKV   = regexp.MustCompile(`"amount":\s*([0-9.]+)`)
	reVendorKV   = regexp.MustCompile(`"vendor":\s*"([^"]+)"`)
	reCategoryKV = regexp.MustCompile(`"category":\s*"([^"]+)"`)
	reConfKV     = regexp.MustCompile(`"confidence":\s*([0-9.]+)`)
	reCurrencyKV = regexp.MustCompile(`"currency":\s*"([^"]+)"`)
)

// Parse applies the tiers in order and returns the decoded object, the tier
// that succeeded (1-based), and ok=false when every tier failed.
func (p *Parser) Parse(response string) (map[string]any, int, bool) {
	response = strings.TrimSpace(response)

	// Tier 1: the whole response is JSON.
	if m, ok := decodeObject(response); ok {
		return normalize(m), 1, true
	}

	// Tier 2: strip Markdown code fences and retry.
	cleaned := strings.TrimSpace(reFence.ReplaceAllString(response, ""))
	if m, ok := decodeObject(cleaned); ok {
		return normalize(m), 2, true
	}

	// Tier 3: first brace-delimited object mentioning "amount".
	if frag := reEmbedded.FindString(response); frag != "" {
		if m, ok := decodeObject(frag); ok {
			return normalize(m), 3, true
		}
	}

	// Tier 4: field-by-field regex salvage. Needs amount, vendor and category;
	// confidence and currency get defaults.
	amount := reAmountKV.FindStringSubmatch(response)
	vendor := reVendorKV.FindStringSubmatch(response)
	category := reCategoryKV.FindStringSubmatch(response)
	if amount == nil || vendor == nil || category == nil {
		return nil, 0, false
	}
	amt, err := strconv.ParseFloat(amount[1], 64)
	if err != nil {
		return nil, 0, false
	}
	conf := 0.7
	if c := reConfKV.FindStringSubmatch(response); c != nil {
		if v, err := strconv.ParseFloat(c[1], 64); err == nil {
			conf = v
		}
	}
	currency := p.DefaultCurrency
	if c := reCurrencyKV.FindStringSubmatch(response); c != nil {
		currency = c[1]
	}
	m := map[string]any{
		"amount":     amt,
		"vendor":     vendor[1],
		"category":   category[1],
		"confidence": conf,
		"currency":   currency,
	}
	return normalize(m), 4, true
}

func decodeObject(s string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, false
	}
	return m, true
}

// normalize guarantees lineItems and hasDetailedItems exist when the source
// JSON omitted them, coerces quoted numerics, and drops explicit nulls on
// optionals. A present non-array lineItems is left alone for validation to
// reject.
func normalize(m map[string]any) map[string]any {
	if _, present := m["lineItems"]; !present {
		m["lineItems"] = []any{}
	}
	if _, ok := m["hasDetailedItems"]; !ok {
		items, _ := m["lineItems"].([]any)
		m["hasDetailedItems"] = len(items) > 0
	}
	for _, k := range []string{"date", "subtotal", "totalTax"} {
		if v, present := m[k]; present && v == nil {
			delete(m, k)
		}
	}
	coerceNumerics(m, "amount", "confidence", "subtotal", "totalTax")
	if items, ok := m["lineItems"].([]any); ok {
		for _, it := range items {
			if obj, ok := it.(map[string]any); ok {
				coerceNumerics(obj, "quantity", "unitPrice", "subtotal", "taxRate", "taxAmount")
			}
		}
	}
	return m
}

// coerceNumerics converts quoted numbers ("15.43") in place. Values that do
// not parse stay strings and fail schema validation.
func coerceNumerics(m map[string]any, keys ...string) {
	for _, k := range keys {
		s, ok := m[k].(string)
		if !ok {
			continue
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			m[k] = f
		}
	}
}
