package extract

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/olajaido/smart-receipt-parser/constants"
)

const (
	maxHeuristicItems = 10
	vendorMaxLen      = 60
	unknownVendor     = "Unknown Store"
)

// Amount patterns in priority order: balance/amount-due, grand/final total,
// symbol-then-tender, generic TOTAL. For the first pattern with any hit we
// take the maximum value among its matches, which prefers "Total 12.50" over
// "Subtotal 10.00" when both land in the same tier.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:BALANCE|TOTAL|AMOUNT)\s+(?:DUE|PAID)?[:\s]*[£$€¥]?([0-9,]+\.?[0-9]*)`),
	regexp.MustCompile(`(?i)(?:GRAND|FINAL)\s*TOTAL[:\s]*[£$€¥]?([0-9,]+\.?[0-9]*)`),
	regexp.MustCompile(`(?i)[£$€¥]\s*([0-9,]+\.[0-9]{2})\s*(?:CASH|CARD|PAID)`),
	regexp.MustCompile(`(?i)TOTAL[:\s]*[£$€¥]?([0-9,]+\.?[0-9]*)`),
}

var businessKeywords = []string{"ltd", "limited", "inc", "corp", "group", "company", "store", "market", "shop"}

var reDateLine = regexp.MustCompile(`^\d+[./]\d+`)

// Category keyword sets tested in priority order; first hit wins.
var categoryRules = []struct {
	category constants.Category
	keywords []string
}{
	{constants.Food, []string{"grocery", "supermarket", "food", "restaurant", "cafe", "coffee", "pizza", "burger", "tesco", "sainsbury", "asda", "coop", "co-op", "mcdonald", "kfc"}},
	{constants.Fuel, []string{"petrol", "gas", "fuel", "shell", "bp", "esso", "texaco"}},
	{constants.Healthcare, []string{"pharmacy", "chemist", "boots", "hospital", "clinic", "medical"}},
	{constants.Office, []string{"office", "supplies", "staples", "paper", "stationery"}},
	{constants.Travel, []string{"travel", "train", "bus", "taxi", "uber", "hotel", "airline", "parking"}},
	{constants.Equipment, []string{"equipment", "hardware", "electronics", "computer", "software"}},
}

// Words that look like "description price" lines but are totals or tender,
// never purchased items.
var itemStopwords = []string{"total", "subtotal", "tax", "balance", "amount", "change", "cash", "card", "due", "paid"}

var itemPatterns = []*regexp.Regexp{
	regexp.MustCompile(`([A-Za-z][A-Za-z\s]+)\s+[£$€¥]?([0-9]+\.[0-9]{2})`),
	regexp.MustCompile(`([A-Za-z][A-Za-z\s]+)\s+([0-9]+\.[0-9]{2})`),
}

// Heuristic is the rule-based, dependency-free extractor: the guaranteed
// fallback when the generative backend is unavailable or keeps producing
// garbage. It is total: any input, including empty text, yields a candidate.
type Heuristic struct {
	DefaultCurrency string
	LineItems       bool
	Logger          *slog.Logger
}

func NewHeuristic(defaultCurrency string, lineItems bool, logger *slog.Logger) *Heuristic {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultCurrency == "" {
		defaultCurrency = constants.DefaultCurrency
	}
	return &Heuristic{DefaultCurrency: defaultCurrency, LineItems: lineItems, Logger: logger}
}

// Extract never fails.
func (h *Heuristic) Extract(text string) Candidate {
	amount := h.detectAmount(text)
	vendor := h.detectVendor(text)
	category := h.detectCategory(text)
	currency := h.detectCurrency(text)

	var items []LineItem
	if h.LineItems {
		items = h.detectLineItems(text)
	}
	if items == nil {
		items = []LineItem{}
	}

	confidence := 0.5
	var subtotal *float64
	if len(items) > 0 {
		confidence = 0.6
		var sum float64
		for _, it := range items {
			sum += it.Subtotal
		}
		subtotal = &sum
	}

	h.Logger.Debug("extract.heuristic",
		"amount", amount,
		"vendor", vendor,
		"category", string(category),
		"currency", currency,
		"items", len(items),
	)

	return Candidate{
		Amount:           amount,
		Vendor:           vendor,
		Category:         string(category),
		Confidence:       confidence,
		Currency:         currency,
		LineItems:        items,
		Subtotal:         subtotal,
		HasDetailedItems: len(items) > 0,
	}
}

func (h *Heuristic) detectAmount(text string) float64 {
	for _, pattern := range amountPatterns {
		matches := pattern.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}
		var best float64
		found := false
		for _, m := range matches {
			v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
			if err != nil {
				continue
			}
			if !found || v > best {
				best = v
				found = true
			}
		}
		if found {
			return best
		}
	}
	return 0.0
}

func (h *Heuristic) detectVendor(text string) string {
	lines := nonBlankLines(text)

	limit := min(len(lines), 10)
	for _, line := range lines[:limit] {
		lower := strings.ToLower(line)
		for _, kw := range businessKeywords {
			if strings.Contains(lower, kw) {
				return truncateVendor(line)
			}
		}
	}

	limit = min(len(lines), 8)
	for _, line := range lines[:limit] {
		if len(line) > 5 && !reDateLine.MatchString(line) {
			return truncateVendor(line)
		}
	}
	return unknownVendor
}

func (h *Heuristic) detectCategory(text string) constants.Category {
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return constants.Other
}

func (h *Heuristic) detectCurrency(text string) string {
	switch {
	case strings.Contains(text, "$"):
		return "USD"
	case strings.Contains(text, "€"):
		return "EUR"
	case strings.Contains(text, "¥"):
		return "JPY"
	default:
		return h.DefaultCurrency
	}
}

func (h *Heuristic) detectLineItems(text string) []LineItem {
	for _, pattern := range itemPatterns {
		var items []LineItem
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			if len(items) >= maxHeuristicItems {
				break
			}
			desc := strings.TrimSpace(m[1])
			if len(desc) <= 2 || isItemStopword(desc) {
				continue
			}
			price, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			items = append(items, LineItem{
				Description: desc,
				Quantity:    1,
				UnitPrice:   price,
				Subtotal:    price,
			})
		}
		if len(items) > 0 {
			return items
		}
	}
	return nil
}

func isItemStopword(desc string) bool {
	lower := strings.ToLower(desc)
	for _, w := range itemStopwords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func nonBlankLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func truncateVendor(line string) string {
	runes := []rune(line)
	if len(runes) > vendorMaxLen {
		return string(runes[:vendorMaxLen])
	}
	return line
}
