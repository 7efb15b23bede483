package constants

import (
	"strings"
)

type Category string

// The closed category set. Stored values use these exact strings.
const (
	Food          Category = "Food"
	Office        Category = "Office"
	Travel        Category = "Travel"
	Equipment     Category = "Equipment"
	Entertainment Category = "Entertainment"
	Fuel          Category = "Fuel"
	Healthcare    Category = "Healthcare"
	Other         Category = "Other"
)

var allCategories = []Category{
	Food,
	Office,
	Travel,
	Equipment,
	Entertainment,
	Fuel,
	Healthcare,
	Other,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// IsValidCategory reports whether s is a member of the closed set in its
// canonical (case-sensitive) form.
func IsValidCategory(s string) bool {
	for _, cat := range allCategories {
		if s == string(cat) {
			return true
		}
	}
	return false
}

// Canonicalize maps a free-form label onto the closed set, ignoring case and
// surrounding whitespace. The second return is false when no member matches.
func Canonicalize(input string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Other, false
	}
	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}
	return Other, false
}
