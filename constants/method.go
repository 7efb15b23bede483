package constants

// Provenance tags recorded on each stored receipt. Stable values; stored as-is.
const (
	MethodOCRPlusLLM        = "ocr+llm"
	MethodHeuristicFallback = "heuristic-fallback"
)

// NeedsReviewThreshold flags low-confidence extractions for human verification.
const NeedsReviewThreshold = 0.6

// DefaultCurrency is used when no currency evidence exists in the text.
const DefaultCurrency = "GBP"
