package ocr

import (
	"strings"
	"unicode"
)

var receiptKeywords = []string{"total", "amount", "tax", "subtotal", "receipt", "$", "£", "€", "¥"}

// LooksLikeReceipt is an advisory predicate over recognized text. It never
// blocks extraction; callers log its verdict and proceed either way, since the
// extraction layer is expected to cope with noise.
func LooksLikeReceipt(text string) bool {
	if len(text) < MinUsableTextLen {
		return false
	}
	if alnumRatio(text) <= 0.3 {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range receiptKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func alnumRatio(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	var alnum, total int
	for _, r := range text {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	return float64(alnum) / float64(total)
}
