package constants

import "strings"

// AllowedExtensions holds the image formats accepted for receipt ingestion.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// MaxImageBytes caps the size of a fetched receipt image.
const MaxImageBytes = 10 << 20 // 10 MiB

// ReceiptKeyPrefix filters object-created notifications to receipt uploads.
const ReceiptKeyPrefix = "receipts/"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether the (dotted or bare) extension is ingestible.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
