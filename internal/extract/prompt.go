package extract

import (
	"strings"
)

// BuildPrompt composes the instructional prompt embedding the OCR text and the
// closed category set, requesting a single JSON object in the Candidate shape.
// Line items are optional and must be omitted when not clearly present.
func BuildPrompt(ocrText string, categories []string, lineItems bool) string {
	var b strings.Builder

	b.WriteString("You are an expert at analyzing ANY type of receipt from anywhere in the world.\n\n")
	b.WriteString("Analyze this receipt and extract whatever information is available:\n\n")
	b.WriteString("RECEIPT TEXT:\n")
	b.WriteString(ocrText)
	b.WriteString("\n\nINSTRUCTIONS:\n")
	b.WriteString("- Extract the FINAL TOTAL (what the customer actually paid)\n")
	b.WriteString("- Find the business/store name (ignore handwritten notes)\n")
	b.WriteString("- Categorize using ONLY one of these: ")
	b.WriteString(strings.Join(categories, ", "))
	b.WriteString("\n")
	if lineItems {
		b.WriteString("- IF line items are clearly visible, extract them (description, quantity, prices)\n")
		b.WriteString("- IF only totals are visible, that's perfectly fine - just extract totals\n")
	} else {
		b.WriteString("- Do NOT extract line items; return an empty lineItems array\n")
	}
	b.WriteString("- IF tax information is visible, include it\n")
	b.WriteString("- Provide confidence based on text clarity and completeness\n")
	b.WriteString("- Extract the date if clearly visible\n")
	b.WriteString("- Detect currency symbols and codes\n\n")
	b.WriteString("RESPOND WITH VALID JSON ONLY (no markdown, no explanation):\n\n")
	b.WriteString(`{
  "amount": <final_total_number>,
  "vendor": "<business_name>",
  "category": "<category>",
  "confidence": <0.0-1.0>,
  "currency": "<code>",
  "date": "<YYYY-MM-DD or null>",
  "lineItems": [
    {"description": "<item_name>", "quantity": <number>, "unitPrice": <price>, "subtotal": <total>}
  ],
  "subtotal": <subtotal_before_tax_or_null>,
  "totalTax": <tax_amount_or_null>,
  "hasDetailedItems": <true_or_false>
}`)
	b.WriteString("\n\nIMPORTANT NOTES:\n")
	b.WriteString("- If NO line items are clearly visible, return an empty lineItems array\n")
	b.WriteString("- If no tax breakdown is visible, set totalTax to null\n")
	b.WriteString("- Simple receipts (like coffee shops) are perfectly valid\n")
	b.WriteString("- Don't create fake line items if they're not clearly visible\n")
	b.WriteString("- Focus on accuracy over completeness")

	return b.String()
}
