package llm

import (
	"strings"
	"unicode/utf8"
)

// maxPromptChars is the fixed token-budget guard applied to OCR text before it
// is embedded in the extraction prompt. Not configurable.
const maxPromptChars = 1000

// TruncateForPrompt cuts text to the prompt budget, appending an ellipsis
// marker when anything was dropped. The budget counts characters, not bytes,
// so multibyte OCR text is never cut mid-rune.
func TruncateForPrompt(text string) string {
	return truncateRunes(text, maxPromptChars)
}

// truncateRunes cuts s to at most n characters, appending "..." when anything
// was dropped.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// BuildExtractionPrompt composes the fixed extraction prompt around the
// (budget-truncated) OCR text.
func BuildExtractionPrompt(text string) string {
	var b strings.Builder
	b.WriteString(`You are an expert data extractor. Parse the following document text into a structured JSON format.

Your task is to identify and extract the following fields:
- vendor (string): The name of the store, company, or vendor.
- total (float): The final total amount.
- subtotal (float, optional): The subtotal before taxes or discounts.
- tax_amount (float, optional): The total amount of tax paid.
- currency (string, optional): The currency code (e.g., "MYR", "USD").
- invoice_id (string, optional): The invoice, receipt, or document number.
- order_id (string, optional): The order number, if available.
- purchase_date (string, optional): The date of the transaction in YYYY-MM-DD format.
- purchase_time (string, optional): The time of the transaction in HH:MM:SS format.
- payment_method (string, optional): The method of payment (e.g., "cash", "credit card").
- items (array of objects): A list of purchased items. Each item should have:
  - name (string): The name of the item.
  - quantity (float): The quantity of the item, defaulting to 1.0 if not specified.
  - price (float): The total price for the item line (quantity * unit_price).
  - unit_price (float, optional): The price per unit of the item.
  - description (string, optional): Any additional details about the item.

If a field is not present in the text, omit it from the JSON, unless it has a default value.
Return only the valid JSON object, without any surrounding text or markdown.

Document Text:
---
`)
	b.WriteString(TruncateForPrompt(text))
	b.WriteString("\n---\n")
	return b.String()
}
