package document

import "encoding/json"

// ExpenseItem is one purchased line on a receipt or invoice. Price is the
// line's total amount and may be negative for discounts.
type ExpenseItem struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Quantity    float64  `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// UnmarshalJSON defaults quantity to 1 when the upstream JSON omits it.
func (it *ExpenseItem) UnmarshalJSON(data []byte) error {
	type alias ExpenseItem
	aux := struct {
		Quantity *float64 `json:"quantity"`
		*alias
	}{alias: (*alias)(it)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Quantity != nil {
		it.Quantity = *aux.Quantity
	} else {
		it.Quantity = 1.0
	}
	return nil
}

// ParsedDocument is the canonical structured output of the pipeline.
// Optional fields are pointers so that absence survives a JSON round trip
// instead of collapsing into zero values.
type ParsedDocument struct {
	Vendor string        `json:"vendor"`
	Total  float64       `json:"total"`
	Items  []ExpenseItem `json:"items"`

	InvoiceID     *string  `json:"invoice_id,omitempty"`
	OrderID       *string  `json:"order_id,omitempty"`
	PurchaseDate  *string  `json:"purchase_date,omitempty"`
	PurchaseTime  *string  `json:"purchase_time,omitempty"`
	Currency      *string  `json:"currency,omitempty"`
	TaxAmount     *float64 `json:"tax_amount,omitempty"`
	Subtotal      *float64 `json:"subtotal,omitempty"`
	PaymentMethod *string  `json:"payment_method,omitempty"`
}

// FallbackVendor is the vendor name carried by the fallback sentinel.
const FallbackVendor = "Unknown Store"

// Fallback returns the fixed sentinel document the structuring stage degrades
// to when retries are exhausted. Callers receive it as a normal success.
func Fallback() ParsedDocument {
	return ParsedDocument{
		Vendor: FallbackVendor,
		Total:  0,
		Items:  []ExpenseItem{},
	}
}

// Decode validates data against the document schema and unmarshals it.
// Unknown keys in data are ignored; a missing items array becomes empty.
func Decode(data []byte) (ParsedDocument, error) {
	if err := ValidateAgainstSchema(BuildDocumentJSONSchema(), data); err != nil {
		return ParsedDocument{}, err
	}
	var doc ParsedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return ParsedDocument{}, err
	}
	if doc.Items == nil {
		doc.Items = []ExpenseItem{}
	}
	return doc, nil
}
