package document

// BuildDocumentJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. Only vendor and total are required; vendor may be empty (item
// names may not), optional fields accept an explicit null, and unknown keys
// are allowed and dropped at decode time rather than failing validation.
func BuildDocumentJSONSchema() map[string]any {
	itemSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":        map[string]any{"type": "string", "minLength": 1},
			"price":       map[string]any{"type": "number"},
			"quantity":    map[string]any{"type": "number"},
			"unit_price":  nullable("number"),
			"description": nullable("string"),
		},
		"required":             []string{"name", "price"},
		"additionalProperties": true,
	}

	props := map[string]any{
		"vendor":         map[string]any{"type": "string"},
		"total":          map[string]any{"type": "number"},
		"items":          map[string]any{"type": "array", "items": itemSchema},
		"invoice_id":     nullable("string"),
		"order_id":       nullable("string"),
		"purchase_date":  nullable("string"),
		"purchase_time":  nullable("string"),
		"currency":       nullable("string"),
		"tax_amount":     nullable("number"),
		"subtotal":       nullable("number"),
		"payment_method": nullable("string"),
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties":           props,
		"required":             []string{"vendor", "total"},
	}
}

func nullable(typ string) map[string]any {
	return map[string]any{"type": []string{typ, "null"}}
}
