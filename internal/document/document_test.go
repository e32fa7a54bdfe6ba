package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string   { return &s }
func numptr(f float64) *float64 { return &f }

func TestFallbackSentinel(t *testing.T) {
	doc := Fallback()
	assert.Equal(t, "Unknown Store", doc.Vendor)
	assert.Equal(t, 0.0, doc.Total)
	assert.NotNil(t, doc.Items)
	assert.Empty(t, doc.Items)

	// the sentinel must itself pass schema validation
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, ValidateAgainstSchema(BuildDocumentJSONSchema(), b))
}

func TestDecodeMinimalDocument(t *testing.T) {
	doc, err := Decode([]byte(`{"vendor":"Acme","total":12.0}`))
	require.NoError(t, err)

	assert.Equal(t, "Acme", doc.Vendor)
	assert.Equal(t, 12.0, doc.Total)
	assert.NotNil(t, doc.Items)
	assert.Empty(t, doc.Items)
	assert.Nil(t, doc.Currency)
	assert.Nil(t, doc.TaxAmount)
}

func TestDecodeRejectsMissingRequiredFields(t *testing.T) {
	for _, raw := range []string{
		`{"total":12.0}`,
		`{"vendor":"Acme"}`,
		`{"vendor":"Acme","total":"twelve"}`,
		`[]`,
	} {
		_, err := Decode([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestDecodeAcceptsEmptyVendor(t *testing.T) {
	// vendor must be present and a string, but may be empty
	doc, err := Decode([]byte(`{"vendor":"","total":1}`))
	require.NoError(t, err)
	assert.Equal(t, "", doc.Vendor)
	assert.Equal(t, 1.0, doc.Total)
}

func TestDecodeRejectsEmptyItemName(t *testing.T) {
	_, err := Decode([]byte(`{"vendor":"Acme","total":1,"items":[{"name":"","price":1}]}`))
	assert.Error(t, err)
}

func TestDecodeItemQuantityDefaults(t *testing.T) {
	doc, err := Decode([]byte(`{
		"vendor":"Acme","total":10,
		"items":[
			{"name":"Coffee","price":4},
			{"name":"Bagel","price":6,"quantity":2,"unit_price":3}
		]
	}`))
	require.NoError(t, err)

	require.Len(t, doc.Items, 2)
	assert.Equal(t, 1.0, doc.Items[0].Quantity)
	assert.Nil(t, doc.Items[0].UnitPrice)
	assert.Equal(t, 2.0, doc.Items[1].Quantity)
	require.NotNil(t, doc.Items[1].UnitPrice)
	assert.Equal(t, 3.0, *doc.Items[1].UnitPrice)
}

func TestDecodeAllowsNegativePriceForDiscounts(t *testing.T) {
	doc, err := Decode([]byte(`{"vendor":"Acme","total":8,"items":[{"name":"Member discount","price":-2}]}`))
	require.NoError(t, err)
	assert.Equal(t, -2.0, doc.Items[0].Price)
}

func TestDecodeTreatsNullOptionalAsAbsent(t *testing.T) {
	doc, err := Decode([]byte(`{"vendor":"Acme","total":1,"currency":null,"tax_amount":null}`))
	require.NoError(t, err)
	assert.Nil(t, doc.Currency)
	assert.Nil(t, doc.TaxAmount)
}

func TestRoundTripPreservesOptionalAbsence(t *testing.T) {
	orig := ParsedDocument{
		Vendor:       "Acme Mart",
		Total:        42.9,
		Items:        []ExpenseItem{{Name: "Widget", Price: 42.9, Quantity: 3}},
		Currency:     strptr("MYR"),
		PurchaseDate: strptr("2024-06-01"),
		TaxAmount:    numptr(2.4),
		// InvoiceID, OrderID, Subtotal etc. deliberately absent
	}

	b, err := json.Marshal(orig)
	require.NoError(t, err)

	// absent optionals must not appear as keys at all
	var asMap map[string]any
	require.NoError(t, json.Unmarshal(b, &asMap))
	assert.NotContains(t, asMap, "invoice_id")
	assert.NotContains(t, asMap, "order_id")
	assert.NotContains(t, asMap, "subtotal")
	assert.Contains(t, asMap, "currency")

	back, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, orig, back)
}

func TestDecodeFullDocument(t *testing.T) {
	doc, err := Decode([]byte(`{
		"vendor":"Acme","total":25.5,"subtotal":24.0,"tax_amount":1.5,
		"currency":"USD","invoice_id":"INV-7","order_id":"ORD-9",
		"purchase_date":"2024-06-01","purchase_time":"13:45:00",
		"payment_method":"credit card",
		"items":[{"name":"Thing","price":25.5,"quantity":1,"description":"blue"}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "INV-7", *doc.InvoiceID)
	assert.Equal(t, "ORD-9", *doc.OrderID)
	assert.Equal(t, "13:45:00", *doc.PurchaseTime)
	assert.Equal(t, "credit card", *doc.PaymentMethod)
	assert.Equal(t, 24.0, *doc.Subtotal)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "blue", *doc.Items[0].Description)
}
