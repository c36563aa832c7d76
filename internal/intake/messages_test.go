package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyFor(t *testing.T) {
	cases := map[FieldError]string{
		{"user", MsgUnrecognized}:     "order.unrecognized_pcvid",
		{"supply", MsgUnrecognized}:   "order.unrecognized_shortcode",
		{"unit", MsgMissing}:          "order.invalid_dose",
		{"quantity", MsgMissing}:      "order.invalid_quantity",
		{"quantity", MsgNotANumber}:   "order.invalid_quantity",
		{"location", MsgMissing}:      "order.invalid_location",
		{"supply", MsgAlreadyOrdered}: "order.duplicate_order",
	}
	for fe, key := range cases {
		assert.Equal(t, key, KeyFor(fe))
	}
}

func TestRejectionKeyUsesFirstError(t *testing.T) {
	rej := Rejection{Errors: []FieldError{
		{Field: "user", Message: MsgUnrecognized},
		{Field: "quantity", Message: MsgNotANumber},
	}}
	assert.Equal(t, KeyUnrecognizedPCVID, rej.Key())
}
