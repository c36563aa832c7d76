package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	f, err := Parse("123456, ASDF, 30mg, 50, Somewhere")
	require.NoError(t, err)

	assert.Equal(t, "123456", f.PCVID)
	assert.Equal(t, "ASDF", f.Shortcode)
	assert.Equal(t, "30", f.DosageValue)
	assert.Equal(t, "mg", f.DosageUnit)
	assert.Equal(t, "30mg", f.Dosage())
	assert.Equal(t, "50", f.Quantity)
	assert.Equal(t, "Somewhere", f.Location)
}

func TestParseJoinsTrailingLocationTokens(t *testing.T) {
	f, err := Parse("123456, ASDF, 30mg, 50, Hill Clinic, Ward 3")
	require.NoError(t, err)
	assert.Equal(t, "Hill Clinic, Ward 3", f.Location)
}

func TestParseAllowsEmptyLocation(t *testing.T) {
	// Location can fall back to the user's stored default during validation.
	f, err := Parse("123456, ASDF, 30mg, 50, ")
	require.NoError(t, err)
	assert.Empty(t, f.Location)
}

func TestParseUnparseable(t *testing.T) {
	for _, raw := range []string{
		"",
		"This message should not parse as a valid order",
		"123456, ASDF, 30mg",
		"123456, ASDF, 30mg, 50",
		", ASDF, 30mg, 50, Somewhere",
		"123456, , 30mg, 50, Somewhere",
		"123456, ASDF, , 50, Somewhere",
		"123456, ASDF, 30mg, , Somewhere",
	} {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrUnparseable, "raw=%q", raw)
	}
}

func TestSplitDosage(t *testing.T) {
	cases := []struct {
		token, value, unit string
	}{
		{"30mg", "30", "mg"},
		{"2.5ml", "2.5", "ml"},
		{"30 mg", "30", "mg"},
		{"mg", "", "mg"},
		{"100", "100", ""},
	}
	for _, c := range cases {
		value, unit := splitDosage(c.token)
		assert.Equal(t, c.value, value, "token=%q", c.token)
		assert.Equal(t, c.unit, unit, "token=%q", c.token)
	}
}
