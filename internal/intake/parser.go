// Package intake holds the order-intake core: tokenizing raw message text,
// the ordered validation rule list, and confirmation key selection.
package intake

import (
	"errors"
	"strings"
	"unicode"
)

// ErrUnparseable marks raw text that does not tokenize into the required
// field layout. Such text never reaches validation.
var ErrUnparseable = errors.New("message did not parse as an order")

const delimiter = ","

// Fields is the positional tuple extracted from a raw message:
// "PCVID, shortcode, dosage, quantity, location". The dosage token is split
// into its numeric value and unit suffix.
type Fields struct {
	PCVID       string
	Shortcode   string
	DosageValue string
	DosageUnit  string
	Quantity    string
	Location    string
}

// Dosage packs the dosage value and unit back together with no separator,
// e.g. "30" + "mg" -> "30mg".
func (f Fields) Dosage() string {
	return f.DosageValue + f.DosageUnit
}

// Parse tokenizes raw text into the five ordered fields, trimming whitespace
// from each. Fewer than five tokens, or an empty pcvid/shortcode/dosage/
// quantity token, yields ErrUnparseable. Location may be empty here; it can
// fall back to the user's stored location during validation. No semantic
// checks happen in the parser.
func Parse(raw string) (Fields, error) {
	parts := strings.Split(raw, delimiter)
	if len(parts) < 5 {
		return Fields{}, ErrUnparseable
	}

	f := Fields{
		PCVID:     strings.TrimSpace(parts[0]),
		Shortcode: strings.TrimSpace(parts[1]),
		Quantity:  strings.TrimSpace(parts[3]),
		// Location is free text; extra delimiters belong to it.
		Location: strings.TrimSpace(strings.Join(parts[4:], delimiter)),
	}
	f.DosageValue, f.DosageUnit = splitDosage(strings.TrimSpace(parts[2]))

	if f.PCVID == "" || f.Shortcode == "" || f.Dosage() == "" || f.Quantity == "" {
		return Fields{}, ErrUnparseable
	}
	return f, nil
}

// splitDosage separates the leading numeric value from its unit suffix.
// A token without a leading number is carried entirely as the unit; whether
// that is acceptable is a validation question, not a parsing one.
func splitDosage(token string) (value, unit string) {
	i := 0
	for i < len(token) && (unicode.IsDigit(rune(token[i])) || token[i] == '.') {
		i++
	}
	return token[:i], strings.TrimSpace(token[i:])
}
