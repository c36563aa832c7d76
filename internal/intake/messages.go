package intake

// Message-selection keys returned to the gateway. Rendering the localized
// text is the gateway's job; only the key choice lives here. The key names
// are fixed; external fixtures assert on them.
const (
	KeyConfirmation          = "order.confirmation"
	KeyUnparseable           = "order.unparseable"
	KeyUnrecognizedPCVID     = "order.unrecognized_pcvid"
	KeyUnrecognizedShortcode = "order.unrecognized_shortcode"
	KeyInvalidDose           = "order.invalid_dose"
	KeyInvalidQuantity       = "order.invalid_quantity"
	KeyInvalidLocation       = "order.invalid_location"
	KeyDuplicateOrder        = "order.duplicate_order"
)

type fieldMessage struct {
	field   string
	message string
}

var keyTable = map[fieldMessage]string{
	{"user", MsgUnrecognized}:     KeyUnrecognizedPCVID,
	{"supply", MsgUnrecognized}:   KeyUnrecognizedShortcode,
	{"unit", MsgMissing}:          KeyInvalidDose,
	{"quantity", MsgMissing}:      KeyInvalidQuantity,
	{"quantity", MsgNotANumber}:   KeyInvalidQuantity,
	{"location", MsgMissing}:      KeyInvalidLocation,
	{"supply", MsgAlreadyOrdered}: KeyDuplicateOrder,
}

// KeyFor maps a single field error onto its localized message key.
func KeyFor(e FieldError) string {
	if key, ok := keyTable[fieldMessage{e.Field, e.Message}]; ok {
		return key
	}
	return KeyUnparseable
}

// Key selects the message key for the rejection: the key of the first error
// in rule order.
func (r Rejection) Key() string {
	if len(r.Errors) == 0 {
		return KeyConfirmation
	}
	return KeyFor(r.Errors[0])
}
