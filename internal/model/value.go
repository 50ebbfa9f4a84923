package model

import "strconv"

// Kind identifies the type of an atomic value.
type Kind int

const (
	// KindString is a text value. Characters of a text file, CSV cells and
	// spreadsheet cells are all strings.
	KindString Kind = iota

	// KindNumber is a numeric value kept as its literal text, so 1 and 1.0
	// are distinct values.
	KindNumber

	// KindBool is true or false.
	KindBool

	// KindNull is the JSON null literal.
	KindNull

	// KindList is a JSON array treated as a single leaf. Its text is the
	// compact JSON encoding of the array.
	KindList
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is an atomic value: the unit counted by the frequency counter.
//
// Value is comparable and can be used as a map key. Two values are equal
// when both their kind and their canonical text are equal; there is no
// coercion between kinds, so the string "1" and the number 1 are distinct.
type Value struct {
	kind Kind
	text string
}

// StringValue returns a string value.
func StringValue(s string) Value {
	return Value{kind: KindString, text: s}
}

// NumberValue returns a number value from its literal text.
func NumberValue(literal string) Value {
	return Value{kind: KindNumber, text: literal}
}

// BoolValue returns a boolean value.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, text: strconv.FormatBool(b)}
}

// NullValue returns the null value.
func NullValue() Value {
	return Value{kind: KindNull, text: "null"}
}

// ListValue returns a list leaf from its compact JSON encoding.
func ListValue(encoded string) Value {
	return Value{kind: KindList, text: encoded}
}

// NewValue rebuilds a value from its kind and canonical text, as stored by
// the history database.
func NewValue(kind Kind, text string) Value {
	return Value{kind: kind, text: text}
}

// Kind returns the value kind.
func (v Value) Kind() Kind {
	return v.kind
}

// String returns the natural representation of the value, without quoting
// or escaping.
func (v Value) String() string {
	return v.text
}
