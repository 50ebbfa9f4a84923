package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/tallyfetch/internal/model"
)

// ErrTrailingData is returned when a document holds more than one value.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// Decode parses one JSON document into a Node. Object key order is kept,
// numbers keep their literal text and arrays become list leaves.
//
// Syntax errors are returned as they come from encoding/json; nesting
// deeper than MaxDepth fails with a structural StageError.
func Decode(r io.Reader) (Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	n, err := decodeNode(dec, 1)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, ErrTrailingData
	}
	return n, nil
}

func decodeNode(dec *json.Decoder, depth int) (Node, error) {
	if depth > MaxDepth {
		return nil, model.NewStructuralError("decode", "", ErrTooDeep)
	}

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec, depth)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return NewLeaf(model.StringValue(t)), nil
	case json.Number:
		return NewLeaf(model.NumberValue(t.String())), nil
	case bool:
		return NewLeaf(model.BoolValue(t)), nil
	case nil:
		return NewLeaf(model.NullValue()), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder, depth int) (Node, error) {
	b := NewBranch()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, not a string", tok)
		}

		child, err := decodeNode(dec, depth+1)
		if err != nil {
			return nil, err
		}
		b.Set(key, child)
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return b, nil
}

func decodeArray(dec *json.Decoder) (Node, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; dec.More(); i++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(raw)
	}
	buf.WriteByte(']')

	// closing bracket
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, buf.Bytes()); err != nil {
		return nil, err
	}
	return NewLeaf(model.ListValue(compact.String())), nil
}
