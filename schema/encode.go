// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mailru/easyjson/jwriter"
)

// Indent is the indentation used by Encode
const Indent = "  "

// Encode renders a tree produced by Decode as indented JSON followed by a newline
//
// Keys are written in insertion order, non-ASCII text is written as-is and HTML characters are not escaped
func Encode(v any) ([]byte, error) {
	w := jwriter.Writer{NoEscapeHTML: true}
	if err := writeValue(&w, v); err != nil {
		return nil, err
	}
	compact, err := w.BuildBytes()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, unescapeSeparators(compact), "", Indent); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeValue(w *jwriter.Writer, v any) error {
	switch val := v.(type) {
	case nil:
		w.RawString("null")
	case *Object:
		if val == nil {
			w.RawString("null")
			return nil
		}
		w.RawByte('{')
		for pair, first := val.Oldest(), true; pair != nil; pair, first = pair.Next(), false {
			if !first {
				w.RawByte(',')
			}
			w.String(pair.Key)
			w.RawByte(':')
			if err := writeValue(w, pair.Value); err != nil {
				return fmt.Errorf("%s: %w", pair.Key, err)
			}
		}
		w.RawByte('}')
	case []any:
		w.RawByte('[')
		for i, item := range val {
			if i > 0 {
				w.RawByte(',')
			}
			if err := writeValue(w, item); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		w.RawByte(']')
	case string:
		w.String(val)
	case json.Number:
		if val == "" {
			return errors.New("empty number")
		}
		w.RawString(val.String())
	case bool:
		w.Bool(val)
	case int:
		w.Int(val)
	case float64:
		w.Float64(val)
	default:
		return fmt.Errorf("unsupported value of type %T", v)
	}
	return nil
}

var separatorEscape = []byte(`\u202`)

// unescapeSeparators writes U+2028 and U+2029 back as literal characters, jwriter escapes them for JSONP
func unescapeSeparators(b []byte) []byte {
	if !bytes.Contains(b, separatorEscape) {
		return b
	}

	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' {
			out = append(out, b[i])
			continue
		}
		if bytes.HasPrefix(b[i:], separatorEscape) && i+5 < len(b) && (b[i+5] == '8' || b[i+5] == '9') {
			if b[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		// copy the whole escape so an escaped backslash never starts a new one
		out = append(out, b[i])
		if i+1 < len(b) {
			i++
			out = append(out, b[i])
		}
	}
	return out
}
