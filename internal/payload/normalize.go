package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrNoObject is returned when no JSON object can be recovered from a completion
var ErrNoObject = errors.New("no JSON object found in completion")

// Normalize turns completion text into a Payload.
//
// The text is cut down to the span between the first '{' and the last '}',
// then parsed strictly. If that fails the Python-style literals (True, False,
// None) are lowered and the parse is retried, and as a last resort the span
// is passed through jsonrepair. Every path ends in encoding/json; the text is
// never evaluated.
func Normalize(raw string) (Payload, error) {
	span, ok := ExtractObject(raw)
	if !ok {
		return nil, ErrNoObject
	}

	if p, err := decodeObject(span); err == nil {
		return p, nil
	}

	lowered := NormalizeLiterals(span)
	if p, err := decodeObject(lowered); err == nil {
		return p, nil
	}

	repaired, err := jsonrepair.JSONRepair(lowered)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoObject, err)
	}
	p, err := decodeObject(repaired)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoObject, err)
	}
	return p, nil
}

// ExtractObject returns the substring from the first '{' to the last '}'
func ExtractObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", false
	}
	end := strings.LastIndex(text, "}")
	if end < start {
		return "", false
	}
	return text[start : end+1], true
}

func decodeObject(s string) (Payload, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrNoObject
	}
	return Payload(obj), nil
}

// NormalizeLiterals lowercases bare true/false/null literals in any casing
// (and maps None to null) while leaving quoted strings untouched. Both
// double- and single-quoted strings count, since Python-style dicts use the latter.
func NormalizeLiterals(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var quote byte
	escaped := false
	for i := 0; i < len(s); {
		c := s[i]
		if quote != 0 {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			i++
			continue
		}

		if c == '"' || c == '\'' {
			quote = c
			b.WriteByte(c)
			i++
			continue
		}

		if isIdentByte(c) {
			j := i
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			word := s[i:j]
			switch strings.ToLower(word) {
			case "true":
				b.WriteString("true")
			case "false":
				b.WriteString("false")
			case "none", "null":
				b.WriteString("null")
			default:
				b.WriteString(word)
			}
			i = j
			continue
		}

		b.WriteByte(c)
		i++
	}
	return b.String()
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
