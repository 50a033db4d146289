package usecase

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoStructuredPayload means no JSON span in the text could be decoded.
var ErrNoStructuredPayload = errors.New("no structured payload found")

// ExtractStructured decodes a JSON payload out of reasoning-service text that
// may wrap it in prose or code fences. It first tries the whole text, then
// every balanced {...} or [...] span from left to right, so the outermost
// decodable span wins.
//
// When keys are given, an object span is accepted only if it carries at least
// one of them; field type mismatches inside an accepted object are tolerated
// and leave the affected fields at their zero value.
func ExtractStructured[T any](raw string, keys ...string) (T, error) {
	var zero T
	text := strings.TrimSpace(raw)
	if text == "" {
		return zero, ErrNoStructuredPayload
	}
	if v, ok := decodeSpan[T](text, keys); ok {
		return v, nil
	}
	for start := 0; start < len(text); start++ {
		if text[start] != '{' && text[start] != '[' {
			continue
		}
		end := matchingClose(text, start)
		if end < 0 {
			continue
		}
		if v, ok := decodeSpan[T](text[start:end+1], keys); ok {
			return v, nil
		}
	}
	return zero, ErrNoStructuredPayload
}

func decodeSpan[T any](span string, keys []string) (T, bool) {
	var v T
	data := []byte(span)
	if !json.Valid(data) {
		return v, false
	}
	if len(keys) > 0 {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil || !hasAnyKey(probe, keys) {
			return v, false
		}
	}
	err := json.Unmarshal(data, &v)
	if err == nil {
		return v, true
	}
	var typeErr *json.UnmarshalTypeError
	return v, len(keys) > 0 && errors.As(err, &typeErr)
}

func hasAnyKey(obj map[string]json.RawMessage, keys []string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

// matchingClose returns the index of the bracket closing text[start], skipping
// brackets inside JSON strings, or -1 when the span never closes.
func matchingClose(text string, start int) int {
	var stack []byte
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}
