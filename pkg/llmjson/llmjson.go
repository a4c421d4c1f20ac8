// Package llmjson pulls JSON values out of free-text model replies.
package llmjson

import (
	"encoding/json"
)

// FirstObject returns the first balanced {...} block in s. Braces inside
// JSON strings do not count.
func FirstObject(s string) (string, bool) {
	return firstBalanced(s, '{', '}')
}

// FirstArray is FirstObject for [...] blocks.
func FirstArray(s string) (string, bool) {
	return firstBalanced(s, '[', ']')
}

func firstBalanced(s string, open, close byte) (string, bool) {
	for start := 0; start < len(s); start++ {
		if s[start] != open {
			continue
		}
		if end, ok := matchFrom(s, start, open, close); ok {
			return s[start : end+1], true
		}
	}
	return "", false
}

// matchFrom finds the index closing the block opened at s[start].
func matchFrom(s string, start int, open, close byte) (int, bool) {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// DecodeObject decodes the first balanced object. A block that is not valid
// JSON is a failure; later blocks are not tried.
func DecodeObject(s string) (map[string]any, bool) {
	block, ok := FirstObject(s)
	if !ok {
		return nil, false
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(block), &out); err != nil {
		return nil, false
	}
	return out, true
}

// DecodeStrings decodes the first balanced array as a list of strings.
func DecodeStrings(s string) ([]string, bool) {
	block, ok := FirstArray(s)
	if !ok {
		return nil, false
	}
	var out []string
	if err := json.Unmarshal([]byte(block), &out); err != nil {
		return nil, false
	}
	return out, true
}
