package render

import (
	"fmt"
	"strconv"
	"strings"
)

// EscapeBytes encodes a byte sequence as the renderer's raw-mode escape
// string: each byte becomes ^NNN with NNN zero-padded to three digits,
// concatenated without separators.
func EscapeBytes(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data) * 4)
	for _, b := range data {
		fmt.Fprintf(&sb, "^%03d", b)
	}
	return sb.String()
}

// UnescapeBytes decodes a raw-mode escape string back into bytes. The input
// must be a sequence of ^NNN tokens and nothing else.
func UnescapeBytes(s string) ([]byte, error) {
	if len(s)%4 != 0 {
		return nil, fmt.Errorf("malformed escape string %q: length not a multiple of 4", s)
	}
	out := make([]byte, 0, len(s)/4)
	for i := 0; i < len(s); i += 4 {
		tok := s[i : i+4]
		if tok[0] != '^' {
			return nil, fmt.Errorf("malformed escape token %q", tok)
		}
		n, err := strconv.Atoi(tok[1:])
		if err != nil || n < 0 || n > 255 {
			return nil, fmt.Errorf("malformed escape token %q", tok)
		}
		out = append(out, byte(n))
	}
	return out, nil
}
