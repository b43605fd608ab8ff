// Package codec is the transport encoding of file contents: UTF-8 bytes
// carried as standard base64. Go strings are byte sequences, so the pair
// is lossless for any text, including multi-byte scripts.
package codec

import (
	"encoding/base64"
	"fmt"
	"strings"
)

func Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// Decode accepts the line-wrapped base64 the contents API returns.
func Decode(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(stripWhitespace(s))
	if err != nil {
		return "", fmt.Errorf("codec: %w", err)
	}
	return string(b), nil
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
}
