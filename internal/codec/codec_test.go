package codec

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripMultiByte(t *testing.T) {
	inputs := []string{
		"",
		"plain ascii",
		"2025 매크로 경제 흐름과 자산 배분 전략",
		"₩490,000 — 実践ポートフォリオ",
		"emoji 🚀👍🏽 and combining é",
		"export const COURSES: Course[] = [];\n\ttabs\r\nand newlines",
		string([]byte{0x00, 0xff, 0xfe}), // not even valid UTF-8
	}

	for _, in := range inputs {
		out, err := Decode(Encode(in))
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestRoundTripEveryRuneBlock(t *testing.T) {
	var sb strings.Builder
	for r := rune(0); r < 0x11000; r += 7 {
		if utf8.ValidRune(r) {
			sb.WriteRune(r)
		}
	}
	in := sb.String()

	out, err := Decode(Encode(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeLineWrapped(t *testing.T) {
	enc := Encode(strings.Repeat("한국어 텍스트 ", 20))

	var wrapped strings.Builder
	for i := 0; i < len(enc); i += 60 {
		end := i + 60
		if end > len(enc) {
			end = len(enc)
		}
		wrapped.WriteString(enc[i:end])
		wrapped.WriteString("\n")
	}

	out, err := Decode(wrapped.String())
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("한국어 텍스트 ", 20), out)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode("%%%not-base64")
	assert.Error(t, err)
}

func TestEncodeIsStandardBase64(t *testing.T) {
	// "한" is ED 95 9C
	assert.Equal(t, "7ZWc", Encode("한"))
}
