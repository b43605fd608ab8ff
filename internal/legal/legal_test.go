package legal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	d, err := Lookup(" Terms ")
	require.NoError(t, err)
	assert.Equal(t, "이용약관", d.Title)
	assert.True(t, strings.HasPrefix(d.Body, "크립토매거진 이용약관"))
	assert.Contains(t, d.Body, "[제13조 (약관의 게시 및 개정)]")

	d, err = Lookup("privacy")
	require.NoError(t, err)
	assert.Contains(t, d.Body, "개인정보 보호책임자")

	_, err = Lookup("cookies")
	assert.ErrorContains(t, err, "privacy, terms")
}

func TestEffectiveDate(t *testing.T) {
	terms, _ := Lookup("terms")
	privacy, _ := Lookup("privacy")

	assert.Equal(t, "2025년 12월 01일", terms.EffectiveDate())
	assert.Equal(t, "2025년 12월 1일", privacy.EffectiveDate())
	assert.Empty(t, Document{Body: "no date"}.EffectiveDate())
}
