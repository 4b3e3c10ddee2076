package keys

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMask_LongKeys(t *testing.T) {
	for n := 12; n <= 64; n++ {
		key := strings.Repeat("a", 8) + strings.Repeat("x", n-12) + "9876"
		got := Mask(key)

		assert.True(t, strings.HasPrefix(got, key[:8]), "n=%d", n)
		assert.True(t, strings.HasSuffix(got, key[n-4:]), "n=%d", n)
		assert.Equal(t, n-12, strings.Count(got, Placeholder), "n=%d", n)
		assert.Equal(t, n, utf8.RuneCountInString(got), "n=%d", n)
		assert.NotContains(t, got, "x")
	}
}

func TestMask_Examples(t *testing.T) {
	assert.Equal(t, "eng_abcd••••••wxyz", Mask("eng_abcd123456wxyz"))
	assert.Equal(t, "eng_abcdwxyz", Mask("eng_abcdwxyz"))
}

func TestMask_ShortKeysNeverNegative(t *testing.T) {
	for n := 0; n < 12; n++ {
		key := strings.Repeat("k", n)
		got := Mask(key)
		assert.NotContains(t, got, Placeholder, "n=%d", n)
		assert.True(t, strings.HasPrefix(got, key[:min(8, n)]), "n=%d", n)
		assert.True(t, strings.HasSuffix(got, key[max(0, n-4):]), "n=%d", n)
	}
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "abcdefghghij", Mask("abcdefghij"))
}
