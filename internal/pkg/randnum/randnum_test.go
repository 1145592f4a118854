package randnum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigits_LengthAndCharset(t *testing.T) {
	for _, n := range []int{1, 6, 16} {
		s, err := Digits(n)
		require.NoError(t, err)
		assert.Len(t, s, n)
		for _, r := range s {
			assert.True(t, r >= '0' && r <= '9', "unexpected rune %q", r)
		}
	}
}

func TestCode_SixDigits(t *testing.T) {
	c, err := Code()
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9]{6}$`, c)
}

func TestDigits_Varies(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		s, err := Digits(16)
		require.NoError(t, err)
		seen[s] = struct{}{}
	}
	assert.Len(t, seen, 50)
}
