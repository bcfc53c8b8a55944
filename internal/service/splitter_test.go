package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naviai-server/internal/models"
)

func TestSplitQueries(t *testing.T) {
	t.Run("splits on newlines and drops comment lines", func(t *testing.T) {
		candidates, err := SplitQueries("abcd\n#skip this line\nefgh")
		require.NoError(t, err)
		assert.Equal(t, []string{"abcd", "efgh"}, candidates)
	})

	t.Run("splits on long dot runs", func(t *testing.T) {
		candidates, err := SplitQueries("근처 주유소 찾아줘....회사까지 안내해줘")
		require.NoError(t, err)
		assert.Equal(t, []string{"근처 주유소 찾아줘", "회사까지 안내해줘"}, candidates)
	})

	t.Run("strips enumeration prefixes", func(t *testing.T) {
		candidates, err := SplitQueries("1. 근처 주유소 찾아줘\n2) 앞에 왜 이렇게 막혀?")
		require.NoError(t, err)
		assert.Equal(t, []string{"근처 주유소 찾아줘", "앞에 왜 이렇게 막혀?"}, candidates)
	})

	t.Run("keeps utterances starting with digits", func(t *testing.T) {
		candidates, err := SplitQueries("3시 방향에 뭐가 있어?")
		require.NoError(t, err)
		assert.Equal(t, []string{"3시 방향에 뭐가 있어?"}, candidates)
	})

	t.Run("drops short segments by rune count", func(t *testing.T) {
		// Three Korean characters are three runes, not nine bytes.
		candidates, err := SplitQueries("안내해\n회사까지 안내해줘")
		require.NoError(t, err)
		assert.Equal(t, []string{"회사까지 안내해줘"}, candidates)
	})

	t.Run("returns ErrEmptyInput when nothing survives", func(t *testing.T) {
		_, err := SplitQueries("##\n#\n")
		assert.ErrorIs(t, err, models.ErrEmptyInput)
	})

	t.Run("returns ErrEmptyInput for blank input", func(t *testing.T) {
		_, err := SplitQueries("   \n\n  ")
		assert.ErrorIs(t, err, models.ErrEmptyInput)
	})
}
