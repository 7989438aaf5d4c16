package layout

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeWords(t *testing.T) {
	t.Run("groups by composite line identity", func(t *testing.T) {
		words := []WordRecord{
			{Page: 1, Block: 0, Paragraph: 0, Line: 1, X: 10, Y: 10, W: 20, H: 10, Text: "Hello"},
			{Page: 1, Block: 0, Paragraph: 0, Line: 1, X: 35, Y: 10, W: 25, H: 10, Text: "World"},
			{Page: 1, Block: 0, Paragraph: 0, Line: 2, X: 10, Y: 25, W: 30, H: 10, Text: "Second"},
		}

		lines := MergeWords(words)
		require.Len(t, lines, 2)

		assert.Equal(t, "Hello World", lines[0].Text)
		assert.Equal(t, Box{X0: 10, Y0: 10, X1: 60, Y1: 20}, lines[0].Box)
		assert.Equal(t, "Second", lines[1].Text)
	})

	t.Run("same line index in different blocks stays separate", func(t *testing.T) {
		words := []WordRecord{
			{Page: 1, Block: 1, Line: 3, X: 0, Y: 0, W: 10, H: 10, Text: "left"},
			{Page: 1, Block: 2, Line: 3, X: 50, Y: 0, W: 10, H: 10, Text: "right"},
		}
		lines := MergeWords(words)
		require.Len(t, lines, 2)
		assert.Equal(t, "left", lines[0].Text)
		assert.Equal(t, "right", lines[1].Text)
	})

	t.Run("bbox only grows", func(t *testing.T) {
		words := []WordRecord{
			{Page: 1, Line: 1, X: 50, Y: 12, W: 20, H: 8, Text: "mid"},
			{Page: 1, Line: 1, X: 10, Y: 10, W: 20, H: 12, Text: "wide"},
			{Page: 1, Line: 1, X: 90, Y: 11, W: 15, H: 9, Text: "end"},
		}
		lines := MergeWords(words)
		require.Len(t, lines, 1)
		assert.Equal(t, Box{X0: 10, Y0: 10, X1: 105, Y1: 22}, lines[0].Box)
		assert.Equal(t, "mid wide end", lines[0].Text)
	})

	t.Run("skips whitespace-only words", func(t *testing.T) {
		words := []WordRecord{
			{Page: 1, Line: 1, X: 0, Y: 0, W: 5, H: 5, Text: "   "},
			{Page: 1, Line: 1, X: 10, Y: 0, W: 5, H: 5, Text: "kept"},
		}
		lines := MergeWords(words)
		require.Len(t, lines, 1)
		assert.Equal(t, "kept", lines[0].Text)
	})

	t.Run("empty input yields no lines", func(t *testing.T) {
		assert.Empty(t, MergeWords(nil))
	})
}

func TestRescaleLines(t *testing.T) {
	page := Page{PixelW: 1000, PixelH: 1000, LayoutW: 500, LayoutH: 500}
	lines := []TextLine{
		{Page: 1, Text: "a", Box: Box{X0: 10, Y0: 20, X1: 30, Y1: 25}},
	}

	RescaleLines(lines, page)
	assert.Equal(t, image.Rect(20, 40, 60, 50), lines[0].Pixel)
}

func TestJoinText(t *testing.T) {
	lines := []TextLine{
		{Text: "first line"},
		{Text: "second line"},
	}
	assert.Equal(t, "first line\nsecond line", JoinText(lines))
	assert.Empty(t, JoinText(nil))
}
