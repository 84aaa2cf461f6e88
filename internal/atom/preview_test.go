package atom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePreview_ExtractsFirstImage(t *testing.T) {
	_, image := DerivePreview("x ![a](one.png) y ![b](two.png)")

	require.NotNil(t, image)
	assert.Equal(t, "one.png", *image)
}

func TestDerivePreview_StripsMarkdownAndLimitsLength(t *testing.T) {
	source := "# title\n\n- [link](https://example.com)\n**bold** `code`"

	text, _ := DerivePreview(source)

	require.NotNil(t, text)
	assert.NotContains(t, *text, "#")
	assert.NotContains(t, *text, "*")
	assert.Contains(t, *text, "link")
	assert.LessOrEqual(t, len([]rune(*text)), previewTextLimit)
}

func TestDerivePreview_LongContentTruncatesAtRuneBoundary(t *testing.T) {
	source := strings.Repeat("日本語テキスト ", 50)

	text, _ := DerivePreview(source)

	require.NotNil(t, text)
	assert.Equal(t, previewTextLimit, len([]rune(*text)))
}

func TestDerivePreview_ComplexMarkdown(t *testing.T) {
	source := `
# title heading

> quote line

![cover]( https://cdn.example.com/first.png )
Paragraph with [ref](https://example.com/path?q=1) and **bold** + ` + "`code`" + `.

![second](two.png)
`

	text, image := DerivePreview(source)

	require.NotNil(t, image)
	assert.Equal(t, "https://cdn.example.com/first.png", *image)
	require.NotNil(t, text)
	assert.Contains(t, *text, "title heading")
	assert.Contains(t, *text, "quote line")
	assert.NotContains(t, *text, "![")
	assert.NotContains(t, *text, "](")
}

func TestDerivePreview_SymbolOnlyContentYieldsNothing(t *testing.T) {
	text, image := DerivePreview("### *** ``` ~~ []() ![]()")

	assert.Nil(t, text)
	assert.Nil(t, image)
}
