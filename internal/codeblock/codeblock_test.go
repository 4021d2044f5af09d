package codeblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFirstSingleBlock(t *testing.T) {
	text := "Here is the fix:\n```go\nfunc main() {}\n```\nApply it."

	code, ok := ExtractFirst(text)
	require.True(t, ok)
	assert.Equal(t, "go\nfunc main() {}", code)
}

func TestExtractFirstReturnsFirstOfMany(t *testing.T) {
	text := "```one```middle```two```"

	code, ok := ExtractFirst(text)
	require.True(t, ok)
	assert.Equal(t, "one", code)
}

func TestExtractFirstTrimsWhitespace(t *testing.T) {
	code, ok := ExtractFirst("```\n\n  x := 1  \n\n```")
	require.True(t, ok)
	assert.Equal(t, "x := 1", code)
}

func TestExtractFirstNoBlock(t *testing.T) {
	_, ok := ExtractFirst("plain prose with `inline` ticks only")
	assert.False(t, ok)
}

func TestStripRemovesBlocks(t *testing.T) {
	text := "Before.\n```go\ncode\n```\nAfter."

	got := Strip(text)
	assert.Equal(t, "Before.\n\nAfter.", got)
	assert.NotContains(t, got, "```")
}

func TestStripRemovesEveryBlock(t *testing.T) {
	got := Strip("a```x```b```y```c")
	assert.Equal(t, "abc", got)
}

func TestStripSpansNewlines(t *testing.T) {
	got := Strip("say\n```\nline1\nline2\n```\ndone")
	assert.NotContains(t, got, "line1")
	assert.NotContains(t, got, "```")
}

func TestStripIsIdentityWithoutBlocks(t *testing.T) {
	text := "no fences here, just words"
	assert.Equal(t, text, Strip(text))
}
