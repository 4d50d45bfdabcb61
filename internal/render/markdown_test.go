package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sample = `## Strategies

1. Use **calm** language
2. Offer a [quiet space](https://example.com/quiet)

See https://example.com/more for details.`

func TestMarkdownToHTML(t *testing.T) {
	out := MarkdownToHTML(sample)

	assert.Contains(t, out, "<h2>Strategies</h2>")
	assert.Contains(t, out, "<strong>calm</strong>")
	assert.Contains(t, out, "<ol>")
	assert.Contains(t, out, `rel="nofollow noreferrer"`)
	assert.Empty(t, MarkdownToHTML("  \n"))
}

func TestMarkdownToHTML_DropsRawHTML(t *testing.T) {
	out := MarkdownToHTML("Hello <script>alert(1)</script> there")

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "Hello")
}

func TestMarkdownToText(t *testing.T) {
	out := MarkdownToText(sample)

	assert.Equal(t, "Strategies Use calm language Offer a quiet space See for details.", out)
}

func TestRemoveLinks(t *testing.T) {
	assert.Equal(t, "read the guide now", RemoveLinks("read [the guide](https://example.com/g) now"))
	assert.Equal(t, "visit  today", RemoveLinks("visit www.example.com today"))
}
