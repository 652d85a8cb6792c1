package chatbot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/docuchat/cli/internal/vectordb"
)

func TestBuildPrompt(t *testing.T) {
	matches := []vectordb.Match{
		{Record: vectordb.Record{Content: "first passage"}},
		{Record: vectordb.Record{Content: "second passage"}},
	}

	prompt := buildPrompt(buildContext(matches), "what is the policy?")

	assert.Contains(t, prompt, "first passage\n\nsecond passage")
	assert.Contains(t, prompt, "Question: what is the policy?")
	assert.Contains(t, prompt, "just say that you don't know")
}

func TestTruncatePreview(t *testing.T) {
	short := "fits entirely"
	assert.Equal(t, short, truncatePreview(short, 200))

	long := strings.Repeat("a", 250)
	got := truncatePreview(long, 200)
	assert.Equal(t, strings.Repeat("a", 200)+"...", got)
}

func TestTruncatePreview_MultibyteBoundary(t *testing.T) {
	// 3 bytes per rune; a limit of 200 falls mid-rune, so the cut must
	// back off rather than emit a broken sequence.
	content := strings.Repeat("文", 100)
	got := truncatePreview(content, 200)

	assert.True(t, utf8.ValidString(got), "preview is not valid UTF-8: %q", got)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.True(t, strings.HasPrefix(content, strings.TrimSuffix(got, "...")))
}
