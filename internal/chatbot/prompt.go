package chatbot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/docuchat/cli/internal/vectordb"
)

// answerPromptTemplate grounds the model in the retrieved context. The
// "just say that you don't know" instruction is the grounding contract:
// the model is expected, not guaranteed, to honour it.
const answerPromptTemplate = `You are a helpful assistant that answers questions about team documentation.
Use the following pieces of context to answer the question at the end.
If you don't know the answer based on the context, just say that you don't know, don't try to make up an answer.

Context:
%s

Question: %s

Answer: `

// buildContext concatenates retrieved chunk texts into a single block,
// in the order the store returned them (most relevant first).
func buildContext(matches []vectordb.Match) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n\n")
}

// buildPrompt fills the answer template with context and question.
func buildPrompt(contextBlock, question string) string {
	return fmt.Sprintf(answerPromptTemplate, contextBlock, question)
}

// truncatePreview shortens content to at most limit bytes for source
// attribution, appending an ellipsis when cut. The cut backs off to a
// rune boundary so previews of multibyte text stay valid UTF-8.
func truncatePreview(content string, limit int) string {
	if len(content) <= limit {
		return content
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "..."
}
