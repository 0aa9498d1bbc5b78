package rag

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

const snippetMaxLen = 200

// Composer turns a question plus retrieved context into an answer with
// citations. Citations are derived from exactly the matches placed in the
// prompt, so the citation set and the evidence the model saw never diverge.
type Composer struct {
	generator Generator
	logger    zerolog.Logger
}

func NewComposer(generator Generator, logger zerolog.Logger) *Composer {
	return &Composer{
		generator: generator,
		logger:    logger,
	}
}

// Compose builds the prompt, invokes the generator and pairs the answer with
// one citation per context chunk. A failed or empty generation is an error;
// an answer is never fabricated to cover for the model.
func (c *Composer) Compose(ctx context.Context, question string, matches []Match, mode Mode) (string, []Citation, error) {
	prompt := BuildPrompt(question, matches, mode)
	c.logger.Debug().
		Int("prompt_chars", len(prompt)).
		Int("sources", len(matches)).
		Msg("Prompt built")

	raw, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return "", nil, err
	}

	answer := strings.TrimSpace(raw)
	if answer == "" {
		return "", nil, errors.New("generator returned empty output")
	}

	citations := make([]Citation, len(matches))
	for i, m := range matches {
		citations[i] = Citation{
			DocID:   m.Chunk.DocID,
			Title:   m.Chunk.Title,
			ChunkID: m.Chunk.ChunkID,
			Snippet: makeSnippet(m.Chunk.Text),
			Score:   m.Score,
		}
	}

	return answer, citations, nil
}

// makeSnippet truncates chunk text for display, preferring a sentence or word
// boundary in the last 30% of the window over a hard cut.
func makeSnippet(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= snippetMaxLen {
		return text
	}

	truncated := text[:snippetMaxLen]
	minCut := snippetMaxLen * 7 / 10

	if i := strings.LastIndexByte(truncated, '.'); i > minCut {
		return text[:i+1]
	}
	if i := strings.LastIndexByte(truncated, ' '); i > minCut {
		return text[:i] + "..."
	}
	return text[:snippetMaxLen-3] + "..."
}
