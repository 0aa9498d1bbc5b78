package rag

import (
	"fmt"
	"strings"
)

const promptPreamble = "You are a knowledgeable assistant answering questions about blood-donation operations and procedures."

// coreRules is what makes answers grounded and citations trustworthy: the
// model may only use the supplied sources and must admit when they fall short.
const coreRules = `CRITICAL INSTRUCTIONS:
- Answer ONLY using the provided sources below
- If the sources don't contain the answer to the question, clearly say "I don't know" or "The provided sources don't contain information about this topic"
- Do not use external knowledge or make assumptions beyond what's explicitly stated in the sources
- Always cite your sources using the format [1], [2], etc. when referencing information from the sources
- If multiple sources support the same point, cite all relevant sources like [1,2]`

const citationRules = `CITATION REQUIREMENTS:
- When referencing information from sources, immediately cite the source number in square brackets [1], [2], etc.
- If information comes from multiple sources, cite all relevant sources [1,2,3]
- Place citations right after the relevant statement, not at the end of paragraphs
- Every factual claim must have a citation unless it's a direct restatement of the question`

var modeInstructions = map[Mode]string{
	ModeGeneral: `Provide a concise, direct answer to the question based on the sources. Use clear, professional language and cite your sources appropriately.`,
	ModeChecklist: `Provide your answer as a clear, step-by-step checklist or numbered list. Break down the information into actionable steps or organized points. Each step should be cited with the appropriate sources.

Format your response as:
1. [Step/Point 1] [citation]
2. [Step/Point 2] [citation]
3. [Continue as needed...]`,
	ModePlainEnglish: `Provide a simplified explanation that would be easy for anyone to understand. Use simple language, avoid technical jargon, and explain concepts clearly. Break down complex information into digestible parts.`,
}

// BuildPrompt assembles the grounding rules, mode instructions, the numbered
// source block and the question into one generation request. Matches appear
// in retrieval order; every match placed here gets a citation and nothing
// else does.
func BuildPrompt(question string, matches []Match, mode Mode) string {
	instructions, ok := modeInstructions[mode]
	if !ok {
		instructions = modeInstructions[ModeGeneral]
	}

	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\n")
	b.WriteString(coreRules)
	b.WriteString("\n\n")
	b.WriteString(citationRules)
	b.WriteString("\n\n")
	b.WriteString(instructions)
	b.WriteString("\n\n")
	writeSources(&b, matches)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "QUESTION: %s", strings.TrimSpace(question))
	b.WriteString("\n\nANSWER:")
	return b.String()
}

func writeSources(b *strings.Builder, matches []Match) {
	if len(matches) == 0 {
		b.WriteString("SOURCES:\nNo relevant sources found for this question.")
		return
	}

	b.WriteString("SOURCES:\n")
	for i, m := range matches {
		fmt.Fprintf(b, "\nSource [%d]", i+1)
		if m.Chunk.Title != "" {
			fmt.Fprintf(b, " - %s", m.Chunk.Title)
		}
		fmt.Fprintf(b, " (Document: %s):\n%s\n", m.Chunk.DocID, strings.TrimSpace(m.Chunk.Text))
	}
}
