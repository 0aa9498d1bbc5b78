package rag

import "fmt"

// Document is a named unit of source text loaded from the docs directory.
// Re-ingesting the same DocID supersedes the previous version.
type Document struct {
	DocID string
	Title string
	Text  string
}

// Chunk is a contiguous slice of a document's text. Start/End are character
// offsets into the original document and Text is exactly the [Start,End) slice.
type Chunk struct {
	DocID   string
	ChunkID int
	Title   string
	Text    string
	Start   int
	End     int
}

// CompositeID is the chunk's key in the vector index.
func (c Chunk) CompositeID() string {
	return fmt.Sprintf("%s_chunk_%d", c.DocID, c.ChunkID)
}

// Match is a retrieved chunk with its similarity score in [0,1].
type Match struct {
	Chunk Chunk
	Score float64
}

// Citation references a chunk that was part of the generation context.
type Citation struct {
	DocID   string  `json:"doc_id"`
	Title   string  `json:"title,omitempty"`
	ChunkID int     `json:"chunk_id"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Mode selects the response style of the generated answer.
type Mode string

const (
	ModeGeneral      Mode = "general"
	ModeChecklist    Mode = "checklist"
	ModePlainEnglish Mode = "plain_english"
)

// ParseMode maps a request string to a Mode. Empty defaults to general.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeGeneral, nil
	case ModeGeneral, ModeChecklist, ModePlainEnglish:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected general, checklist or plain_english)", s)
	}
}

// AskRequest is a single question against the indexed document set.
type AskRequest struct {
	Question string `json:"question" description:"The question to answer"`
	Mode     string `json:"mode,omitempty" description:"Response mode: general, checklist or plain_english (default: general)"`
	TopK     int    `json:"top_k,omitempty" description:"Number of chunks to retrieve (default: 5, max: 20)"`
}

// AskResponse carries the grounded answer and its citations.
type AskResponse struct {
	Question  string     `json:"question"`
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	Mode      Mode       `json:"mode"`
	TraceID   string     `json:"trace_id"`
}

// IngestStats summarizes one ingestion run.
type IngestStats struct {
	IndexedDocs   int    `json:"indexed_docs"`
	IndexedChunks int    `json:"indexed_chunks"`
	TraceID       string `json:"trace_id"`
}
