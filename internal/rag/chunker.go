package rag

// Chunker splits document text into overlapping fixed-size windows. Overlap
// keeps a fact that straddles a window boundary whole in at least one chunk.
type Chunker struct {
	ChunkSize int
	Overlap   int
}

func NewChunker(chunkSize, overlap int) *Chunker {
	return &Chunker{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// Chunk walks doc.Text in windows of ChunkSize characters; each window after
// the first starts ChunkSize-Overlap after the previous one and the last
// window ends at end-of-text. A document shorter than one window yields a
// single chunk; empty text yields none. Chunk ids are sequential from 0.
func (c *Chunker) Chunk(doc Document) []Chunk {
	if c.ChunkSize <= 0 || c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return nil
	}

	n := len(doc.Text)
	if n == 0 {
		return nil
	}

	if n <= c.ChunkSize {
		return []Chunk{{
			DocID:   doc.DocID,
			ChunkID: 0,
			Title:   doc.Title,
			Text:    doc.Text,
			Start:   0,
			End:     n,
		}}
	}

	step := c.ChunkSize - c.Overlap
	var chunks []Chunk

	for start, id := 0, 0; start < n; start, id = start+step, id+1 {
		end := start + c.ChunkSize
		if end > n {
			end = n
		}

		chunks = append(chunks, Chunk{
			DocID:   doc.DocID,
			ChunkID: id,
			Title:   doc.Title,
			Text:    doc.Text[start:end],
			Start:   start,
			End:     end,
		})

		if end >= n {
			break
		}
	}

	return chunks
}
