package rag

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// DirectorySource loads documents from a directory tree. Only .txt and .md
// files are considered; the directory is never written to.
type DirectorySource struct {
	Dir string
}

func NewDirectorySource(dir string) *DirectorySource {
	return &DirectorySource{Dir: dir}
}

// Load reads every supported file under the directory. Empty files are
// skipped. Documents come back sorted by DocID so ingestion order is stable.
func (s *DirectorySource) Load(ctx context.Context) ([]Document, error) {
	info, err := os.Stat(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("docs directory %s: %w", s.Dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("docs path %s is not a directory", s.Dir)
	}

	var docs []Document
	err = filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		text := strings.TrimSpace(string(raw))
		if text == "" {
			return nil
		}

		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		docs = append(docs, Document{
			DocID: stem,
			Title: extractTitle(text, stem),
			Text:  text,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].DocID < docs[j].DocID })
	return docs, nil
}

// extractTitle prefers a leading markdown header, then a short non-lowercase
// first line, then a title-cased version of the filename stem.
func extractTitle(text, stem string) string {
	fallback := titleCase(strings.NewReplacer("_", " ", "-", " ").Replace(stem))

	firstLine := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		firstLine = text[:i]
	}
	firstLine = strings.TrimSpace(firstLine)

	if after, ok := strings.CutPrefix(firstLine, "# "); ok {
		if t := strings.TrimSpace(after); t != "" {
			return t
		}
		return fallback
	}

	if firstLine != "" && len(firstLine) < 100 && firstLine != strings.ToLower(firstLine) {
		return firstLine
	}

	return fallback
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
