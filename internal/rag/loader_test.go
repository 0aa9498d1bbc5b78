package rag

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestDirectorySource_Load(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "donor_eligibility.md", "# Donor Eligibility\n\nDonors must be between 18 and 75 years old.")
	writeDoc(t, dir, "plasma-intervals.txt", "plasma donors can give every two weeks.")
	writeDoc(t, dir, "ignored.pdf", "binary-ish content")
	writeDoc(t, dir, "empty.txt", "   \n\n  ")

	source := NewDirectorySource(dir)
	docs, err := source.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}

	// Sorted by doc id.
	if docs[0].DocID != "donor_eligibility" || docs[1].DocID != "plasma-intervals" {
		t.Errorf("Unexpected doc ids: %q, %q", docs[0].DocID, docs[1].DocID)
	}

	if docs[0].Title != "Donor Eligibility" {
		t.Errorf("Expected title from markdown header, got %q", docs[0].Title)
	}
	// Lowercase first line falls back to the title-cased filename stem.
	if docs[1].Title != "Plasma Intervals" {
		t.Errorf("Expected title-cased stem, got %q", docs[1].Title)
	}
}

func TestDirectorySource_TitleFromFirstLine(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "iron.txt", "Iron Levels and Deferral\nDonors with low hemoglobin are deferred.")

	docs, err := NewDirectorySource(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Expected 1 document, got %d", len(docs))
	}
	if docs[0].Title != "Iron Levels and Deferral" {
		t.Errorf("Expected first-line title, got %q", docs[0].Title)
	}
}

func TestDirectorySource_MissingDirectory(t *testing.T) {
	source := NewDirectorySource(filepath.Join(t.TempDir(), "nope"))
	if _, err := source.Load(context.Background()); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestDirectorySource_Recursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "procedures")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeDoc(t, sub, "screening.md", "Screening includes a health questionnaire.")

	docs, err := NewDirectorySource(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(docs) != 1 || docs[0].DocID != "screening" {
		t.Errorf("Expected nested document to be loaded, got %+v", docs)
	}
}
