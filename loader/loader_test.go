package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"paperchat/store"
	"paperchat/types"
)

type fakeEmbedder struct {
	dim int
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dim)
		out[i][0] = 1
	}
	return out, nil
}

func TestNewService_RejectsBadChunkParams(t *testing.T) {
	_, err := NewService(&fakeEmbedder{dim: 4}, store.NewMemoryStore(), types.ChunkConfig{Size: 100, Overlap: 200})
	var cfgErr *types.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError before any work, got %v", err)
	}
}

func TestExtractPages_RejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-pdf.pdf")
	if err := os.WriteFile(path, []byte("plain text, not a pdf"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ExtractPages(path)
	var extractErr *types.ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("expected ExtractionError for a non-PDF file, got %v", err)
	}
}

func TestPersistUpload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	data := []byte("%PDF-1.4 pretend")

	path, sessionID, err := PersistUpload(dir, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sessionID == "" {
		t.Fatal("expected a session id")
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(got) != string(data) {
		t.Error("stored bytes differ from upload")
	}

	// Two uploads of the same bytes get distinct sessions.
	_, otherID, err := PersistUpload(dir, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if otherID == sessionID {
		t.Error("expected distinct session ids per upload")
	}
}

func TestFileDocID_Stable(t *testing.T) {
	a := FileDocID("/some/dir/Paper.pdf")
	b := FileDocID("/other/dir/paper.PDF")
	if a != b {
		t.Error("doc id should depend on the lowercased file name only")
	}
	if a == FileDocID("/some/dir/different.pdf") {
		t.Error("different file names must map to different doc ids")
	}
}

func TestNormalizeText(t *testing.T) {
	in := "  first line  \n\n\n   second line\t\n"
	want := "first line\nsecond line"
	if got := normalizeText(in); got != want {
		t.Errorf("normalizeText = %q, want %q", got, want)
	}
}

func TestFullText_SkipsEmptyPages(t *testing.T) {
	pages := []types.Page{
		{Number: 1, Text: "one"},
		{Number: 2, Text: ""},
		{Number: 3, Text: "three"},
	}
	if got := FullText(pages); got != "one\n\nthree" {
		t.Errorf("FullText = %q", got)
	}
}

func TestCollectionName(t *testing.T) {
	if Collection("abc") != "paper_abc" {
		t.Errorf("unexpected collection name %q", Collection("abc"))
	}
}
