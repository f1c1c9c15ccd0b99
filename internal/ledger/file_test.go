package ledger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

/*
TestFileStore_RoundTrip verifies Save then Load reproduces the document and
that the on-disk form is indented JSON.
*/
func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "checksums.json")
	s := NewFileStore(path)
	ctx := context.Background()

	doc := Document{
		"employees": {
			"1": {Export: "aaa", Import: "aaa"},
			"2": {Export: "bbb"},
		},
	}
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if e := got["employees"]["1"]; e.Export != "aaa" || e.Import != "aaa" {
		t.Fatalf("row 1 = %+v, want both digests aaa", e)
	}
	if e := got["employees"]["2"]; e.Export != "bbb" || e.Import != "" {
		t.Fatalf("row 2 = %+v, want export-only bbb", e)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(b), "\n  ") {
		t.Fatalf("saved document is not indented:\n%s", b)
	}
	// Empty phases are omitted from the document.
	if strings.Contains(string(b), `"import": ""`) {
		t.Fatalf("empty import digest serialized:\n%s", b)
	}
}

func TestFileStore_MissingFile(t *testing.T) {
	t.Parallel()

	s := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))
	doc, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	if len(doc) != 0 {
		t.Fatalf("Load missing file = %v, want empty document", doc)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := NewFileStore(path).Load(context.Background()); err == nil {
		t.Fatalf("Load corrupt file: error = nil, want decode error")
	}
}

func TestNewStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	if _, err := NewStore("file", filepath.Join(dir, "a.json")); err != nil {
		t.Fatalf("NewStore(file): %v", err)
	}
	if _, err := NewStore("", filepath.Join(dir, "b.json")); err != nil {
		t.Fatalf("NewStore(default): %v", err)
	}
	if _, err := NewStore("redis", "x"); err == nil {
		t.Fatalf("NewStore(redis): error = nil, want unknown kind error")
	}
}
