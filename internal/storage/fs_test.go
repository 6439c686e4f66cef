package storage

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestFSStorePutGet(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put("materials/Ejaan.md", strings.NewReader("# Ejaan")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Put("materials/Ejaan.md", strings.NewReader("# Ejaan v2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	rc, err := s.Get("materials/Ejaan.md")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "# Ejaan v2" {
		t.Fatalf("got %q", b)
	}
	u, err := s.SignedURL("materials/Ejaan.md")
	if err != nil || !strings.HasPrefix(u, "file://") {
		t.Fatalf("url %q err %v", u, err)
	}
}

func TestFSStoreMissingAndTraversal(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("materials/none.md"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := s.Put("../escape.md", strings.NewReader("x")); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
	if _, err := s.Put("", strings.NewReader("x")); err == nil {
		t.Fatal("expected empty key to be rejected")
	}
}
