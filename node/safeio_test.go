package node

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadFileFromDirRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"../x", "..", ""} {
		if _, err := readFileFromDir(dir, name); err == nil {
			t.Fatalf("expected error for %q", name)
		}
	}
}

func TestReadInputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ok.json")
	if err := os.WriteFile(path, []byte("hi"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := ReadInputFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "hi" {
		t.Fatalf("unexpected bytes: %q", string(b))
	}

	if _, err := ReadInputFile(dir); err == nil {
		t.Fatalf("expected error for directory")
	}

	big := filepath.Join(dir, "big.bin")
	if err := os.WriteFile(big, make([]byte, maxInputFileBytes+1), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadInputFile(big); err == nil {
		t.Fatalf("expected size error")
	}
}
