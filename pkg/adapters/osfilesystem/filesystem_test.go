package osfilesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystem_WriteAndReadFile(t *testing.T) {
	fs := New()
	testPath := filepath.Join(t.TempDir(), "doc.json")

	if err := fs.WriteFile(testPath, []byte("hello world")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := fs.ReadFile(testPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", data)
	}
}

func TestFileSystem_WriteFileReplacesAtomically(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	testPath := filepath.Join(dir, "doc.json")

	if err := fs.WriteFile(testPath, []byte("first version")); err != nil {
		t.Fatal(err)
	}
	if err := fs.WriteFile(testPath, []byte("second")); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(testPath)
	if string(data) != "second" {
		t.Errorf("expected overwritten content, got %q", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected no temporary files left behind, got %d entries", len(entries))
	}
	info, err := os.Stat(testPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0400 == 0 {
		t.Errorf("expected readable file, got mode %v", info.Mode())
	}
}

func TestFileSystem_WriteFileCreatesParentDirs(t *testing.T) {
	fs := New()
	testPath := filepath.Join(t.TempDir(), "a", "b", "c", "test.txt")

	if err := fs.WriteFile(testPath, []byte("test")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	exists, err := fs.Exists(testPath)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected file to exist")
	}
}

func TestFileSystem_MkdirAll(t *testing.T) {
	fs := New()
	testPath := filepath.Join(t.TempDir(), "a", "b", "c")

	if err := fs.MkdirAll(testPath); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if exists, _ := fs.Exists(testPath); !exists {
		t.Error("expected directory to exist")
	}
}

func TestFileSystem_ExistsAndRemove(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	testPath := filepath.Join(dir, "test.txt")
	os.WriteFile(testPath, []byte("test"), 0644)

	if exists, err := fs.Exists(testPath); err != nil || !exists {
		t.Fatalf("Exists() = %v, %v", exists, err)
	}
	if exists, _ := fs.Exists(filepath.Join(dir, "nonexistent.txt")); exists {
		t.Error("expected file to not exist")
	}

	if err := fs.Remove(testPath); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if exists, _ := fs.Exists(testPath); exists {
		t.Error("expected file to be removed")
	}
}
