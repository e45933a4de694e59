package fsio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ekm507/chroni/internal/errors"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func TestReadText(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, dir, "ok.txt", []byte("hello\nworld\n"))
	content, err := ReadText(path)
	if err != nil {
		t.Fatalf("ReadText failed: %v", err)
	}
	if content != "hello\nworld\n" {
		t.Errorf("content = %q", content)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"nul byte", []byte("a\x00b")},
		{"invalid utf8", []byte{0xff, 0xfe, 'a'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, dir, tt.name, tt.data)
			if _, err := ReadText(p); !errors.Is(err, errors.ErrReadError) {
				t.Errorf("err = %v, want READ_ERROR", err)
			}
		})
	}

	if _, err := ReadText(filepath.Join(dir, "missing.txt")); !errors.Is(err, errors.ErrReadError) {
		t.Errorf("missing file err = %v, want READ_ERROR", err)
	}
}

func TestWriteTextCreatesParents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "restored.txt")

	if err := WriteText(path, "content\n"); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}

	got, err := ReadText(path)
	if err != nil {
		t.Fatalf("ReadText failed: %v", err)
	}
	if got != "content\n" {
		t.Errorf("content = %q, want %q", got, "content\n")
	}
}

func TestHashText(t *testing.T) {
	h1 := HashText("a\nb\n")
	h2 := HashText("a\nb\n")
	h3 := HashText("a\nc\n")

	if h1 == "" {
		t.Fatal("empty digest")
	}
	if h1 != h2 {
		t.Errorf("same content hashes differ: %s vs %s", h1, h2)
	}
	if h1 == h3 {
		t.Errorf("different content hashes collide: %s", h1)
	}
}

func TestIsTextFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"plain text", []byte("hello\n"), true},
		{"empty file", nil, true},
		{"unicode text", []byte("héllo wörld\n"), true},
		{"nul byte", []byte{'a', 0, 'b'}, false},
		{"invalid utf8", []byte{0xff, 0xfe, 0xfd}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name, tt.data)
			if got := IsTextFile(path); got != tt.want {
				t.Errorf("IsTextFile = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("multibyte rune split at probe boundary", func(t *testing.T) {
		// 1023 ASCII bytes then a 2-byte rune: the probe cuts it in half.
		data := make([]byte, 0, probeSize+1)
		for i := 0; i < probeSize-1; i++ {
			data = append(data, 'a')
		}
		data = append(data, []byte("é")...)
		path := writeFile(t, dir, "boundary.txt", data)
		if !IsTextFile(path) {
			t.Error("file with rune split at probe boundary rejected")
		}
	})

	t.Run("directory is not a text file", func(t *testing.T) {
		if IsTextFile(dir) {
			t.Error("directory reported as text file")
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if IsTextFile(filepath.Join(dir, "nope")) {
			t.Error("missing path reported as text file")
		}
	})
}

func TestTextFilesInDir(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "a.txt", []byte("a\n"))
	writeFile(t, dir, filepath.Join("sub", "b.txt"), []byte("b\n"))
	writeFile(t, dir, filepath.Join(".git", "objects"), []byte("skip\n"))
	writeFile(t, dir, "binary.bin", []byte{0, 1, 2})

	files, err := TextFilesInDir(dir, []string{".git"})
	if err != nil {
		t.Fatalf("TextFilesInDir failed: %v", err)
	}

	got := make(map[string]bool, len(files))
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f)
		got[rel] = true
	}

	if len(files) != 2 {
		t.Errorf("got %d files, want 2: %v", len(files), files)
	}
	if !got["a.txt"] || !got[filepath.Join("sub", "b.txt")] {
		t.Errorf("missing expected text files: %v", files)
	}
}

func TestResolvePath(t *testing.T) {
	got, err := ResolvePath("/a/b/../c")
	if err != nil {
		t.Fatalf("ResolvePath failed: %v", err)
	}
	if got != "/a/c" {
		t.Errorf("ResolvePath = %q, want /a/c", got)
	}

	// Relative paths resolve against the working directory.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	got, err = ResolvePath("rel.txt")
	if err != nil {
		t.Fatalf("ResolvePath failed: %v", err)
	}
	if got != filepath.Join(wd, "rel.txt") {
		t.Errorf("ResolvePath = %q, want %q", got, filepath.Join(wd, "rel.txt"))
	}
}
