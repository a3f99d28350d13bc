package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	text := "ISS (ZARYA)\n1 25544U ...\n2 25544 ...\n"
	if err := store.Write(SourceCatalog, "gnss", text); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	got, err := store.Read(SourceCatalog, "gnss")
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if got != text {
		t.Errorf("round-trip changed text:\ngot  %q\nwant %q", got, text)
	}
}

func TestStore_ReadMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Read(SourceArchive, "gnss")
	if !errors.Is(err, ErrMissing) {
		t.Errorf("Read on empty store: error = %v, want ErrMissing", err)
	}
}

func TestStore_Overwrite(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.Write(SourceArchive, "gnss", "old\n"); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	if err := store.Write(SourceArchive, "gnss", "new\n"); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	got, err := store.Read(SourceArchive, "gnss")
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if got != "new\n" {
		t.Errorf("entry = %q, want full replacement", got)
	}
}

// Entries are keyed by both source and system kind; the four combinations
// must land in distinct files.
func TestStore_PathPerSourceAndKind(t *testing.T) {
	store := NewStore("/var/cache/scintgo")

	paths := map[string]bool{
		store.Path(SourceCatalog, "gnss"):    true,
		store.Path(SourceCatalog, "cubesat"): true,
		store.Path(SourceArchive, "gnss"):    true,
		store.Path(SourceArchive, "cubesat"): true,
	}
	if len(paths) != 4 {
		t.Errorf("expected 4 distinct cache paths, got %d", len(paths))
	}

	want := filepath.Join("/var/cache/scintgo", "celestrak_gnss.txt")
	if got := store.Path(SourceCatalog, "gnss"); got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}

func TestStore_WriteCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	store := NewStore(dir)

	if err := store.Write(SourceCatalog, "gnss", "x\n"); err != nil {
		t.Fatalf("Write into missing dir: %v", err)
	}
	if _, err := os.Stat(store.Path(SourceCatalog, "gnss")); err != nil {
		t.Errorf("cache file not created: %v", err)
	}
}

func TestStore_WriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := store.Write(SourceCatalog, "gnss", "x\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("cache dir holds %v, want only the committed file", names)
	}
}
