package upload

import (
	"os"
	"path/filepath"
	"testing"
)

// TestStateDBRoundTrip records an upload and detects changes in size or hash.
func TestStateDBRoundTrip(t *testing.T) {
	s, err := OpenStateDB(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ok, err := s.IsUploaded("a.csv", 10, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("fresh state reports a file as uploaded")
	}

	if err := s.MarkUploaded("a.csv", 10, "abc", 4); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.IsUploaded("a.csv", 10, "abc"); !ok {
		t.Error("marked file not reported as uploaded")
	}
	if ok, _ := s.IsUploaded("a.csv", 11, "abc"); ok {
		t.Error("size change not detected")
	}
	if ok, _ := s.IsUploaded("a.csv", 10, "abd"); ok {
		t.Error("hash change not detected")
	}

	// Re-marking replaces the row.
	if err := s.MarkUploaded("a.csv", 12, "def", 6); err != nil {
		t.Fatal(err)
	}
	records, err := s.Uploads()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Size != 12 || records[0].ExercisesUpserted != 6 {
		t.Errorf("records = %+v", records)
	}
}

// TestHashFile returns the hex SHA-256 of the contents.
func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"; got != want {
		t.Errorf("hash = %s, want %s", got, want)
	}
	if _, err := HashFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
