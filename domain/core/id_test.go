package core

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestRunIDShort(t *testing.T) {
	if got := RunID("01890a5d-ac96-774b-bcce-b302099a8057").Short(); got != "b302099a8057" {
		t.Errorf("Expected b302099a8057, got %s", got)
	}
	if got := RunID("abc").Short(); got != "abc" {
		t.Errorf("Expected abc, got %s", got)
	}

	// runs started in the same instant share their timestamp digits
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		short := NewRunID().Short()
		if len(short) != 12 {
			t.Fatalf("Expected 12 characters, got %q", short)
		}
		if seen[short] {
			t.Fatalf("Duplicate short run ID %s", short)
		}
		seen[short] = true
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	h, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	sum := sha256.Sum256([]byte("a,b\n1,2\n"))
	if h.String() != hex.EncodeToString(sum[:]) {
		t.Errorf("Unexpected digest %s", h)
	}

	if _, err := HashFile(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("Expected error for missing file")
	}
}
