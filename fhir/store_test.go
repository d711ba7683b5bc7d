package fhir

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestBoltStoreRoundTrip(t *testing.T) {
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "responses.db"))
	if err != nil {
		t.Fatalf("OpenBoltStore() error: %v", err)
	}
	defer store.Close()

	if _, ok := store.Get("expand", "missing"); ok {
		t.Error("Get() on empty store reported a hit")
	}

	body := []byte(`{"resourceType":"ValueSet"}`)
	if err := store.Put("expand", "url-1", body); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	got, ok := store.Get("expand", "url-1")
	if !ok || !bytes.Equal(got, body) {
		t.Fatalf("Get() = %q, %v; want stored body", got, ok)
	}

	// Buckets are per operation.
	if _, ok := store.Get("lookup", "url-1"); ok {
		t.Error("key leaked across operation buckets")
	}
}
