package storage

import "testing"

func TestNewStoreKinds(t *testing.T) {
	if _, err := NewStore("", ""); err != nil {
		t.Fatalf("default store: %v", err)
	}
	if _, err := NewStore("memory", ""); err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if _, err := NewStore("sqlite", "some.db"); err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	if _, err := NewStore("bogus", ""); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
