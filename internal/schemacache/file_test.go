package schemacache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"applyflow/pkg/models"
)

func testSchema() *models.FormSchema {
	return &models.FormSchema{
		Fields: []models.FieldSpec{
			{Label: "Email", Selector: "#email", Kind: models.FieldEmail, Required: true},
			{
				Label:    "Country",
				Selector: "#country",
				Kind:     models.FieldSelect,
				Options: []models.FieldOption{
					{Text: "United States", Value: "us"},
				},
			},
		},
		Submit: &models.SubmitSpec{Text: "Apply", Selector: "button[type='submit']"},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemas.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	ctx := context.Background()
	if err := store.Put(ctx, "jobs.example.com", testSchema()); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	// A second store over the same file must observe the entry
	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() reopen error = %v", err)
	}

	got, hit, err := reopened.Get(ctx, "jobs.example.com")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !hit {
		t.Fatal("Get() hit = false, want true")
	}
	if diff := cmp.Diff(testSchema(), got); diff != "" {
		t.Errorf("schema mismatch after reload (-want +got):\n%s", diff)
	}
}

func TestFileStoreMissingKey(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "schemas.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	_, hit, err := store.Get(context.Background(), "unknown.example.com")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Error("Get() hit = true for unknown key")
	}
}

func TestFileStoreMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	_, hit, _ := store.Get(context.Background(), "jobs.example.com")
	if hit {
		t.Error("empty store reported a hit")
	}
}

func TestFileStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemas.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	_, hit, _ := store.Get(context.Background(), "jobs.example.com")
	if hit {
		t.Error("corrupt store reported a hit")
	}

	// The store must still accept writes after recovering
	if err := store.Put(context.Background(), "jobs.example.com", testSchema()); err != nil {
		t.Errorf("Put() after recovery error = %v", err)
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemas.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	ctx := context.Background()
	if err := store.Put(ctx, "jobs.example.com", testSchema()); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if err := store.Clear(ctx, "jobs.example.com"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	_, hit, _ := store.Get(ctx, "jobs.example.com")
	if hit {
		t.Error("entry still present after Clear")
	}

	// Clearing an absent key is not an error
	if err := store.Clear(ctx, "never-seen.example.com"); err != nil {
		t.Errorf("Clear() on absent key error = %v", err)
	}
}
