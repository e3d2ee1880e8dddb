package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ritzau/finance-assistant/pkg/model"
)

func TestFileStoreList(t *testing.T) {
	dir := t.TempDir()
	data := `{"results":[{"id":1,"name":"Food"},{"id":2,"name":"Groceries","parent":1}]}`
	if err := os.WriteFile(filepath.Join(dir, "categories.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(dir)
	records, err := s.List(context.Background(), model.ResourceCategories)
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(records) != 2 || records[1].ParentID() != "1" {
		t.Errorf("Unexpected records %+v", records)
	}
}

func TestFileStoreMissingSnapshot(t *testing.T) {
	s := NewFileStore(t.TempDir())
	records, err := s.List(context.Background(), model.ResourcePayees)
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestFileStoreInvalidSnapshot(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "payees.json"), []byte(`[{"id":`), 0o644)

	if _, err := NewFileStore(dir).List(context.Background(), model.ResourcePayees); err == nil {
		t.Error("Expected error for truncated snapshot")
	}
}

func TestFileStoreIsReadOnly(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx := context.Background()

	if _, err := s.Create(ctx, model.ResourcePayees, RecordInput{Name: "x"}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Create() error = %v, want ErrReadOnly", err)
	}
	if _, err := s.Update(ctx, model.ResourcePayees, "1", RecordInput{Name: "x"}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Update() error = %v, want ErrReadOnly", err)
	}
	if err := s.Delete(ctx, model.ResourcePayees, "1"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Delete() error = %v, want ErrReadOnly", err)
	}
}
