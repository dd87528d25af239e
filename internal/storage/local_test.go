package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newLocalTestStore(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}
	return store, dir
}

func TestLocalSaveAndOpen(t *testing.T) {
	store, _ := newLocalTestStore(t)

	stored, err := store.Save(context.Background(), strings.NewReader("hello"), "greeting.txt", 1000)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if stored.SizeBytes != 5 {
		t.Fatalf("size = %d, want 5", stored.SizeBytes)
	}
	if filepath.Ext(stored.StoredName) != ".txt" {
		t.Fatalf("stored name %q lost the extension", stored.StoredName)
	}
	if stored.StoredName == "greeting.txt" {
		t.Fatal("stored name reuses the original name")
	}

	reader, size, err := store.Open(context.Background(), stored.RelativePath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reader.Close()
	if size != 5 {
		t.Fatalf("open size = %d, want 5", size)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Fatalf("content = %q", data)
	}
}

func TestLocalSaveTooLargeRemovesPartial(t *testing.T) {
	store, dir := newLocalTestStore(t)

	_, err := store.Save(context.Background(), strings.NewReader("0123456789"), "big.bin", 4)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("err = %v, want ErrFileTooLarge", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("%d partial files left behind", len(entries))
	}
}

func TestLocalSaveCanceledContext(t *testing.T) {
	store, dir := newLocalTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, strings.NewReader("hello"), "a.txt", 1000)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("%d files left behind after cancel", len(entries))
	}
}

func TestLocalDelete(t *testing.T) {
	store, _ := newLocalTestStore(t)

	stored, err := store.Save(context.Background(), strings.NewReader("x"), "a.txt", 1000)
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(context.Background(), stored.RelativePath); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, _, err := store.Open(context.Background(), stored.RelativePath); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Open after delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete(context.Background(), stored.RelativePath); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestLocalOpenMissing(t *testing.T) {
	store, _ := newLocalTestStore(t)

	if _, _, err := store.Open(context.Background(), "nope.bin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
