package service

import (
	"GoDrop/internal/storage"
	"GoDrop/model"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestUploadStoresFileAndRow(t *testing.T) {
	env := newTestEnv(t)

	file, err := env.files.Upload(
		context.Background(),
		strings.NewReader("hello world"),
		"notes.txt",
		"text/plain",
		"weekly notes",
	)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if file.OriginalName != "notes.txt" {
		t.Fatalf("original name = %q", file.OriginalName)
	}
	if file.FileSize != int64(len("hello world")) {
		t.Fatalf("file size = %d", file.FileSize)
	}

	reader, size, err := env.store.Open(context.Background(), file.FilePath)
	if err != nil {
		t.Fatalf("stored bytes missing: %v", err)
	}
	defer reader.Close()
	if size != file.FileSize {
		t.Fatalf("stored size = %d, want %d", size, file.FileSize)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello world" {
		t.Fatalf("stored content = %q", data)
	}
}

func TestUploadStripsDirectoryFromName(t *testing.T) {
	env := newTestEnv(t)

	file, err := env.files.Upload(
		context.Background(),
		strings.NewReader("x"),
		"../../etc/passwd",
		"text/plain",
		"",
	)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if file.OriginalName != "passwd" {
		t.Fatalf("original name = %q, want %q", file.OriginalName, "passwd")
	}
}

func TestUploadTooLargeLeavesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.MaxUploadBytes = 8

	_, err := env.files.Upload(
		context.Background(),
		strings.NewReader("this is longer than eight bytes"),
		"big.bin",
		"application/octet-stream",
		"",
	)
	if !errors.Is(err, storage.ErrFileTooLarge) {
		t.Fatalf("err = %v, want ErrFileTooLarge", err)
	}

	var count int64
	if err := env.db.Model(&model.File{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("file rows after failed upload = %d, want 0", count)
	}
}

func TestRequireFileAfterDelete(t *testing.T) {
	env := newTestEnv(t)
	file := uploadTestFile(t, env, "a.txt", "content")

	if _, err := env.files.RequireFile(context.Background(), file.ID); err != nil {
		t.Fatalf("RequireFile before delete: %v", err)
	}

	if err := env.files.Delete(context.Background(), file.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := env.files.RequireFile(context.Background(), file.ID)
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
	if _, _, err := env.store.Open(context.Background(), file.FilePath); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("stored bytes still present after delete: %v", err)
	}
}

func TestDeleteDeactivatesShares(t *testing.T) {
	env := newTestEnv(t)
	file := uploadTestFile(t, env, "a.txt", "content")

	link, err := env.shares.CreateShare(context.Background(), file.ID, ShareCreateParams{})
	if err != nil {
		t.Fatal(err)
	}

	if err := env.files.Delete(context.Background(), file.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if reloadShare(t, env, link.ID).IsActive {
		t.Fatal("share link still active after file delete")
	}
}

func TestDeleteWithMissingBytes(t *testing.T) {
	env := newTestEnv(t)
	file := uploadTestFile(t, env, "a.txt", "content")
	link, err := env.shares.CreateShare(context.Background(), file.ID, ShareCreateParams{})
	if err != nil {
		t.Fatal(err)
	}

	// bytes vanish out-of-band; the catalog entry must still be deletable
	if err := env.store.Delete(context.Background(), file.FilePath); err != nil {
		t.Fatal(err)
	}

	if err := env.files.Delete(context.Background(), file.ID); err != nil {
		t.Fatalf("Delete with missing bytes failed: %v", err)
	}
	if _, err := env.files.RequireFile(context.Background(), file.ID); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
	if reloadShare(t, env, link.ID).IsActive {
		t.Fatal("share link still active after delete")
	}
}

func TestDeleteUnknownFile(t *testing.T) {
	env := newTestEnv(t)

	err := env.files.Delete(context.Background(), "no-such-file")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
}

func TestListPagination(t *testing.T) {
	env := newTestEnv(t)
	names := []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"}
	for _, name := range names {
		uploadTestFile(t, env, name, "content")
	}

	total, items, err := env.files.List(context.Background(), 1, 2, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != int64(len(names)) {
		t.Fatalf("total = %d, want %d", total, len(names))
	}
	if len(items) != 2 {
		t.Fatalf("page size = %d, want 2", len(items))
	}

	total, items, err = env.files.List(context.Background(), 3, 2, "")
	if err != nil {
		t.Fatal(err)
	}
	if total != int64(len(names)) || len(items) != 1 {
		t.Fatalf("last page: total = %d, items = %d", total, len(items))
	}
}

func TestListKeywordFilter(t *testing.T) {
	env := newTestEnv(t)
	uploadTestFile(t, env, "report-q1.pdf", "content")
	uploadTestFile(t, env, "photo.png", "content")

	if _, err := env.files.Upload(
		context.Background(),
		strings.NewReader("content"),
		"misc.bin",
		"application/octet-stream",
		"quarterly report backup",
	); err != nil {
		t.Fatal(err)
	}

	total, items, err := env.files.List(context.Background(), 1, 10, "report")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("keyword match: total = %d, items = %d, want 2", total, len(items))
	}
	for _, item := range items {
		if item.File.OriginalName == "photo.png" {
			t.Fatal("keyword filter returned an unrelated file")
		}
	}
}

func TestListExcludesDeletedAndShowsActiveShare(t *testing.T) {
	env := newTestEnv(t)
	kept := uploadTestFile(t, env, "kept.txt", "content")
	other := uploadTestFile(t, env, "other.txt", "content")
	plain := uploadTestFile(t, env, "plain.txt", "content")
	gone := uploadTestFile(t, env, "gone.txt", "content")

	keptLink, err := env.shares.CreateShare(context.Background(), kept.ID, ShareCreateParams{})
	if err != nil {
		t.Fatal(err)
	}
	otherLink, err := env.shares.CreateShare(context.Background(), other.ID, ShareCreateParams{})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.files.Delete(context.Background(), gone.ID); err != nil {
		t.Fatal(err)
	}

	total, items, err := env.files.List(context.Background(), 1, 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("total = %d, items = %d, want 3", total, len(items))
	}

	shareByFile := make(map[string]string)
	for _, item := range items {
		if item.File.ID == gone.ID {
			t.Fatal("deleted file shows in listing")
		}
		if item.ActiveShare != nil {
			shareByFile[item.File.ID] = item.ActiveShare.ShareCode
		}
	}
	if shareByFile[kept.ID] != keptLink.ShareCode {
		t.Fatalf("share for kept = %q, want %q", shareByFile[kept.ID], keptLink.ShareCode)
	}
	if shareByFile[other.ID] != otherLink.ShareCode {
		t.Fatalf("share for other = %q, want %q", shareByFile[other.ID], otherLink.ShareCode)
	}
	if _, ok := shareByFile[plain.ID]; ok {
		t.Fatal("unshared file carries a share summary")
	}
}
