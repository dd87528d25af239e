package service

import (
	"GoDrop/config"
	"GoDrop/internal/repo"
	"GoDrop/internal/storage"
	"GoDrop/model"
	"GoDrop/utils"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// testEnv wires the services against an in-memory database and a
// temp-directory storage backend.
type testEnv struct {
	cfg       *config.Config
	db        *gorm.DB
	store     storage.Storage
	codec     *utils.TokenCodec
	shares    *ShareService
	files     *FileService
	downloads *DownloadService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// named shared-cache DB so every pooled connection sees the same data
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)",
		strings.ReplaceAll(t.Name(), "/", "_"),
	)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := repo.AutoMigrateAll(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("init test storage: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		MaxUploadBytes:   1000000,
		AdminTokenTTL:    time.Hour,
		DownloadTokenTTL: 5 * time.Minute,
	}

	codec := utils.NewTokenCodec(cfg.JWTSecret)
	shares := NewShareService(db, cfg, nil)
	files := NewFileService(db, store, cfg, shares, codec)
	downloads := NewDownloadService(db, store, cfg, shares, files, codec, nil)

	return &testEnv{
		cfg:       cfg,
		db:        db,
		store:     store,
		codec:     codec,
		shares:    shares,
		files:     files,
		downloads: downloads,
	}
}

// uploadTestFile seeds a file with real stored bytes.
func uploadTestFile(t *testing.T, env *testEnv, name, content string) *model.File {
	t.Helper()
	file, err := env.files.Upload(
		context.Background(),
		strings.NewReader(content),
		name,
		"application/octet-stream",
		"",
	)
	if err != nil {
		t.Fatalf("upload test file: %v", err)
	}
	return file
}

func reloadShare(t *testing.T, env *testEnv, id string) *model.ShareLink {
	t.Helper()
	var link model.ShareLink
	if err := env.db.First(&link, "id = ?", id).Error; err != nil {
		t.Fatalf("reload share: %v", err)
	}
	return &link
}
