package service

import (
	"GoDrop/config"
	"GoDrop/model"
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreateShareGeneratesCode(t *testing.T) {
	env := newTestEnv(t)
	file := uploadTestFile(t, env, "report.pdf", "content")

	link, err := env.shares.CreateShare(context.Background(), file.ID, ShareCreateParams{})
	if err != nil {
		t.Fatalf("CreateShare failed: %v", err)
	}
	if len(link.ShareCode) != config.ShareCodeLength {
		t.Fatalf("share code length = %d, want %d", len(link.ShareCode), config.ShareCodeLength)
	}
	if !link.IsActive {
		t.Fatal("new share link is not active")
	}
	if link.DownloadCount != 0 {
		t.Fatalf("download count = %d, want 0", link.DownloadCount)
	}
}

func TestCreateShareUnknownFile(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.shares.CreateShare(context.Background(), "no-such-file", ShareCreateParams{})
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
}

func TestCreateShareDeactivatesPrevious(t *testing.T) {
	env := newTestEnv(t)
	file := uploadTestFile(t, env, "a.txt", "content")

	first, err := env.shares.CreateShare(context.Background(), file.ID, ShareCreateParams{})
	if err != nil {
		t.Fatalf("first CreateShare failed: %v", err)
	}
	second, err := env.shares.CreateShare(context.Background(), file.ID, ShareCreateParams{})
	if err != nil {
		t.Fatalf("second CreateShare failed: %v", err)
	}

	if reloadShare(t, env, first.ID).IsActive {
		t.Fatal("first link still active after second was created")
	}
	if !reloadShare(t, env, second.ID).IsActive {
		t.Fatal("second link not active")
	}

	var active int64
	if err := env.db.Model(&model.ShareLink{}).
		Where("file_id = ? AND is_active = ?", file.ID, true).
		Count(&active).Error; err != nil {
		t.Fatal(err)
	}
	if active != 1 {
		t.Fatalf("active links = %d, want 1", active)
	}
}

func TestRequireActiveShareExpired(t *testing.T) {
	env := newTestEnv(t)
	file := uploadTestFile(t, env, "a.txt", "content")

	link, err := env.shares.CreateShare(context.Background(), file.ID, ShareCreateParams{ExpireHours: 1})
	if err != nil {
		t.Fatal(err)
	}

	past := time.Now().Add(-time.Minute)
	if err := env.db.Model(&model.ShareLink{}).
		Where("id = ?", link.ID).
		Update("expire_at", past).Error; err != nil {
		t.Fatal(err)
	}

	_, err = env.shares.RequireActiveShare(context.Background(), link.ShareCode)
	if !errors.Is(err, ErrShareExpired) {
		t.Fatalf("err = %v, want ErrShareExpired", err)
	}
	// expiry is persisted, a second evaluate sees the inactive flag
	if reloadShare(t, env, link.ID).IsActive {
		t.Fatal("expired link still active")
	}
	_, err = env.shares.RequireActiveShare(context.Background(), link.ShareCode)
	if !errors.Is(err, ErrShareInactive) {
		t.Fatalf("second err = %v, want ErrShareInactive", err)
	}
}

func TestRequireActiveShareLimitReached(t *testing.T) {
	env := newTestEnv(t)
	file := uploadTestFile(t, env, "a.txt", "content")

	link, err := env.shares.CreateShare(context.Background(), file.ID, ShareCreateParams{MaxDownloads: 3})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.db.Model(&model.ShareLink{}).
		Where("id = ?", link.ID).
		Update("download_count", 3).Error; err != nil {
		t.Fatal(err)
	}

	_, err = env.shares.RequireActiveShare(context.Background(), link.ShareCode)
	if !errors.Is(err, ErrShareLimitReached) {
		t.Fatalf("err = %v, want ErrShareLimitReached", err)
	}
	if reloadShare(t, env, link.ID).IsActive {
		t.Fatal("exhausted link still active")
	}
}

func TestRequireActiveShareNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.shares.RequireActiveShare(context.Background(), "zzzzzzzz")
	if !errors.Is(err, ErrShareNotFound) {
		t.Fatalf("err = %v, want ErrShareNotFound", err)
	}
}

func TestVerifyPasswordWithoutPassword(t *testing.T) {
	env := newTestEnv(t)
	file := uploadTestFile(t, env, "a.txt", "content")

	link, err := env.shares.CreateShare(context.Background(), file.ID, ShareCreateParams{})
	if err != nil {
		t.Fatal(err)
	}

	for _, provided := range []string{"", "anything", "123456"} {
		if err := env.shares.VerifyPassword(link, provided); err != nil {
			t.Fatalf("VerifyPassword(%q) = %v, want nil", provided, err)
		}
	}
}

func TestVerifyPasswordWithPassword(t *testing.T) {
	env := newTestEnv(t)
	file := uploadTestFile(t, env, "a.txt", "content")

	link, err := env.shares.CreateShare(context.Background(), file.ID, ShareCreateParams{Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if !link.NeedPassword() {
		t.Fatal("link should require a password")
	}

	if err := env.shares.VerifyPassword(link, "secret"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
	for _, provided := range []string{"", "wrong", "Secret", "secret "} {
		if err := env.shares.VerifyPassword(link, provided); !errors.Is(err, ErrSharePasswordInvalid) {
			t.Fatalf("VerifyPassword(%q) = %v, want ErrSharePasswordInvalid", provided, err)
		}
	}
}

func TestDeactivateInvalidShares(t *testing.T) {
	env := newTestEnv(t)
	fileA := uploadTestFile(t, env, "a.txt", "content")
	fileB := uploadTestFile(t, env, "b.txt", "content")
	fileC := uploadTestFile(t, env, "c.txt", "content")

	expired, err := env.shares.CreateShare(context.Background(), fileA.ID, ShareCreateParams{ExpireHours: 1})
	if err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Minute)
	if err := env.db.Model(&model.ShareLink{}).
		Where("id = ?", expired.ID).
		Update("expire_at", past).Error; err != nil {
		t.Fatal(err)
	}

	exhausted, err := env.shares.CreateShare(context.Background(), fileB.ID, ShareCreateParams{MaxDownloads: 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.db.Model(&model.ShareLink{}).
		Where("id = ?", exhausted.ID).
		Update("download_count", 2).Error; err != nil {
		t.Fatal(err)
	}

	healthy, err := env.shares.CreateShare(context.Background(), fileC.ID, ShareCreateParams{ExpireHours: 1, MaxDownloads: 2})
	if err != nil {
		t.Fatal(err)
	}

	if err := env.shares.DeactivateInvalidShares(context.Background()); err != nil {
		t.Fatalf("DeactivateInvalidShares failed: %v", err)
	}

	if reloadShare(t, env, expired.ID).IsActive {
		t.Fatal("expired link survived the sweep")
	}
	if reloadShare(t, env, exhausted.ID).IsActive {
		t.Fatal("exhausted link survived the sweep")
	}
	if !reloadShare(t, env, healthy.ID).IsActive {
		t.Fatal("healthy link was deactivated")
	}
}
