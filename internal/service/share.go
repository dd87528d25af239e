package service

import (
	"GoDrop/config"
	"GoDrop/model"
	"GoDrop/utils"
	"errors"
	"log"
	"time"

	"golang.org/x/net/context"
	"gorm.io/gorm"
)

// ShareCreateParams carries the optional knobs of a new share link.
type ShareCreateParams struct {
	Password     string
	ExpireHours  int
	MaxDownloads int
}

// ShareService owns the share-link state machine.
type ShareService struct {
	db    *gorm.DB
	cfg   *config.Config
	cache utils.Cache
}

// NewShareService constructs a ShareService. cache may be nil; the
// share-info cache is then skipped entirely.
func NewShareService(db *gorm.DB, cfg *config.Config, cache utils.Cache) *ShareService {
	return &ShareService{db: db, cfg: cfg, cache: cache}
}

// CreateShare creates an active share link for a file, deactivating any
// previously active link for the same file in the same transaction.
func (s *ShareService) CreateShare(ctx context.Context, fileID string, params ShareCreateParams) (*model.ShareLink, error) {
	var file model.File
	if err := s.db.WithContext(ctx).First(&file, "id = ? AND is_deleted = ?", fileID, false).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	var passwordHash *string
	if params.Password != "" {
		hash, err := utils.GetPwd(params.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = &hash
	}

	var expireAt *time.Time
	if params.ExpireHours > 0 {
		t := time.Now().Add(time.Duration(params.ExpireHours) * time.Hour)
		expireAt = &t
	}

	var maxDownloads *int
	if params.MaxDownloads > 0 {
		n := params.MaxDownloads
		maxDownloads = &n
	}

	code, err := s.generateShareCode(ctx)
	if err != nil {
		return nil, err
	}

	link := &model.ShareLink{
		ID:           utils.GetToken(),
		FileID:       fileID,
		ShareCode:    code,
		PasswordHash: passwordHash,
		ExpireAt:     expireAt,
		MaxDownloads: maxDownloads,
		IsActive:     true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ShareLink{}).
			Where("file_id = ? AND is_active = ?", fileID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(link).Error
	})
	if err != nil {
		return nil, err
	}

	s.fillShareInfoCache(ctx, link, &file)
	return link, nil
}

// generateShareCode samples the alphanumeric alphabet, retrying on
// collision. Running out of retries means the code space is saturated.
func (s *ShareService) generateShareCode(ctx context.Context) (string, error) {
	for i := 0; i < config.ShareCodeMaxRetries; i++ {
		candidate := utils.GenShareCode(config.ShareCodeLength)
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.ShareLink{}).
			Where("share_code = ?", candidate).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", errors.New("share code space exhausted")
}

// GetByCode fetches a share link regardless of state.
func (s *ShareService) GetByCode(ctx context.Context, code string) (*model.ShareLink, error) {
	var link model.ShareLink
	if err := s.db.WithContext(ctx).First(&link, "share_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}
	return &link, nil
}

// RequireActiveShare fetches a link and checks it is usable right now.
// Expired and exhausted links are flipped inactive on the spot.
func (s *ShareService) RequireActiveShare(ctx context.Context, code string) (*model.ShareLink, error) {
	link, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !link.IsActive {
		return nil, ErrShareInactive
	}

	now := time.Now()
	if link.ExpireAt != nil && !link.ExpireAt.After(now) {
		if err := s.deactivate(ctx, link); err != nil {
			return nil, err
		}
		return nil, ErrShareExpired
	}
	if link.MaxDownloads != nil && link.DownloadCount >= *link.MaxDownloads {
		if err := s.deactivate(ctx, link); err != nil {
			return nil, err
		}
		return nil, ErrShareLimitReached
	}
	return link, nil
}

func (s *ShareService) deactivate(ctx context.Context, link *model.ShareLink) error {
	if err := s.db.WithContext(ctx).Model(&model.ShareLink{}).
		Where("id = ?", link.ID).
		Update("is_active", false).Error; err != nil {
		return err
	}
	link.IsActive = false
	s.dropShareInfoCache(ctx, link.ShareCode)
	return nil
}

// VerifyPassword is a no-op for links without a password and otherwise
// requires the provided password to match the stored hash.
func (s *ShareService) VerifyPassword(link *model.ShareLink, password string) error {
	if link.PasswordHash == nil {
		return nil
	}
	if password == "" || !utils.CheckPwd(password, *link.PasswordHash) {
		return ErrSharePasswordInvalid
	}
	return nil
}

// DeactivateInvalidShares bulk-flips every active link that has expired or
// reached its cap. Invoked opportunistically before listings, never on a
// timer; staleness only affects the admin view.
func (s *ShareService) DeactivateInvalidShares(ctx context.Context) error {
	return s.db.WithContext(ctx).Model(&model.ShareLink{}).
		Where("is_active = ?", true).
		Where(
			s.db.Where("expire_at IS NOT NULL AND expire_at <= ?", time.Now()).
				Or("max_downloads IS NOT NULL AND download_count >= max_downloads"),
		).
		Update("is_active", false).Error
}

// DeactivateFileShares flips every active link of a file.
func (s *ShareService) DeactivateFileShares(ctx context.Context, tx *gorm.DB, fileID string) error {
	var codes []string
	if err := tx.Model(&model.ShareLink{}).
		Where("file_id = ? AND is_active = ?", fileID, true).
		Pluck("share_code", &codes).Error; err != nil {
		return err
	}
	if err := tx.Model(&model.ShareLink{}).
		Where("file_id = ?", fileID).
		Update("is_active", false).Error; err != nil {
		return err
	}
	for _, code := range codes {
		s.dropShareInfoCache(ctx, code)
	}
	return nil
}

// ShareInfo is the cached public view of an active share.
type ShareInfo struct {
	FileName     string `json:"file_name"`
	FileSize     int64  `json:"file_size"`
	NeedPassword bool   `json:"need_password"`
}

// fillShareInfoCache writes the public share view, bounded by the link's
// own expiry when one is set.
func (s *ShareService) fillShareInfoCache(ctx context.Context, link *model.ShareLink, file *model.File) {
	if s.cache == nil {
		return
	}
	ttl := time.Duration(0)
	if link.ExpireAt != nil {
		ttl = time.Until(*link.ExpireAt)
		if ttl <= 0 {
			return
		}
	}
	key := utils.BuildCacheKey(utils.CacheKeyShareInfo, link.ShareCode)
	info := ShareInfo{
		FileName:     file.OriginalName,
		FileSize:     file.FileSize,
		NeedPassword: link.NeedPassword(),
	}
	if err := s.cache.Set(ctx, key, info, ttl); err != nil {
		log.Printf("share info cache set failed: %v", err)
	}
}

// CachedShareInfo reads the public share view from the cache.
func (s *ShareService) CachedShareInfo(ctx context.Context, code string) (*ShareInfo, bool) {
	if s.cache == nil {
		return nil, false
	}
	var info ShareInfo
	key := utils.BuildCacheKey(utils.CacheKeyShareInfo, code)
	if err := s.cache.Get(ctx, key, &info); err != nil {
		return nil, false
	}
	return &info, true
}

func (s *ShareService) dropShareInfoCache(ctx context.Context, code string) {
	if s.cache == nil {
		return
	}
	key := utils.BuildCacheKey(utils.CacheKeyShareInfo, code)
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Printf("share info cache delete failed: %v", err)
	}
}
