package service

import (
	"GoDrop/config"
	"GoDrop/internal/storage"
	"GoDrop/model"
	"GoDrop/utils"
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"

	"gorm.io/gorm"
)

// FileWithShare pairs a catalog entry with its active share link, if any.
type FileWithShare struct {
	File        model.File
	ActiveShare *model.ShareLink
}

// FileService owns the upload/list/delete lifecycle of catalog entries.
type FileService struct {
	db     *gorm.DB
	store  storage.Storage
	cfg    *config.Config
	shares *ShareService
	codec  *utils.TokenCodec
}

// NewFileService constructs a FileService.
func NewFileService(db *gorm.DB, store storage.Storage, cfg *config.Config, shares *ShareService, codec *utils.TokenCodec) *FileService {
	return &FileService{db: db, store: store, cfg: cfg, shares: shares, codec: codec}
}

// Upload streams bytes to storage and persists the metadata row. A storage
// failure leaves no row behind.
func (s *FileService) Upload(ctx context.Context, source io.Reader, originalName, mimeType, remark string) (*model.File, error) {
	safeName := filepath.Base(originalName)
	if safeName == "." || safeName == string(filepath.Separator) {
		safeName = "unnamed"
	}

	stored, err := s.store.Save(ctx, source, safeName, s.cfg.MaxUploadBytes)
	if err != nil {
		return nil, err
	}

	file := &model.File{
		ID:           utils.GetToken(),
		OriginalName: safeName,
		StoredName:   stored.StoredName,
		FilePath:     stored.RelativePath,
		FileSize:     stored.SizeBytes,
		MimeType:     mimeType,
		Remark:       remark,
	}
	if err := s.db.WithContext(ctx).Create(file).Error; err != nil {
		// keep storage consistent with the catalog
		if delErr := s.store.Delete(ctx, stored.RelativePath); delErr != nil {
			log.Printf("cleanup after metadata failure: %v", delErr)
		}
		return nil, err
	}
	return file, nil
}

// RequireFile fetches a non-deleted file.
func (s *FileService) RequireFile(ctx context.Context, fileID string) (*model.File, error) {
	var file model.File
	if err := s.db.WithContext(ctx).First(&file, "id = ? AND is_deleted = ?", fileID, false).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return &file, nil
}

// List returns a page of non-deleted files ordered by creation time
// descending, each annotated with its active share. The lazy share sweep
// runs first so the admin view reflects expired and exhausted links.
func (s *FileService) List(ctx context.Context, page, size int, keyword string) (int64, []FileWithShare, error) {
	if err := s.shares.DeactivateInvalidShares(ctx); err != nil {
		return 0, nil, err
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	query := s.db.WithContext(ctx).Model(&model.File{}).Where("is_deleted = ?", false)
	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("original_name LIKE ? OR remark LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var files []model.File
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&files).Error; err != nil {
		return 0, nil, err
	}

	items := make([]FileWithShare, 0, len(files))
	if len(files) == 0 {
		return total, items, nil
	}

	fileIDs := make([]string, 0, len(files))
	for _, file := range files {
		fileIDs = append(fileIDs, file.ID)
	}
	var links []model.ShareLink
	if err := s.db.WithContext(ctx).
		Where("file_id IN ? AND is_active = ?", fileIDs, true).
		Find(&links).Error; err != nil {
		return 0, nil, err
	}
	linkByFile := make(map[string]*model.ShareLink, len(links))
	for i := range links {
		linkByFile[links[i].FileID] = &links[i]
	}

	for _, file := range files {
		items = append(items, FileWithShare{File: file, ActiveShare: linkByFile[file.ID]})
	}
	return total, items, nil
}

// Delete removes the stored bytes, then soft-deletes the metadata row and
// deactivates its share links in one transaction. Missing bytes are logged
// and do not abort the catalog cleanup; an entry whose bytes were removed
// externally must still be deletable.
func (s *FileService) Delete(ctx context.Context, fileID string) error {
	file, err := s.RequireFile(ctx, fileID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, file.FilePath); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Printf("delete file %s: stored bytes already missing at %s", fileID, file.FilePath)
		} else {
			return err
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.shares.DeactivateFileShares(ctx, tx, fileID); err != nil {
			return err
		}
		return tx.Model(&model.File{}).
			Where("id = ?", fileID).
			Update("is_deleted", true).Error
	})
}

// CreateFileDownloadToken mints a direct download token scoped to a file.
// Direct tokens carry no jti and are not tracked by the consumption ledger.
func (s *FileService) CreateFileDownloadToken(ctx context.Context, fileID string) (string, error) {
	if _, err := s.RequireFile(ctx, fileID); err != nil {
		return "", err
	}
	return s.codec.Issue(utils.TokenTypeDownload, fileID, s.cfg.DownloadTokenTTL, "")
}
