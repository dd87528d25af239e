package service

import (
	"GoDrop/config"
	"GoDrop/internal/event"
	"GoDrop/internal/storage"
	"GoDrop/model"
	"GoDrop/utils"
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DownloadGrant is the authorization result of a redeemed token: the file,
// an open reader over its bytes, and whether this redemption was a replay
// of an already-counted token.
type DownloadGrant struct {
	File   *model.File
	Reader io.ReadCloser
	Size   int64
	Replay bool
}

type shareOutcome int

const (
	shareUsable shareOutcome = iota
	// shareReplay: the link is no longer usable but this exact token was
	// already consumed and served, so the redemption is honored again.
	shareReplay
	shareGone
)

// shareEvaluation is the explicit result of evaluating a share for
// redemption; cause keeps the precise gone variant for the boundary.
type shareEvaluation struct {
	outcome shareOutcome
	link    *model.ShareLink
	cause   error
}

// DownloadService orchestrates token issuance and single-use redemption
// for both the shared-link and direct-file download paths.
type DownloadService struct {
	db        *gorm.DB
	store     storage.Storage
	cfg       *config.Config
	shares    *ShareService
	files     *FileService
	codec     *utils.TokenCodec
	publisher *event.Publisher
}

// NewDownloadService constructs a DownloadService. publisher may be nil;
// analytics events are then skipped.
func NewDownloadService(
	db *gorm.DB,
	store storage.Storage,
	cfg *config.Config,
	shares *ShareService,
	files *FileService,
	codec *utils.TokenCodec,
	publisher *event.Publisher,
) *DownloadService {
	return &DownloadService{
		db:        db,
		store:     store,
		cfg:       cfg,
		shares:    shares,
		files:     files,
		codec:     codec,
		publisher: publisher,
	}
}

// VerifyShare runs the password gate and mints a download token whose
// subject is the share code and whose jti is the redemption identifier.
func (s *DownloadService) VerifyShare(ctx context.Context, code, password string) (string, error) {
	link, err := s.shares.RequireActiveShare(ctx, code)
	if err != nil {
		return "", err
	}
	if err := s.shares.VerifyPassword(link, password); err != nil {
		return "", err
	}
	return s.codec.Issue(utils.TokenTypeDownload, code, s.cfg.DownloadTokenTTL, utils.GetToken())
}

// Redeem verifies a download token against its share code and serves the
// file bytes, counting the download exactly once per token.
func (s *DownloadService) Redeem(ctx context.Context, code, tokenString, clientIP string) (*DownloadGrant, error) {
	claims, err := s.codec.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if err := s.codec.AssertType(claims, utils.TokenTypeDownload); err != nil {
		return nil, err
	}
	if claims.Subject != code {
		return nil, utils.ErrInvalidToken
	}
	jti := strings.TrimSpace(claims.JTI)
	if jti == "" {
		return nil, utils.ErrInvalidToken
	}

	eval, err := s.evaluateForRedeem(ctx, code, jti)
	if err != nil {
		return nil, err
	}
	if eval.outcome == shareGone {
		return nil, eval.cause
	}
	link := eval.link

	file, err := s.files.RequireFile(ctx, link.FileID)
	if err != nil {
		return nil, err
	}
	reader, size, err := s.store.Open(ctx, file.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	counted, limitHit, err := s.registerAndCount(ctx, link, jti)
	if err != nil {
		_ = reader.Close()
		return nil, err
	}

	replay := eval.outcome == shareReplay || !counted
	s.publishAccess(ctx, link, file, replay, limitHit, clientIP)

	return &DownloadGrant{
		File:   file,
		Reader: reader,
		Size:   size,
		Replay: replay,
	}, nil
}

// evaluateForRedeem evaluates the share, falling back to the consumption
// ledger when the link is no longer usable: a token already registered on
// this share is a replay of a served redemption and stays honored.
func (s *DownloadService) evaluateForRedeem(ctx context.Context, code, jti string) (shareEvaluation, error) {
	link, err := s.shares.RequireActiveShare(ctx, code)
	if err == nil {
		return shareEvaluation{outcome: shareUsable, link: link}, nil
	}
	if !IsShareGone(err) {
		return shareEvaluation{}, err
	}
	cause := err

	link, err = s.shares.GetByCode(ctx, code)
	if err != nil {
		return shareEvaluation{}, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.ShareDownloadToken{}).
		Where("jti = ? AND share_id = ?", jti, link.ID).
		Count(&count).Error; err != nil {
		return shareEvaluation{}, err
	}
	if count > 0 {
		return shareEvaluation{outcome: shareReplay, link: link}, nil
	}
	return shareEvaluation{outcome: shareGone, cause: cause}, nil
}

// registerAndCount registers the token and increments the counter if the
// registration was genuinely the first. The increment is guarded by the
// cap in the same UPDATE, so two first-time registrations racing a nearly
// exhausted link cannot both land: the statement that finds no row under
// the cap loses, and the transaction rolls its registration back so the
// token stays unconsumed.
func (s *DownloadService) registerAndCount(ctx context.Context, link *model.ShareLink, jti string) (counted, limitHit bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.ShareDownloadToken{
			JTI:     jti,
			ShareID: link.ID,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// already consumed by this very token, do not count again
			return nil
		}

		inc := tx.Model(&model.ShareLink{}).
			Where("id = ? AND (max_downloads IS NULL OR download_count < max_downloads)", link.ID).
			Update("download_count", gorm.Expr("download_count + 1"))
		if inc.Error != nil {
			return inc.Error
		}
		if inc.RowsAffected == 0 {
			return ErrShareLimitReached
		}

		flip := tx.Model(&model.ShareLink{}).
			Where("id = ? AND max_downloads IS NOT NULL AND download_count >= max_downloads", link.ID).
			Update("is_active", false)
		if flip.Error != nil {
			return flip.Error
		}
		limitHit = flip.RowsAffected > 0
		counted = true
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrShareLimitReached) {
			// the losing registration is rolled back; retire the link now
			if dErr := s.shares.deactivate(ctx, link); dErr != nil {
				log.Printf("deactivate exhausted share %s: %v", link.ShareCode, dErr)
			}
		}
		return false, false, err
	}
	if limitHit {
		s.shares.dropShareInfoCache(ctx, link.ShareCode)
	}
	return counted, limitHit, nil
}

// RedeemFileToken serves the direct-file download path: any number of
// redemptions inside the token's window, no ledger, no counting.
func (s *DownloadService) RedeemFileToken(ctx context.Context, fileID, tokenString string) (*DownloadGrant, error) {
	claims, err := s.codec.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if err := s.codec.AssertType(claims, utils.TokenTypeDownload); err != nil {
		return nil, err
	}
	if claims.Subject != fileID {
		return nil, utils.ErrInvalidToken
	}

	file, err := s.files.RequireFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	reader, size, err := s.store.Open(ctx, file.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return &DownloadGrant{File: file, Reader: reader, Size: size}, nil
}

func (s *DownloadService) publishAccess(ctx context.Context, link *model.ShareLink, file *model.File, replay, limitHit bool, clientIP string) {
	if s.publisher == nil {
		return
	}
	kind := model.AccessEventDownload
	if replay {
		kind = model.AccessEventReplay
	}
	ev := event.DownloadEvent{
		ShareID:   link.ID,
		ShareCode: link.ShareCode,
		FileID:    file.ID,
		FileName:  file.OriginalName,
		Event:     kind,
		ClientIP:  clientIP,
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Printf("publish download event failed: %v", err)
	}
	if limitHit {
		ev.Event = model.AccessEventLimitReached
		if err := s.publisher.Publish(ctx, ev); err != nil {
			log.Printf("publish limit event failed: %v", err)
		}
	}
}
