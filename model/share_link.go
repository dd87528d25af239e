package model

import "time"

type ShareLink struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	FileID string `gorm:"column:file_id;size:36;not null;index" json:"file_id"`
	File   File   `gorm:"foreignKey:FileID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	ShareCode string `gorm:"column:share_code;size:16;uniqueIndex;not null" json:"share_code"`

	PasswordHash *string    `gorm:"column:password_hash;size:100" json:"-"`
	ExpireAt     *time.Time `gorm:"column:expire_at" json:"expire_at,omitempty"`
	MaxDownloads *int       `gorm:"column:max_downloads" json:"max_downloads,omitempty"`

	DownloadCount int  `gorm:"column:download_count;not null;default:0" json:"download_count"`
	IsActive      bool `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (ShareLink) TableName() string {
	return "share_links"
}

// NeedPassword reports whether the link is password gated.
func (s *ShareLink) NeedPassword() bool {
	return s.PasswordHash != nil
}
