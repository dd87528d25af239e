package model

import "time"

// ShareDownloadToken records a consumed download token. A row exists from
// the moment a redemption is actually served; the jti primary key is the
// serialization point for concurrent redemptions of the same token.
type ShareDownloadToken struct {
	JTI string `gorm:"column:jti;primaryKey;size:36"`

	ShareID string    `gorm:"column:share_id;size:36;not null;index"`
	Share   ShareLink `gorm:"foreignKey:ShareID;references:ID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
}

// TableName returns the database table name.
func (ShareDownloadToken) TableName() string {
	return "share_download_tokens"
}
