package model

import "time"

// Access log event kinds written by the worker.
const (
	AccessEventDownload     = "download"
	AccessEventReplay       = "replay"
	AccessEventLimitReached = "limit_reached"
)

type ShareAccessLog struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	ShareID   string `gorm:"column:share_id;size:36;not null;index" json:"share_id"`
	ShareCode string `gorm:"column:share_code;size:16;not null;index" json:"share_code"`
	FileID    string `gorm:"column:file_id;size:36;not null" json:"file_id"`

	Event    string `gorm:"column:event;size:32;not null" json:"event"`
	ClientIP string `gorm:"column:client_ip;size:64" json:"client_ip,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (ShareAccessLog) TableName() string {
	return "share_access_log"
}
