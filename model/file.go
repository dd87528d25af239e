package model

import "time"

type File struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	OriginalName string `gorm:"column:original_name;size:255;not null" json:"original_name"`
	StoredName   string `gorm:"column:stored_name;size:255;not null" json:"stored_name"`
	FilePath     string `gorm:"column:file_path;size:512;not null" json:"file_path"`

	FileSize int64  `gorm:"column:file_size;not null" json:"file_size"`
	MimeType string `gorm:"column:mime_type;size:255;not null" json:"mime_type"`
	Remark   string `gorm:"column:remark;size:500" json:"remark,omitempty"`

	IsDeleted bool `gorm:"column:is_deleted;default:false;index" json:"is_deleted,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (File) TableName() string {
	return "files"
}
