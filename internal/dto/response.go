package dto

import "time"

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type UploadResponse struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// ShareSummary annotates a file listing entry with its active share.
type ShareSummary struct {
	ShareCode     string     `json:"share_code"`
	ShareURL      string     `json:"share_url"`
	ExpireAt      *time.Time `json:"expire_at,omitempty"`
	MaxDownloads  *int       `json:"max_downloads,omitempty"`
	DownloadCount int        `json:"download_count"`
	NeedPassword  bool       `json:"need_password"`
}

type FileItem struct {
	ID          string        `json:"id"`
	Filename    string        `json:"filename"`
	Size        int64         `json:"size"`
	MimeType    string        `json:"mime_type"`
	Remark      string        `json:"remark,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	ActiveShare *ShareSummary `json:"active_share,omitempty"`
}

type FileListResponse struct {
	Total int64      `json:"total"`
	List  []FileItem `json:"list"`
}

type CreateShareResponse struct {
	ShareCode string     `json:"share_code"`
	ShareURL  string     `json:"share_url"`
	ExpireAt  *time.Time `json:"expire_at,omitempty"`
}

type ShareInfoResponse struct {
	Filename     string `json:"filename"`
	Size         int64  `json:"size"`
	NeedPassword bool   `json:"need_password"`
}

type DownloadTokenResponse struct {
	DownloadToken string `json:"download_token"`
	ExpiresIn     int64  `json:"expires_in"`
}
