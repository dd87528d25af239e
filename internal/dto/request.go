package dto

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateShareRequest struct {
	Password     string `json:"password"`
	ExpireHours  int    `json:"expire_hours" binding:"gte=0"`
	MaxDownloads int    `json:"max_downloads" binding:"gte=0"`
}

type VerifyShareRequest struct {
	Password string `json:"password"`
}
