package handler

import (
	"GoDrop/config"
	"GoDrop/internal/dto"
	"GoDrop/utils"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves the admin login endpoint.
type AuthHandler struct {
	cfg   *config.Config
	codec *utils.TokenCodec
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(cfg *config.Config, codec *utils.TokenCodec) *AuthHandler {
	return &AuthHandler{cfg: cfg, codec: codec}
}

// Login authenticates the admin account and returns an admin token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误"})
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "账号或密码错误"})
		return
	}

	token, err := h.codec.Issue(utils.TokenTypeAdmin, h.cfg.AdminUsername, h.cfg.AdminTokenTTL, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "签发凭证失败"})
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresIn: int64(h.cfg.AdminTokenTTL.Seconds()),
	})
}
