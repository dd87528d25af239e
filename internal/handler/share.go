package handler

import (
	"GoDrop/config"
	"GoDrop/internal/dto"
	"GoDrop/internal/service"
	"GoDrop/utils"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ShareHandler serves the public share endpoints.
type ShareHandler struct {
	cfg       *config.Config
	files     *service.FileService
	shares    *service.ShareService
	downloads *service.DownloadService
}

// NewShareHandler constructs a ShareHandler.
func NewShareHandler(cfg *config.Config, files *service.FileService, shares *service.ShareService, downloads *service.DownloadService) *ShareHandler {
	return &ShareHandler{cfg: cfg, files: files, shares: shares, downloads: downloads}
}

func shareGone(c *gin.Context) {
	c.JSON(http.StatusGone, gin.H{"error": "链接已失效"})
}

// Info returns the public view of a share: filename, size, password flag.
// Served from the cache when possible; staleness only affects display.
func (h *ShareHandler) Info(c *gin.Context) {
	code := c.Param("shareCode")

	if info, ok := h.shares.CachedShareInfo(c.Request.Context(), code); ok {
		c.JSON(http.StatusOK, dto.ShareInfoResponse{
			Filename:     info.FileName,
			Size:         info.FileSize,
			NeedPassword: info.NeedPassword,
		})
		return
	}

	link, err := h.shares.RequireActiveShare(c.Request.Context(), code)
	if err != nil {
		switch {
		case service.IsShareGone(err):
			shareGone(c)
		case errors.Is(err, service.ErrShareNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在"})
		default:
			log.Printf("share info failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		}
		return
	}

	file, err := h.files.RequireFile(c.Request.Context(), link.FileID)
	if err != nil {
		shareGone(c)
		return
	}

	c.JSON(http.StatusOK, dto.ShareInfoResponse{
		Filename:     file.OriginalName,
		Size:         file.FileSize,
		NeedPassword: link.NeedPassword(),
	})
}

// Verify runs the password gate and returns a single-use download token.
func (h *ShareHandler) Verify(c *gin.Context) {
	code := c.Param("shareCode")
	var req dto.VerifyShareRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误"})
		return
	}

	token, err := h.downloads.VerifyShare(c.Request.Context(), code, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSharePasswordInvalid):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "提取码错误"})
		case service.IsShareGone(err):
			shareGone(c)
		case errors.Is(err, service.ErrShareNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在"})
		default:
			log.Printf("share verify failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "校验失败"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.DownloadTokenResponse{
		DownloadToken: token,
		ExpiresIn:     int64(h.cfg.DownloadTokenTTL.Seconds()),
	})
}

// Download redeems a download token against the share code and streams
// the file bytes.
func (h *ShareHandler) Download(c *gin.Context) {
	code := c.Param("shareCode")
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "下载凭证无效"})
		return
	}

	grant, err := h.downloads.Redeem(c.Request.Context(), code, token, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidToken):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "下载凭证无效"})
		case service.IsShareGone(err):
			shareGone(c)
		case errors.Is(err, service.ErrShareNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在"})
		case errors.Is(err, service.ErrFileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "文件不存在"})
		default:
			log.Printf("share download failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "下载失败"})
		}
		return
	}
	serveGrant(c, grant)
}
