package handler

import (
	"GoDrop/config"
	"GoDrop/internal/dto"
	"GoDrop/internal/service"
	"GoDrop/internal/storage"
	"GoDrop/utils"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// FileHandler serves the admin file endpoints and the direct download.
type FileHandler struct {
	cfg       *config.Config
	files     *service.FileService
	shares    *service.ShareService
	downloads *service.DownloadService
}

// NewFileHandler constructs a FileHandler.
func NewFileHandler(cfg *config.Config, files *service.FileService, shares *service.ShareService, downloads *service.DownloadService) *FileHandler {
	return &FileHandler{cfg: cfg, files: files, shares: shares, downloads: downloads}
}

func buildShareURL(base, code string) string {
	path := "/s/" + code
	if base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + path
}

// Upload stores a multipart file with an optional remark.
func (h *FileHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少文件"})
		return
	}
	remark := c.PostForm("remark")

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "读取文件失败"})
		return
	}
	defer src.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	name := fileHeader.Filename
	if name == "" {
		name = "unnamed"
	}

	created, err := h.files.Upload(c.Request.Context(), src, name, mimeType, remark)
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) {
			limitMB := h.cfg.MaxUploadBytes / (1024 * 1024)
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("文件超过最大限制 %dMB", limitMB),
			})
			return
		}
		log.Printf("upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "上传失败"})
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{
		FileID:   created.ID,
		Filename: created.OriginalName,
		Size:     created.FileSize,
	})
}

// List returns a page of files with active share summaries.
func (h *FileHandler) List(c *gin.Context) {
	page := parsePositiveInt(c.Query("page"), 1)
	size := parsePositiveInt(c.Query("size"), 20)
	keyword := strings.TrimSpace(c.Query("keyword"))

	total, items, err := h.files.List(c.Request.Context(), page, size, keyword)
	if err != nil {
		log.Printf("list files failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}

	out := make([]dto.FileItem, 0, len(items))
	for _, item := range items {
		entry := dto.FileItem{
			ID:        item.File.ID,
			Filename:  item.File.OriginalName,
			Size:      item.File.FileSize,
			MimeType:  item.File.MimeType,
			Remark:    item.File.Remark,
			CreatedAt: item.File.CreatedAt,
		}
		if share := item.ActiveShare; share != nil {
			entry.ActiveShare = &dto.ShareSummary{
				ShareCode:     share.ShareCode,
				ShareURL:      buildShareURL(h.cfg.PublicBaseURL, share.ShareCode),
				ExpireAt:      share.ExpireAt,
				MaxDownloads:  share.MaxDownloads,
				DownloadCount: share.DownloadCount,
				NeedPassword:  share.NeedPassword(),
			}
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, dto.FileListResponse{Total: total, List: out})
}

// Delete removes the stored bytes and soft-deletes the catalog entry.
func (h *FileHandler) Delete(c *gin.Context) {
	fileID := c.Param("fileID")
	if err := h.files.Delete(c.Request.Context(), fileID); err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "文件不存在"})
			return
		}
		log.Printf("delete file failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateShare creates a share link for a file.
func (h *FileHandler) CreateShare(c *gin.Context) {
	fileID := c.Param("fileID")
	var req dto.CreateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误"})
		return
	}

	link, err := h.shares.CreateShare(c.Request.Context(), fileID, service.ShareCreateParams{
		Password:     req.Password,
		ExpireHours:  req.ExpireHours,
		MaxDownloads: req.MaxDownloads,
	})
	if err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "文件不存在"})
			return
		}
		log.Printf("create share failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建分享失败"})
		return
	}

	c.JSON(http.StatusOK, dto.CreateShareResponse{
		ShareCode: link.ShareCode,
		ShareURL:  buildShareURL(h.cfg.PublicBaseURL, link.ShareCode),
		ExpireAt:  link.ExpireAt,
	})
}

// CreateDownloadToken mints a direct-file download token.
func (h *FileHandler) CreateDownloadToken(c *gin.Context) {
	fileID := c.Param("fileID")
	token, err := h.files.CreateFileDownloadToken(c.Request.Context(), fileID)
	if err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "文件不存在"})
			return
		}
		log.Printf("create download token failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "签发凭证失败"})
		return
	}
	c.JSON(http.StatusOK, dto.DownloadTokenResponse{
		DownloadToken: token,
		ExpiresIn:     int64(h.cfg.DownloadTokenTTL.Seconds()),
	})
}

// Download serves the direct-file path: a download token scoped to the
// file id, redeemable any number of times within its window.
func (h *FileHandler) Download(c *gin.Context) {
	fileID := c.Param("fileID")
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "下载凭证无效"})
		return
	}

	grant, err := h.downloads.RedeemFileToken(c.Request.Context(), fileID, token)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidToken):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "下载凭证无效"})
		case errors.Is(err, service.ErrFileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "文件不存在"})
		default:
			log.Printf("direct download failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "下载失败"})
		}
		return
	}
	serveGrant(c, grant)
}

// serveGrant streams the granted bytes with the original filename.
func serveGrant(c *gin.Context, grant *service.DownloadGrant) {
	defer grant.Reader.Close()

	safeName := utils.SanitizeHeaderFilename(grant.File.OriginalName)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, safeName))
	contentType := grant.File.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Length", strconv.FormatInt(grant.Size, 10))

	if _, err := io.Copy(c.Writer, grant.Reader); err != nil {
		log.Printf("stream download failed: %v", err)
	}
}

func parsePositiveInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
