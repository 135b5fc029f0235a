package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"genzfits/internal/logger"
	"genzfits/internal/monitoring"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const imagesSubdir = "images"

var (
	uploadLimiterMu sync.Mutex
	uploadLimiter   chan struct{}

	// SVG is left out on purpose: it can carry script.
	supportedImageMimeTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
		"image/gif":  {},
		"image/webp": {},
		"image/bmp":  {},
		"image/avif": {},
	}
)

func normalizeMimeType(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if separator := strings.Index(normalized, ";"); separator >= 0 {
		normalized = strings.TrimSpace(normalized[:separator])
	}
	return normalized
}

func isSupportedImageMimeType(raw string) bool {
	_, ok := supportedImageMimeTypes[normalizeMimeType(raw)]
	return ok
}

func resetUploadLimiter(size int) {
	uploadLimiterMu.Lock()
	uploadLimiter = make(chan struct{}, size)
	uploadLimiterMu.Unlock()
}

func getUploadLimiter() chan struct{} {
	uploadLimiterMu.Lock()
	defer uploadLimiterMu.Unlock()
	if uploadLimiter == nil {
		uploadLimiter = make(chan struct{}, defaultMaxParallelUploads)
	}
	return uploadLimiter
}

func tryAcquireUploadSlot() (release func(), ok bool) {
	limiter := getUploadLimiter()
	select {
	case limiter <- struct{}{}:
		return func() { <-limiter }, true
	default:
		return nil, false
	}
}

// uploadError is a rejected upload with the status and reason to report.
type uploadError struct {
	status  int
	reason  string
	message string
}

func (e *uploadError) Error() string {
	return e.message
}

// UploadProductImages stores the files of the multipart field "images" and
// returns their public URLs. The request is all-or-nothing: when any file is
// rejected, files already written by this request are removed.
func UploadProductImages(c *gin.Context) {
	startedAt := time.Now()
	var uploadedBytes int64
	uploadSuccess := false
	uploadFailureReason := "unknown"
	defer func() {
		if uploadSuccess {
			uploadFailureReason = ""
		}
		monitoring.RecordUpload(uploadedBytes, time.Since(startedAt), uploadSuccess, uploadFailureReason)
	}()

	release, ok := tryAcquireUploadSlot()
	if !ok {
		uploadFailureReason = "parallel_upload_limit"
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many concurrent uploads. Please retry shortly"})
		return
	}
	defer release()

	form, err := c.MultipartForm()
	if err != nil {
		uploadFailureReason = "invalid_form"
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expected multipart form data"})
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		uploadFailureReason = "file_missing"
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one image is required"})
		return
	}

	opts := currentOptions()
	uploadDir := filepath.Join(opts.UploadsBasePath, imagesSubdir)
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		uploadFailureReason = "upload_dir_error"
		logger.FromGin(c).Error("Error creating upload directory", zap.String("dir", uploadDir), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating upload directory"})
		return
	}

	written := make([]string, 0, len(files))
	urls := make([]string, 0, len(files))
	for _, header := range files {
		name, size, saveErr := saveImage(header, uploadDir, opts.MaxImageUploadBytes)
		if saveErr != nil {
			removeFiles(written)

			var rejected *uploadError
			if errors.As(saveErr, &rejected) {
				uploadFailureReason = rejected.reason
				c.JSON(rejected.status, gin.H{"error": rejected.message, "file": header.Filename})
				return
			}
			uploadFailureReason = "write_error"
			logger.FromGin(c).Error("Error storing image", zap.String("file", header.Filename), zap.Error(saveErr))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error storing image"})
			return
		}

		written = append(written, filepath.Join(uploadDir, name))
		urls = append(urls, "/uploads/"+imagesSubdir+"/"+name)
		uploadedBytes += size
	}

	uploadSuccess = true
	logger.FromGin(c).Info("Images uploaded", zap.Int("count", len(urls)), zap.Int64("bytes", uploadedBytes))
	c.JSON(http.StatusOK, gin.H{"urls": urls})
}

// saveImage validates one file by its content and writes it under dir with a
// random name. It returns the stored name and size.
func saveImage(header *multipart.FileHeader, dir string, maxBytes int64) (string, int64, error) {
	if header.Size > maxBytes {
		return "", 0, &uploadError{
			status:  http.StatusRequestEntityTooLarge,
			reason:  "file_too_large",
			message: fmt.Sprintf("Image is too large (max %d bytes)", maxBytes),
		}
	}

	file, err := header.Open()
	if err != nil {
		return "", 0, &uploadError{status: http.StatusBadRequest, reason: "file_read_error", message: "Error reading file"}
	}
	defer file.Close()

	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return "", 0, &uploadError{status: http.StatusBadRequest, reason: "file_read_error", message: "Error reading file"}
	}
	mimeType := normalizeMimeType(detected.String())
	if !isSupportedImageMimeType(mimeType) {
		return "", 0, &uploadError{
			status:  http.StatusBadRequest,
			reason:  "unsupported_mime",
			message: fmt.Sprintf("Unsupported image format (%s). Allowed: jpeg, png, gif, webp, bmp, avif", mimeType),
		}
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", 0, err
	}

	name := uuid.NewString() + detected.Extension()
	target := filepath.Join(dir, name)
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, err
	}

	// Size in the multipart header is client-supplied; cap the copy too.
	size, copyErr := io.Copy(out, io.LimitReader(file, maxBytes+1))
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(target)
		return "", 0, errors.Join(copyErr, closeErr)
	}
	if size > maxBytes {
		_ = os.Remove(target)
		return "", 0, &uploadError{
			status:  http.StatusRequestEntityTooLarge,
			reason:  "file_too_large",
			message: fmt.Sprintf("Image is too large (max %d bytes)", maxBytes),
		}
	}
	if size == 0 {
		_ = os.Remove(target)
		return "", 0, &uploadError{status: http.StatusBadRequest, reason: "file_empty", message: "File is empty"}
	}

	return name, size, nil
}

func removeFiles(paths []string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}
