package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("file type not supported")
)

// UploadChecker rejects files the knowledge base upload endpoint would refuse,
// before they are sent
type UploadChecker struct {
	maxFileSize  int64
	allowedTypes map[string]bool
}

// NewUploadChecker creates a checker matching the backend defaults: 16 MB per request
// and the document and image extensions the ingestion pipeline accepts
func NewUploadChecker() *UploadChecker {
	return &UploadChecker{
		maxFileSize: 16 * 1024 * 1024,
		allowedTypes: map[string]bool{
			".pdf": true, ".doc": true, ".docx": true,
			".ppt": true, ".pptx": true,
			".xls": true, ".xlsx": true,
			".txt": true, ".md": true,
			".html": true, ".htm": true,
			".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
		},
	}
}

// Check returns the file size when path can be uploaded
func (c *UploadChecker) Check(path string) (int64, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !c.allowedTypes[ext] {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Base(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("file not found: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: %s is a directory", ErrUnsupportedType, filepath.Base(path))
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("%w: %s", ErrEmptyFile, filepath.Base(path))
	}
	if info.Size() > c.maxFileSize {
		return 0, fmt.Errorf("%w: %s (%s, max %s)", ErrFileTooLarge, filepath.Base(path),
			FormatFileSize(info.Size()), FormatFileSize(c.maxFileSize))
	}
	return info.Size(), nil
}

// FormatFileSize formats bytes to human readable format
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
