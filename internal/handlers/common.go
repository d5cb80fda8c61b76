package handlers

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/axevisa/visa-backend/internal/config"
	"github.com/axevisa/visa-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Success: false,
		Message: message,
	})
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// FileStore saves multipart uploads to local disk under a per-feature
// folder and returns the public /uploads path stored in the database.
type FileStore struct {
	cfg config.UploadConfig
}

// NewFileStore creates a new file store
func NewFileStore(cfg config.UploadConfig) *FileStore {
	return &FileStore{cfg: cfg}
}

// Save writes one uploaded file under <dir>/<folder> with a random name
func (fs *FileStore) Save(c *gin.Context, file *multipart.FileHeader, folder string) (string, error) {
	if file.Size > fs.cfg.MaxFileSize {
		return "", fmt.Errorf("file %s exceeds the %d byte limit", file.Filename, fs.cfg.MaxFileSize)
	}

	dir := filepath.Join(fs.cfg.Dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name, err := utils.RandomFileName(file.Filename)
	if err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}
	if err := c.SaveUploadedFile(file, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("failed to save uploaded file: %w", err)
	}

	return "/uploads/" + folder + "/" + name, nil
}

// SaveAll saves every file under a multipart form field, capped at max
func (fs *FileStore) SaveAll(c *gin.Context, files []*multipart.FileHeader, folder string, max int) ([]string, error) {
	if len(files) > max {
		return nil, fmt.Errorf("too many files: at most %d allowed", max)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path, err := fs.Save(c, f, folder)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// formFile returns the single file under a form field, or nil if absent
func formFile(c *gin.Context, field string) *multipart.FileHeader {
	file, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return file
}
