package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// GenerateSecret generates a cryptographically secure random secret
func GenerateSecret(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// RandomFileName builds an unguessable stored name for an uploaded file,
// keeping only the original extension.
func RandomFileName(originalName string) (string, error) {
	name, err := GenerateSecret(8)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	return name + ext, nil
}
