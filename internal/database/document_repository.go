package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/axevisa/visa-backend/internal/models"
	"github.com/google/uuid"
)

// ErrDocumentNotFound is returned when no user document matches
var ErrDocumentNotFound = errors.New("document not found")

// DocumentRepository handles user document locker database operations
type DocumentRepository struct {
	db DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db DB) *DocumentRepository {
	return &DocumentRepository{
		db: db,
	}
}

// CreateMany inserts one row per uploaded file
func (r *DocumentRepository) CreateMany(userID uuid.UUID, documentType string, description models.NullString, filePaths []string) (int, error) {
	query := `
		INSERT INTO user_documents (id, user_id, document_type, description, file_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	now := time.Now()
	for _, path := range filePaths {
		if _, err := r.db.Exec(query, uuid.New(), userID, documentType, description, path, now, now); err != nil {
			return 0, fmt.Errorf("failed to create document: %w", err)
		}
	}

	return len(filePaths), nil
}

// Replace swaps the file on an existing document and resets its review
// state, scoped to the owner
func (r *DocumentRepository) Replace(docID, userID uuid.UUID, documentType string, description models.NullString, filePath string) error {
	query := `
		UPDATE user_documents
		SET document_type = $1, description = $2, file_path = $3, updated = true,
			note = NULL, is_verified = false, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`

	result, err := r.db.Exec(query, documentType, description, filePath, time.Now(), docID, userID)
	if err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrDocumentNotFound
	}

	return nil
}

// ListByUser returns a paginated page of the user's documents plus the total
func (r *DocumentRepository) ListByUser(userID uuid.UUID, page, limit int) ([]models.UserDocument, int, error) {
	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM user_documents WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	query := `
		SELECT id, user_id, document_type, description, file_path, updated, note, is_verified, created_at, updated_at
		FROM user_documents
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	docs := []models.UserDocument{}
	if err := r.db.Select(&docs, query, userID, limit, (page-1)*limit); err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}

	return docs, total, nil
}
