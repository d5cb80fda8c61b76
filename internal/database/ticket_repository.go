package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/axevisa/visa-backend/internal/models"
	"github.com/google/uuid"
)

// ErrTicketNotFound is returned when no support ticket matches
var ErrTicketNotFound = errors.New("support ticket not found")

// TicketRepository handles support ticket database operations
type TicketRepository struct {
	db DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db DB) *TicketRepository {
	return &TicketRepository{
		db: db,
	}
}

// Create opens a ticket with its first message
func (r *TicketRepository) Create(userID uuid.UUID, subject, message string) (*models.SupportTicket, error) {
	ticket := &models.SupportTicket{
		ID:        uuid.New(),
		UserID:    userID,
		Subject:   subject,
		Status:    models.TicketOpen,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
		INSERT INTO support_tickets (id, user_id, subject, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(query, ticket.ID, ticket.UserID, ticket.Subject, ticket.Status,
		ticket.CreatedAt, ticket.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	if err := r.AddMessage(ticket.ID, userID, message, models.SentByUser); err != nil {
		return nil, err
	}

	return ticket, nil
}

// AddMessage appends a message to the ticket thread
func (r *TicketRepository) AddMessage(ticketID, senderID uuid.UUID, message, sentBy string) error {
	query := `
		INSERT INTO ticket_messages (id, ticket_id, sender_id, message, sent_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(query, uuid.New(), ticketID, senderID, message, sentBy, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add ticket message: %w", err)
	}

	if _, err := r.db.Exec(`UPDATE support_tickets SET updated_at = $1 WHERE id = $2`, time.Now(), ticketID); err != nil {
		return fmt.Errorf("failed to touch ticket: %w", err)
	}

	return nil
}

// GetByID fetches a ticket without its thread
func (r *TicketRepository) GetByID(id uuid.UUID) (*models.SupportTicket, error) {
	query := `
		SELECT t.id, t.user_id, t.subject, t.status, t.created_at, t.updated_at,
			u.name AS user_name, u.email AS user_email
		FROM support_tickets t
		JOIN users u ON u.id = t.user_id
		WHERE t.id = $1
	`

	var ticket models.SupportTicket
	err := r.db.Get(&ticket, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return &ticket, nil
}

// ListMessages returns a ticket's thread, oldest first
func (r *TicketRepository) ListMessages(ticketID uuid.UUID) ([]models.TicketMessage, error) {
	query := `
		SELECT id, ticket_id, sender_id, message, sent_by, created_at
		FROM ticket_messages
		WHERE ticket_id = $1
		ORDER BY created_at ASC
	`

	messages := []models.TicketMessage{}
	if err := r.db.Select(&messages, query, ticketID); err != nil {
		return nil, fmt.Errorf("failed to list ticket messages: %w", err)
	}

	return messages, nil
}

// ListByUser returns the user's tickets, newest first
func (r *TicketRepository) ListByUser(userID uuid.UUID) ([]models.SupportTicket, error) {
	query := `
		SELECT id, user_id, subject, status, created_at, updated_at
		FROM support_tickets
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	tickets := []models.SupportTicket{}
	if err := r.db.Select(&tickets, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list tickets for user: %w", err)
	}

	return tickets, nil
}

// ListAll returns every ticket with owners joined (admin)
func (r *TicketRepository) ListAll() ([]models.SupportTicket, error) {
	query := `
		SELECT t.id, t.user_id, t.subject, t.status, t.created_at, t.updated_at,
			u.name AS user_name, u.email AS user_email
		FROM support_tickets t
		JOIN users u ON u.id = t.user_id
		ORDER BY t.created_at DESC
	`

	tickets := []models.SupportTicket{}
	if err := r.db.Select(&tickets, query); err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	return tickets, nil
}

// UpdateStatus opens or closes a ticket
func (r *TicketRepository) UpdateStatus(id uuid.UUID, status string) error {
	query := `UPDATE support_tickets SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrTicketNotFound
	}

	return nil
}
