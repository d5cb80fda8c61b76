package models

import (
	"time"

	"github.com/google/uuid"
)

// Support ticket status values
const (
	TicketOpen   = "open"
	TicketClosed = "closed"
)

// Ticket message senders
const (
	SentByUser  = "USER"
	SentByAdmin = "ADMIN"
)

// SupportTicket is a threaded support conversation
type SupportTicket struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Subject   string    `json:"subject" db:"subject"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Populated by joins
	Messages  []TicketMessage `json:"messages,omitempty" db:"-"`
	UserName  NullString      `json:"userName,omitempty" db:"user_name"`
	UserEmail NullString      `json:"userEmail,omitempty" db:"user_email"`
}

// TicketMessage is one entry in a support ticket thread
type TicketMessage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TicketID  uuid.UUID `json:"ticketId" db:"ticket_id"`
	SenderID  uuid.UUID `json:"senderId" db:"sender_id"`
	Message   string    `json:"message" db:"message"`
	SentBy    string    `json:"sentBy" db:"sent_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// UserDocument is a standalone document uploaded to a user's locker
type UserDocument struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UserID       uuid.UUID  `json:"userId" db:"user_id"`
	DocumentType string     `json:"documentType" db:"document_type"`
	Description  NullString `json:"description,omitempty" db:"description"`
	FilePath     string     `json:"filePath" db:"file_path"`
	Updated      bool       `json:"updated" db:"updated"`
	Note         NullString `json:"note,omitempty" db:"note"`
	IsVerified   bool       `json:"isVerified" db:"is_verified"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}
