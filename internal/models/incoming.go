package models

import "time"

// IncomingStatus tracks processing of received correspondence.
type IncomingStatus string

const (
	IncomingReceived   IncomingStatus = "received"
	IncomingProcessing IncomingStatus = "processing"
	IncomingCompleted  IncomingStatus = "completed"
	IncomingArchived   IncomingStatus = "archived"
)

// Valid reports whether the status is one of the closed enumeration.
func (s IncomingStatus) Valid() bool {
	switch s {
	case IncomingReceived, IncomingProcessing, IncomingCompleted, IncomingArchived:
		return true
	}
	return false
}

// IncomingLetter records a piece of received correspondence.
type IncomingLetter struct {
	ID           string         `db:"id" json:"id"`
	LetterNumber string         `db:"letter_number" json:"letter_number"`
	Sender       string         `db:"sender" json:"sender"`
	Subject      string         `db:"subject" json:"subject"`
	ReceivedDate time.Time      `db:"received_date" json:"received_date"`
	LetterDate   time.Time      `db:"letter_date" json:"letter_date"`
	Description  *string        `db:"description" json:"description,omitempty"`
	FilePath     *string        `db:"file_path" json:"file_path,omitempty"`
	Priority     LetterPriority `db:"priority" json:"priority"`
	Status       IncomingStatus `db:"status" json:"status"`
	ReceivedBy   string         `db:"received_by" json:"received_by"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// IncomingLetterFilter narrows listing queries.
type IncomingLetterFilter struct {
	Search   string
	Status   IncomingStatus
	Priority LetterPriority
	Page     int
	PageSize int
}
