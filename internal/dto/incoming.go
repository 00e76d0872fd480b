package dto

import "github.com/arsipkita/esurat-api/internal/models"

// CreateIncomingLetterRequest records a received letter.
type CreateIncomingLetterRequest struct {
	LetterNumber string                `json:"letter_number" validate:"required,max=255"`
	Sender       string                `json:"sender" validate:"required,max=255"`
	Subject      string                `json:"subject" validate:"required,max=500"`
	ReceivedDate string                `json:"received_date" validate:"required"`
	LetterDate   string                `json:"letter_date" validate:"required"`
	Description  *string               `json:"description,omitempty"`
	Priority     models.LetterPriority `json:"priority" validate:"required"`
	Status       models.IncomingStatus `json:"status" validate:"required"`
}

// UpdateIncomingLetterRequest mutates an incoming letter record.
type UpdateIncomingLetterRequest struct {
	Sender      string                `json:"sender" validate:"required,max=255"`
	Subject     string                `json:"subject" validate:"required,max=500"`
	LetterDate  string                `json:"letter_date" validate:"required"`
	Description *string               `json:"description,omitempty"`
	Priority    models.LetterPriority `json:"priority" validate:"required"`
	Status      models.IncomingStatus `json:"status" validate:"required"`
}

// IncomingLetterFilter captures listing query parameters.
type IncomingLetterFilter struct {
	Search   string
	Status   models.IncomingStatus
	Priority models.LetterPriority
	Page     int
	PageSize int
}
