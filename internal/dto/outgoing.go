package dto

import (
	"encoding/json"
	"time"

	"github.com/arsipkita/esurat-api/internal/models"
)

// CreateOutgoingLetterRequest is the payload for drafting a new letter.
type CreateOutgoingLetterRequest struct {
	LetterTypeID string                `json:"letter_type_id" validate:"required"`
	TemplateID   *string               `json:"template_id,omitempty"`
	Recipient    string                `json:"recipient" validate:"required,max=255"`
	Subject      string                `json:"subject" validate:"required,max=500"`
	Content      string                `json:"content" validate:"required"`
	TemplateData json.RawMessage       `json:"template_data,omitempty"`
	LetterDate   string                `json:"letter_date" validate:"required"`
	Priority     models.LetterPriority `json:"priority" validate:"required"`
}

// UpdateOutgoingLetterRequest mutates a draft letter. Same shape as create;
// the letter number and type never change after creation.
type UpdateOutgoingLetterRequest struct {
	TemplateID   *string               `json:"template_id,omitempty"`
	Recipient    string                `json:"recipient" validate:"required,max=255"`
	Subject      string                `json:"subject" validate:"required,max=500"`
	Content      string                `json:"content" validate:"required"`
	TemplateData json.RawMessage       `json:"template_data,omitempty"`
	LetterDate   string                `json:"letter_date" validate:"required"`
	Priority     models.LetterPriority `json:"priority" validate:"required"`
}

// RejectLetterRequest carries the mandatory rejection reason.
type RejectLetterRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// OutgoingLetterResponse augments the record with the actor's capability flag.
type OutgoingLetterResponse struct {
	models.OutgoingLetter
	CanSign bool `json:"can_sign"`
}

// OutgoingLetterFilter captures listing query parameters.
type OutgoingLetterFilter struct {
	Search       string
	Status       models.LetterStatus
	LetterTypeID string
	Page         int
	PageSize     int
}

// VerificationView is the public, read-only projection of a signed letter.
type VerificationView struct {
	LetterNumber      string     `json:"letter_number"`
	Subject           string     `json:"subject"`
	Recipient         string     `json:"recipient"`
	Content           string     `json:"content"`
	LetterDate        string     `json:"letter_date"`
	LetterType        string     `json:"letter_type"`
	SecretarySigner   *string    `json:"secretary_signer,omitempty"`
	SecretarySignedAt *time.Time `json:"secretary_signed_at,omitempty"`
	ChairmanSigner    *string    `json:"chairman_signer,omitempty"`
	ChairmanSignedAt  *time.Time `json:"chairman_signed_at,omitempty"`
	QRCode            string     `json:"qr_code"`
	Verified          bool       `json:"verified"`
}

// LetterPDFURLResponse exposes a time-limited download link.
type LetterPDFURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
