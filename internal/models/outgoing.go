package models

import (
	"encoding/json"
	"time"
)

// LetterStatus tracks an outgoing letter through the approval chain.
type LetterStatus string

const (
	StatusDraft            LetterStatus = "draft"
	StatusPendingSecretary LetterStatus = "pending_secretary"
	StatusPendingChairman  LetterStatus = "pending_chairman"
	StatusSigned           LetterStatus = "signed"
	StatusRejected         LetterStatus = "rejected"
)

// Valid reports whether the status is one of the closed enumeration.
func (s LetterStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingSecretary, StatusPendingChairman, StatusSigned, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further workflow operation may touch the letter.
func (s LetterStatus) Terminal() bool {
	return s == StatusSigned || s == StatusRejected
}

// Pending reports whether the letter awaits an approval action.
func (s LetterStatus) Pending() bool {
	return s == StatusPendingSecretary || s == StatusPendingChairman
}

// LetterPriority classifies urgency of a letter.
type LetterPriority string

const (
	PriorityLow    LetterPriority = "low"
	PriorityNormal LetterPriority = "normal"
	PriorityHigh   LetterPriority = "high"
	PriorityUrgent LetterPriority = "urgent"
)

// Valid reports whether the priority is one of the closed enumeration.
func (p LetterPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// CanAct is the single authorization predicate for approval actions.
// Signing and rejecting share it: a secretary acts on letters pending the
// secretary stage, a chairman on letters pending the chairman stage.
func CanAct(role UserRole, status LetterStatus) bool {
	return (role == RoleSecretary && status == StatusPendingSecretary) ||
		(role == RoleChairman && status == StatusPendingChairman)
}

// SignTarget returns the status a sign action advances to from the given
// pending stage. The second result is false when status is not signable.
func SignTarget(status LetterStatus) (LetterStatus, bool) {
	switch status {
	case StatusPendingSecretary:
		return StatusPendingChairman, true
	case StatusPendingChairman:
		return StatusSigned, true
	}
	return "", false
}

// OutgoingLetter is the central workflow entity.
type OutgoingLetter struct {
	ID              string          `db:"id" json:"id"`
	LetterNumber    string          `db:"letter_number" json:"letter_number"`
	LetterTypeID    string          `db:"letter_type_id" json:"letter_type_id"`
	TemplateID      *string         `db:"template_id" json:"template_id,omitempty"`
	Recipient       string          `db:"recipient" json:"recipient"`
	Subject         string          `db:"subject" json:"subject"`
	Content         string          `db:"content" json:"content"`
	TemplateData    json.RawMessage `db:"template_data" json:"template_data,omitempty"`
	LetterDate      time.Time       `db:"letter_date" json:"letter_date"`
	Priority        LetterPriority  `db:"priority" json:"priority"`
	Status          LetterStatus    `db:"status" json:"status"`
	RejectionReason *string         `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedBy       string          `db:"created_by" json:"created_by"`
	SecretarySignBy *string         `db:"secretary_signed_by" json:"secretary_signed_by,omitempty"`
	SecretarySignAt *time.Time      `db:"secretary_signed_at" json:"secretary_signed_at,omitempty"`
	ChairmanSignBy  *string         `db:"chairman_signed_by" json:"chairman_signed_by,omitempty"`
	ChairmanSignAt  *time.Time      `db:"chairman_signed_at" json:"chairman_signed_at,omitempty"`
	QRCode          *string         `db:"qr_code" json:"qr_code,omitempty"`
	PDFPath         *string         `db:"pdf_path" json:"pdf_path,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// OutgoingLetterFilter narrows listing queries.
type OutgoingLetterFilter struct {
	Search       string
	Status       LetterStatus
	LetterTypeID string
	// ChairmanID scopes results to letters pending the chairman stage or
	// already signed by that chairman.
	ChairmanID string
	Page       int
	PageSize   int
}

// VerificationRecord is the joined row backing the public verification view.
type VerificationRecord struct {
	ID              string       `db:"id"`
	LetterNumber    string       `db:"letter_number"`
	Subject         string       `db:"subject"`
	Recipient       string       `db:"recipient"`
	Content         string       `db:"content"`
	LetterDate      time.Time    `db:"letter_date"`
	Status          LetterStatus `db:"status"`
	LetterTypeName  string       `db:"letter_type_name"`
	SecretaryName   *string      `db:"secretary_name"`
	SecretarySignAt *time.Time   `db:"secretary_signed_at"`
	ChairmanName    *string      `db:"chairman_name"`
	ChairmanSignAt  *time.Time   `db:"chairman_signed_at"`
	QRCode          string       `db:"qr_code"`
}

// StatusCounts aggregates outgoing letters per workflow state.
type StatusCounts struct {
	Draft            int `db:"draft" json:"draft"`
	PendingSecretary int `db:"pending_secretary" json:"pending_secretary"`
	PendingChairman  int `db:"pending_chairman" json:"pending_chairman"`
	Signed           int `db:"signed" json:"signed"`
	Rejected         int `db:"rejected" json:"rejected"`
}
