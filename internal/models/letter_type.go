package models

import (
	"encoding/json"
	"time"
)

// LetterType categorises outgoing letters; the code feeds letter numbering.
type LetterType struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	Templates []LetterTemplate `db:"-" json:"templates,omitempty"`
}

// LetterTemplate is a reusable content skeleton with named fields.
type LetterTemplate struct {
	ID           string          `db:"id" json:"id"`
	LetterTypeID string          `db:"letter_type_id" json:"letter_type_id"`
	Name         string          `db:"name" json:"name"`
	Content      string          `db:"content" json:"content"`
	Fields       json.RawMessage `db:"fields" json:"fields"`
	CreatedBy    string          `db:"created_by" json:"created_by"`
	IsActive     bool            `db:"is_active" json:"is_active"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}
