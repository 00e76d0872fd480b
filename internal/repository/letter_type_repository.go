package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/arsipkita/esurat-api/internal/models"
)

// LetterTypeRepository reads the letter type and template catalog.
type LetterTypeRepository struct {
	db *sqlx.DB
}

// NewLetterTypeRepository constructs the repository.
func NewLetterTypeRepository(db *sqlx.DB) *LetterTypeRepository {
	return &LetterTypeRepository{db: db}
}

// ListActive returns active letter types ordered by code. With withTemplates
// set, each type carries its active templates.
func (r *LetterTypeRepository) ListActive(ctx context.Context, withTemplates bool) ([]models.LetterType, error) {
	var types []models.LetterType
	const query = `SELECT id, code, name, description, is_active, created_at, updated_at
	FROM letter_types WHERE is_active = true ORDER BY code`
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("list letter types: %w", err)
	}
	if !withTemplates || len(types) == 0 {
		return types, nil
	}

	var templates []models.LetterTemplate
	const templateQuery = `SELECT id, letter_type_id, name, content, fields, created_by, is_active, created_at, updated_at
	FROM letter_templates WHERE is_active = true ORDER BY name`
	if err := r.db.SelectContext(ctx, &templates, templateQuery); err != nil {
		return nil, fmt.Errorf("list letter templates: %w", err)
	}

	byType := make(map[string][]models.LetterTemplate, len(types))
	for _, tmpl := range templates {
		byType[tmpl.LetterTypeID] = append(byType[tmpl.LetterTypeID], tmpl)
	}
	for i := range types {
		types[i].Templates = byType[types[i].ID]
	}
	return types, nil
}

// GetByID retrieves one letter type.
func (r *LetterTypeRepository) GetByID(ctx context.Context, id string) (*models.LetterType, error) {
	const query = `SELECT id, code, name, description, is_active, created_at, updated_at
	FROM letter_types WHERE id = $1`
	var letterType models.LetterType
	if err := r.db.GetContext(ctx, &letterType, query, id); err != nil {
		return nil, err
	}
	return &letterType, nil
}

// GetTemplateByID retrieves one letter template.
func (r *LetterTypeRepository) GetTemplateByID(ctx context.Context, id string) (*models.LetterTemplate, error) {
	const query = `SELECT id, letter_type_id, name, content, fields, created_by, is_active, created_at, updated_at
	FROM letter_templates WHERE id = $1`
	var template models.LetterTemplate
	if err := r.db.GetContext(ctx, &template, query, id); err != nil {
		return nil, err
	}
	return &template, nil
}
