package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arsipkita/esurat-api/internal/models"
)

const incomingColumns = `id, letter_number, sender, subject, received_date, letter_date,
       description, file_path, priority, status, received_by, created_at, updated_at`

// IncomingLetterRepository handles incoming letter persistence.
type IncomingLetterRepository struct {
	db *sqlx.DB
}

// NewIncomingLetterRepository constructs the repository.
func NewIncomingLetterRepository(db *sqlx.DB) *IncomingLetterRepository {
	return &IncomingLetterRepository{db: db}
}

// Create inserts a received letter record.
func (r *IncomingLetterRepository) Create(ctx context.Context, letter *models.IncomingLetter) error {
	if letter.ID == "" {
		letter.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	letter.CreatedAt = now
	letter.UpdatedAt = now

	const query = `INSERT INTO incoming_letters
	(id, letter_number, sender, subject, received_date, letter_date, description,
	 file_path, priority, status, received_by, created_at, updated_at)
	VALUES (:id, :letter_number, :sender, :subject, :received_date, :letter_date, :description,
	 :file_path, :priority, :status, :received_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, letter); err != nil {
		return fmt.Errorf("insert incoming letter: %w", err)
	}
	return nil
}

// GetByID retrieves one incoming letter row.
func (r *IncomingLetterRepository) GetByID(ctx context.Context, id string) (*models.IncomingLetter, error) {
	query := `SELECT ` + incomingColumns + ` FROM incoming_letters WHERE id = $1`
	var letter models.IncomingLetter
	if err := r.db.GetContext(ctx, &letter, query, id); err != nil {
		return nil, err
	}
	return &letter, nil
}

// List returns incoming letters with search and status filters, newest first.
func (r *IncomingLetterRepository) List(ctx context.Context, filter models.IncomingLetterFilter) ([]models.IncomingLetter, *models.Pagination, error) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		idx := len(args)
		conditions = append(conditions, fmt.Sprintf("(letter_number ILIKE $%d OR sender ILIKE $%d OR subject ILIKE $%d)", idx, idx, idx))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM incoming_letters"+where, args...); err != nil {
		return nil, nil, fmt.Errorf("count incoming letters: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 15
	}

	query := `SELECT ` + incomingColumns + ` FROM incoming_letters` + where +
		fmt.Sprintf(" ORDER BY received_date DESC, created_at DESC LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)

	var letters []models.IncomingLetter
	if err := r.db.SelectContext(ctx, &letters, query, args...); err != nil {
		return nil, nil, fmt.Errorf("list incoming letters: %w", err)
	}

	return letters, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Update mutates an incoming letter record.
func (r *IncomingLetterRepository) Update(ctx context.Context, letter *models.IncomingLetter) error {
	letter.UpdatedAt = time.Now().UTC()
	const query = `UPDATE incoming_letters SET
	sender = :sender, subject = :subject, letter_date = :letter_date,
	description = :description, file_path = :file_path, priority = :priority,
	status = :status, updated_at = :updated_at
	WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, letter)
	if err != nil {
		return fmt.Errorf("update incoming letter: %w", err)
	}
	return requireAffected(res)
}

// Delete removes an incoming letter record.
func (r *IncomingLetterRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incoming_letters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete incoming letter: %w", err)
	}
	return requireAffected(res)
}

// Count returns the total number of incoming letters.
func (r *IncomingLetterRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM incoming_letters`); err != nil {
		return 0, fmt.Errorf("count incoming letters: %w", err)
	}
	return count, nil
}

// Recent returns the newest incoming letters for dashboard display.
func (r *IncomingLetterRepository) Recent(ctx context.Context, limit int) ([]models.IncomingLetter, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `SELECT ` + incomingColumns + ` FROM incoming_letters ORDER BY created_at DESC LIMIT $1`
	var letters []models.IncomingLetter
	if err := r.db.SelectContext(ctx, &letters, query, limit); err != nil {
		return nil, fmt.Errorf("recent incoming letters: %w", err)
	}
	return letters, nil
}
