package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/arsipkita/esurat-api/internal/models"
)

const outgoingColumns = `id, letter_number, letter_type_id, template_id, recipient, subject, content,
       template_data, letter_date, priority, status, rejection_reason, created_by,
       secretary_signed_by, secretary_signed_at, chairman_signed_by, chairman_signed_at,
       qr_code, pdf_path, created_at, updated_at`

// OutgoingLetterRepository handles outgoing letter persistence, including the
// per-type/per-year sequence counter and the guarded status transitions.
type OutgoingLetterRepository struct {
	db *sqlx.DB
}

// NewOutgoingLetterRepository constructs the repository.
func NewOutgoingLetterRepository(db *sqlx.DB) *OutgoingLetterRepository {
	return &OutgoingLetterRepository{db: db}
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint error.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// Create allocates the next sequence for (letter_type_id, year), formats the
// letter number and inserts the record, all within one transaction. The
// counter upsert serialises concurrent allocations for the same type and
// year; a lingering unique violation (e.g. racing a legacy writer) is
// surfaced to the caller for retry.
func (r *OutgoingLetterRepository) Create(ctx context.Context, letter *models.OutgoingLetter, typeCode string, now time.Time) error {
	if letter.ID == "" {
		letter.ID = uuid.NewString()
	}
	if letter.CreatedAt.IsZero() {
		letter.CreatedAt = now.UTC()
	}
	letter.UpdatedAt = letter.CreatedAt

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create letter: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const counterQuery = `INSERT INTO letter_counters (letter_type_id, year, last_seq)
	VALUES ($1, $2, 1)
	ON CONFLICT (letter_type_id, year)
	DO UPDATE SET last_seq = letter_counters.last_seq + 1
	RETURNING last_seq`

	var seq int
	if err := tx.GetContext(ctx, &seq, counterQuery, letter.LetterTypeID, now.Year()); err != nil {
		return fmt.Errorf("allocate letter sequence: %w", err)
	}

	letter.LetterNumber = FormatLetterNumber(typeCode, seq, now)

	const insertQuery = `INSERT INTO outgoing_letters
	(id, letter_number, letter_type_id, template_id, recipient, subject, content,
	 template_data, letter_date, priority, status, created_by, created_at, updated_at)
	VALUES (:id, :letter_number, :letter_type_id, :template_id, :recipient, :subject, :content,
	 :template_data, :letter_date, :priority, :status, :created_by, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, letter); err != nil {
		return fmt.Errorf("insert outgoing letter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create letter: %w", err)
	}
	return nil
}

// FormatLetterNumber renders the canonical <CODE>-<SEQ:03d>/<MM>/<YYYY> form.
func FormatLetterNumber(typeCode string, seq int, now time.Time) string {
	return fmt.Sprintf("%s-%03d/%02d/%d", typeCode, seq, int(now.Month()), now.Year())
}

// GetByID retrieves one outgoing letter row.
func (r *OutgoingLetterRepository) GetByID(ctx context.Context, id string) (*models.OutgoingLetter, error) {
	query := `SELECT ` + outgoingColumns + ` FROM outgoing_letters WHERE id = $1`
	var letter models.OutgoingLetter
	if err := r.db.GetContext(ctx, &letter, query, id); err != nil {
		return nil, err
	}
	return &letter, nil
}

// List returns outgoing letters applying search, status, type and chairman
// scoping filters, newest first, with pagination metadata.
func (r *OutgoingLetterRepository) List(ctx context.Context, filter models.OutgoingLetterFilter) ([]models.OutgoingLetter, *models.Pagination, error) {
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		idx := len(args)
		conditions = append(conditions, fmt.Sprintf("(letter_number ILIKE $%d OR recipient ILIKE $%d OR subject ILIKE $%d)", idx, idx, idx))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.LetterTypeID != "" {
		args = append(args, filter.LetterTypeID)
		conditions = append(conditions, fmt.Sprintf("letter_type_id = $%d", len(args)))
	}
	if filter.ChairmanID != "" {
		args = append(args, filter.ChairmanID)
		conditions = append(conditions, fmt.Sprintf("(status = 'pending_chairman' OR chairman_signed_by = $%d)", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM outgoing_letters"+where, args...); err != nil {
		return nil, nil, fmt.Errorf("count outgoing letters: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 15
	}

	query := `SELECT ` + outgoingColumns + ` FROM outgoing_letters` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)

	var letters []models.OutgoingLetter
	if err := r.db.SelectContext(ctx, &letters, query, args...); err != nil {
		return nil, nil, fmt.Errorf("list outgoing letters: %w", err)
	}

	return letters, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// UpdateDraft mutates editable fields, guarded on draft status.
func (r *OutgoingLetterRepository) UpdateDraft(ctx context.Context, letter *models.OutgoingLetter) error {
	const query = `UPDATE outgoing_letters SET
	template_id = :template_id, recipient = :recipient, subject = :subject,
	content = :content, template_data = :template_data, letter_date = :letter_date,
	priority = :priority, updated_at = :updated_at
	WHERE id = :id AND status = 'draft'`
	res, err := r.db.NamedExecContext(ctx, query, letter)
	if err != nil {
		return fmt.Errorf("update draft letter: %w", err)
	}
	return requireAffected(res)
}

// DeleteDraft removes a letter, guarded on draft status.
func (r *OutgoingLetterRepository) DeleteDraft(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM outgoing_letters WHERE id = $1 AND status = 'draft'`, id)
	if err != nil {
		return fmt.Errorf("delete draft letter: %w", err)
	}
	return requireAffected(res)
}

// Submit flips draft to pending_secretary. The status guard makes the
// read-modify-write a single compare-and-swap; a concurrent writer loses and
// sees sql.ErrNoRows.
func (r *OutgoingLetterRepository) Submit(ctx context.Context, id string, now time.Time) error {
	const query = `UPDATE outgoing_letters SET status = 'pending_secretary', updated_at = $2
	WHERE id = $1 AND status = 'draft'`
	res, err := r.db.ExecContext(ctx, query, id, now.UTC())
	if err != nil {
		return fmt.Errorf("submit letter: %w", err)
	}
	return requireAffected(res)
}

// SignSecretary records the secretary signature and advances the stage.
func (r *OutgoingLetterRepository) SignSecretary(ctx context.Context, id, actorID string, now time.Time) error {
	const query = `UPDATE outgoing_letters SET
	secretary_signed_by = $2, secretary_signed_at = $3, status = 'pending_chairman', updated_at = $3
	WHERE id = $1 AND status = 'pending_secretary'`
	res, err := r.db.ExecContext(ctx, query, id, actorID, now.UTC())
	if err != nil {
		return fmt.Errorf("secretary sign letter: %w", err)
	}
	return requireAffected(res)
}

// SignChairman finalises the letter. Signature, terminal status and the
// verification token land in one statement so a signed letter can never be
// observed without its token.
func (r *OutgoingLetterRepository) SignChairman(ctx context.Context, id, actorID, qrCode string, now time.Time) error {
	const query = `UPDATE outgoing_letters SET
	chairman_signed_by = $2, chairman_signed_at = $3, status = 'signed', qr_code = $4, updated_at = $3
	WHERE id = $1 AND status = 'pending_chairman'`
	res, err := r.db.ExecContext(ctx, query, id, actorID, now.UTC(), qrCode)
	if err != nil {
		return fmt.Errorf("chairman sign letter: %w", err)
	}
	return requireAffected(res)
}

// Reject moves a pending letter to the rejected terminal state. The expected
// current status keeps the operation a compare-and-swap.
func (r *OutgoingLetterRepository) Reject(ctx context.Context, id, reason string, from models.LetterStatus, now time.Time) error {
	const query = `UPDATE outgoing_letters SET status = 'rejected', rejection_reason = $2, updated_at = $4
	WHERE id = $1 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, id, reason, from, now.UTC())
	if err != nil {
		return fmt.Errorf("reject letter: %w", err)
	}
	return requireAffected(res)
}

// SetPDFPath records the rendered document path for a signed letter.
func (r *OutgoingLetterRepository) SetPDFPath(ctx context.Context, id, path string, now time.Time) error {
	const query = `UPDATE outgoing_letters SET pdf_path = $2, updated_at = $3
	WHERE id = $1 AND status = 'signed'`
	res, err := r.db.ExecContext(ctx, query, id, path, now.UTC())
	if err != nil {
		return fmt.Errorf("set letter pdf path: %w", err)
	}
	return requireAffected(res)
}

// FindByQRCode resolves a verification token to its signed letter, joined
// with letter type and signer names. Only signed letters are visible here.
func (r *OutgoingLetterRepository) FindByQRCode(ctx context.Context, token string) (*models.VerificationRecord, error) {
	const query = `SELECT ol.id, ol.letter_number, ol.subject, ol.recipient, ol.content,
	       ol.letter_date, ol.status, lt.name AS letter_type_name,
	       sec.full_name AS secretary_name, ol.secretary_signed_at,
	       chm.full_name AS chairman_name, ol.chairman_signed_at, ol.qr_code
	FROM outgoing_letters ol
	JOIN letter_types lt ON lt.id = ol.letter_type_id
	LEFT JOIN users sec ON sec.id = ol.secretary_signed_by
	LEFT JOIN users chm ON chm.id = ol.chairman_signed_by
	WHERE ol.qr_code = $1 AND ol.status = 'signed'`
	var record models.VerificationRecord
	if err := r.db.GetContext(ctx, &record, query, token); err != nil {
		return nil, err
	}
	return &record, nil
}

// CountsByStatus aggregates outgoing letters per workflow state.
func (r *OutgoingLetterRepository) CountsByStatus(ctx context.Context) (*models.StatusCounts, error) {
	const query = `SELECT
	COUNT(*) FILTER (WHERE status = 'draft') AS draft,
	COUNT(*) FILTER (WHERE status = 'pending_secretary') AS pending_secretary,
	COUNT(*) FILTER (WHERE status = 'pending_chairman') AS pending_chairman,
	COUNT(*) FILTER (WHERE status = 'signed') AS signed,
	COUNT(*) FILTER (WHERE status = 'rejected') AS rejected
	FROM outgoing_letters`
	var counts models.StatusCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count letters by status: %w", err)
	}
	return &counts, nil
}

// CountSignedBy returns how many letters carry the given chairman signature.
func (r *OutgoingLetterRepository) CountSignedBy(ctx context.Context, chairmanID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM outgoing_letters WHERE chairman_signed_by = $1`, chairmanID); err != nil {
		return 0, fmt.Errorf("count letters signed by chairman: %w", err)
	}
	return count, nil
}

// Recent returns the newest letters for dashboard display.
func (r *OutgoingLetterRepository) Recent(ctx context.Context, limit int) ([]models.OutgoingLetter, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `SELECT ` + outgoingColumns + ` FROM outgoing_letters ORDER BY created_at DESC LIMIT $1`
	var letters []models.OutgoingLetter
	if err := r.db.SelectContext(ctx, &letters, query, limit); err != nil {
		return nil, fmt.Errorf("recent outgoing letters: %w", err)
	}
	return letters, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
