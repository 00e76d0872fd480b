package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/arsipkita/esurat-api/internal/models"
)

func newOutgoingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestFormatLetterNumber(t *testing.T) {
	march := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	require.Equal(t, "SK-007/03/2025", FormatLetterNumber("SK", 7, march))
	require.Equal(t, "SR-123/11/2024", FormatLetterNumber("SR", 123, time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)))
}

func TestOutgoingLetterRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewOutgoingLetterRepository(db)
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO letter_counters")).
		WithArgs("type-1", 2025).
		WillReturnRows(sqlmock.NewRows([]string{"last_seq"}).AddRow(7))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outgoing_letters")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	letter := &models.OutgoingLetter{
		LetterTypeID: "type-1",
		Recipient:    "Dinas Pendidikan",
		Subject:      "Permohonan data",
		Content:      "Dengan hormat",
		LetterDate:   now,
		Priority:     models.PriorityNormal,
		Status:       models.StatusDraft,
		CreatedBy:    "user-1",
	}
	require.NoError(t, repo.Create(context.Background(), letter, "SK", now))
	require.Equal(t, "SK-007/03/2025", letter.LetterNumber)
	require.NotEmpty(t, letter.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutgoingLetterRepositoryCreateUniqueViolation(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewOutgoingLetterRepository(db)
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO letter_counters")).
		WillReturnRows(sqlmock.NewRows([]string{"last_seq"}).AddRow(7))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outgoing_letters")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	letter := &models.OutgoingLetter{LetterTypeID: "type-1", Status: models.StatusDraft}
	err := repo.Create(context.Background(), letter, "SK", now)
	require.Error(t, err)
	require.True(t, IsUniqueViolation(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutgoingLetterRepositoryTransitions(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewOutgoingLetterRepository(db)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outgoing_letters SET status = 'pending_secretary'")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Submit(context.Background(), "letter-1", now))

	mock.ExpectExec(regexp.QuoteMeta("secretary_signed_by")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SignSecretary(context.Background(), "letter-1", "sec-1", now))

	mock.ExpectExec(regexp.QuoteMeta("chairman_signed_by")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SignChairman(context.Background(), "letter-1", "chm-1", "token", now))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutgoingLetterRepositoryTransitionGuard(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewOutgoingLetterRepository(db)

	// Status no longer matches the guard: zero rows affected.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE outgoing_letters SET status = 'pending_secretary'")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Submit(context.Background(), "letter-1", time.Now())
	require.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outgoing_letters SET status = 'rejected'")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.Reject(context.Background(), "letter-1", "incomplete", models.StatusPendingSecretary, time.Now())
	require.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutgoingLetterRepositoryFindByQRCode(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewOutgoingLetterRepository(db)
	now := time.Now()
	secName := "Siti"
	chmName := "Budi"

	rows := sqlmock.NewRows([]string{
		"id", "letter_number", "subject", "recipient", "content", "letter_date", "status",
		"letter_type_name", "secretary_name", "secretary_signed_at",
		"chairman_name", "chairman_signed_at", "qr_code",
	}).AddRow("letter-1", "SK-007/03/2025", "Permohonan", "Dinas", "Isi", now, "signed",
		"Surat Keputusan", secName, now, chmName, now, "token-abc")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE ol.qr_code = $1 AND ol.status = 'signed'")).
		WithArgs("token-abc").
		WillReturnRows(rows)

	record, err := repo.FindByQRCode(context.Background(), "token-abc")
	require.NoError(t, err)
	require.Equal(t, "SK-007/03/2025", record.LetterNumber)
	require.Equal(t, &chmName, record.ChairmanName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutgoingLetterRepositoryList(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewOutgoingLetterRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM outgoing_letters")).
		WithArgs("%dinas%", "pending_chairman").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{"id", "letter_number", "letter_type_id", "recipient", "subject", "content", "letter_date", "priority", "status", "created_by", "created_at", "updated_at"}).
		AddRow("letter-1", "ST-001/01/2025", "type-1", "Dinas", "Tugas", "Isi", now, "normal", "pending_chairman", "user-1", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM outgoing_letters")).
		WithArgs("%dinas%", "pending_chairman").
		WillReturnRows(rows)

	letters, pagination, err := repo.List(context.Background(), models.OutgoingLetterFilter{
		Search: "dinas",
		Status: models.StatusPendingChairman,
		Page:   1,
	})
	require.NoError(t, err)
	require.Len(t, letters, 1)
	require.Equal(t, 1, pagination.TotalCount)
	require.NoError(t, mock.ExpectationsWereMet())
}
