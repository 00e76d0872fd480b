package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/arsipkita/esurat-api/internal/models"
)

func incomingRows(id string) *sqlmock.Rows {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "letter_number", "sender", "subject", "received_date", "letter_date",
		"description", "file_path", "priority", "status", "received_by", "created_at", "updated_at",
	}).AddRow(id, "001/EXT/2025", "Dinas Sosial", "Undangan rapat", now, now,
		nil, nil, "normal", "received", "user-1", now, now)
}

func TestIncomingLetterRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewIncomingLetterRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO incoming_letters")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	letter := &models.IncomingLetter{
		LetterNumber: "001/EXT/2025",
		Sender:       "Dinas Sosial",
		Subject:      "Undangan rapat",
		ReceivedDate: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		LetterDate:   time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC),
		Priority:     models.PriorityNormal,
		Status:       models.IncomingReceived,
		ReceivedBy:   "user-1",
	}
	require.NoError(t, repo.Create(context.Background(), letter))
	require.NotEmpty(t, letter.ID)
	require.False(t, letter.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomingLetterRepositoryList(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewIncomingLetterRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM incoming_letters WHERE")).
		WithArgs("%rapat%", "received").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT .+ FROM incoming_letters WHERE .+ ORDER BY received_date DESC").
		WithArgs("%rapat%", "received").
		WillReturnRows(incomingRows("in-1"))

	letters, pagination, err := repo.List(context.Background(), models.IncomingLetterFilter{
		Search: "rapat",
		Status: models.IncomingReceived,
		Page:   1,
	})
	require.NoError(t, err)
	require.Len(t, letters, 1)
	require.Equal(t, "001/EXT/2025", letters[0].LetterNumber)
	require.Equal(t, 1, pagination.TotalCount)
	require.Equal(t, 15, pagination.PageSize)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomingLetterRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewIncomingLetterRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE incoming_letters SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.IncomingLetter{ID: "ghost"})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomingLetterRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewIncomingLetterRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM incoming_letters WHERE id = $1")).
		WithArgs("in-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "in-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
