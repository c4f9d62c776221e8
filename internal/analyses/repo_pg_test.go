package analyses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPGMock(t *testing.T, atomic bool) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return &PGRepo{DB: sqlDB, Atomic: atomic}, mock
}

func TestPGRepoSaveUsesReturningID(t *testing.T) {
	repo, mock := newPGMock(t, false)
	created := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO analyses .* RETURNING id`).
		WithArgs("u1", "cv.pdf", "Backend", nil, created).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectExec(`INSERT INTO keywords`).
		WithArgs("go", int64(42), int64(42), true, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO keywords`).
		WithArgs("go", int64(42), int64(42), true, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.SaveAnalysis(context.Background(),
		Analysis{UserID: "u1", ResumeName: "cv.pdf", JobTitle: "Backend", CreatedAt: created},
		BuildKeywordEntries([]string{"go"}, []string{"go"}, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoPartialFailureLeavesAnalysis(t *testing.T) {
	repo, mock := newPGMock(t, false)

	mock.ExpectQuery(`INSERT INTO analyses`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectExec(`INSERT INTO keywords`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.SaveAnalysis(context.Background(),
		Analysis{UserID: "u1", ResumeName: "cv.pdf"},
		BuildKeywordEntries(nil, nil, []string{"rust"}))
	require.Error(t, err)
	assert.Equal(t, "connection reset", err.Error())

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, opInsertKeyword, se.Op)
	// No transaction was opened, so nothing is rolled back.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoAtomicSaveRollsBack(t *testing.T) {
	repo, mock := newPGMock(t, true)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO analyses`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectExec(`INSERT INTO keywords`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.SaveAnalysis(context.Background(),
		Analysis{UserID: "u1", ResumeName: "cv.pdf"},
		BuildKeywordEntries([]string{"go"}, nil, nil))
	require.ErrorIs(t, err, ErrStorage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoAtomicSaveCommits(t *testing.T) {
	repo, mock := newPGMock(t, true)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO analyses`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectCommit()

	id, err := repo.SaveAnalysis(context.Background(), Analysis{ResumeName: "cv.pdf"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoListHistory(t *testing.T) {
	repo, mock := newPGMock(t, false)
	newer := time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)
	older := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, user_id, resume_name, job_title, thumbnail, created_at FROM analyses WHERE user_id = \$1 ORDER BY created_at DESC, id DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "resume_name", "job_title", "thumbnail", "created_at"}).
			AddRow(int64(2), "u1", "b.pdf", nil, "thumb.png", newer).
			AddRow(int64(1), "u1", "a.pdf", "Backend", nil, older))

	history, err := repo.ListHistory(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(2), history[0].ID)
	assert.Empty(t, history[0].JobTitle)
	assert.Equal(t, "thumb.png", history[0].Thumbnail)
	assert.True(t, history[0].CreatedAt.Equal(newer))
	assert.Equal(t, "Backend", history[1].JobTitle)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoDetailMatchesEitherReference(t *testing.T) {
	repo, mock := newPGMock(t, false)

	mock.ExpectQuery(`FROM keywords WHERE resume_id = \$1 OR job_id = \$2 ORDER BY id ASC`).
		WithArgs(int64(5), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "keyword", "resume_id", "job_id", "present_in_resume", "present_in_job"}).
			AddRow(int64(10), "go", int64(5), int64(5), true, false).
			AddRow(int64(11), "rust", int64(5), int64(5), false, true))

	rows, err := repo.GetAnalysisDetail(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "go", rows[0].Keyword)
	assert.True(t, rows[0].PresentInResume)
	assert.False(t, rows[0].PresentInJob)
	assert.True(t, rows[1].PresentInJob)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoQueryErrorIsStorageError(t *testing.T) {
	repo, mock := newPGMock(t, false)

	mock.ExpectQuery(`FROM analyses`).WillReturnError(errors.New("relation \"analyses\" does not exist"))

	_, err := repo.ListHistory(context.Background(), "u1")
	require.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, `relation "analyses" does not exist`, err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}
