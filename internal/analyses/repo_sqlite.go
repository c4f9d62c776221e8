package analyses

import (
	"context"
	"database/sql"
	"time"

	"keyword-history/internal/shared/storage/db"
)

// SQLiteRepo implements Repo on a single SQLite file.
// When Atomic is set, SaveAnalysis runs in one transaction.
type SQLiteRepo struct {
	DB     *sql.DB
	Atomic bool
	now    func() time.Time
}

// NewSQLiteRepo constructs a SQLiteRepo that owns database.
func NewSQLiteRepo(database *sql.DB, atomic bool) *SQLiteRepo {
	return &SQLiteRepo{DB: database, Atomic: atomic, now: time.Now}
}

// SaveAnalysis inserts the analysis row and its keywords.
func (r *SQLiteRepo) SaveAnalysis(ctx context.Context, analysis Analysis, keywords []KeywordEntry) (int64, error) {
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = r.nowUTC()
	}
	if !r.Atomic {
		return saveSQLite(ctx, r.DB, analysis, keywords)
	}
	var id int64
	err := db.WithTx(ctx, r.DB, nil, func(ctx context.Context, tx db.DBTX) error {
		var err error
		id, err = saveSQLite(ctx, tx, analysis, keywords)
		return err
	})
	if err != nil {
		return 0, storageErr(opInsertAnalysis, err)
	}
	return id, nil
}

func saveSQLite(ctx context.Context, q db.DBTX, analysis Analysis, keywords []KeywordEntry) (int64, error) {
	const insertAnalysis = `
INSERT INTO analyses (user_id, resume_name, job_title, thumbnail, created_at)
VALUES (?, ?, ?, ?, ?)`
	const insertKeyword = `
INSERT INTO keywords (keyword, resume_id, job_id, present_in_resume, present_in_job)
VALUES (?, ?, ?, ?, ?)`

	res, err := q.ExecContext(ctx, insertAnalysis,
		nullableString(analysis.UserID),
		analysis.ResumeName,
		nullableString(analysis.JobTitle),
		nullableString(analysis.Thumbnail),
		analysis.CreatedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return 0, storageErr(opInsertAnalysis, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr(opInsertAnalysis, err)
	}

	for _, k := range keywords {
		if _, err := q.ExecContext(ctx, insertKeyword, k.Keyword, id, id, boolToInt(k.PresentInResume), boolToInt(k.PresentInJob)); err != nil {
			return 0, storageErr(opInsertKeyword, err)
		}
	}
	return id, nil
}

// ListHistory returns analyses for the user, newest first.
func (r *SQLiteRepo) ListHistory(ctx context.Context, userID string) ([]Analysis, error) {
	const query = `
SELECT id, user_id, resume_name, job_title, thumbnail, created_at
FROM analyses
WHERE user_id = ?
ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, storageErr(opListHistory, err)
	}
	out, err := scanHistory(rows)
	if err != nil {
		return nil, storageErr(opListHistory, err)
	}
	return out, nil
}

// GetAnalysisDetail returns keywords referencing the analysis in id order.
func (r *SQLiteRepo) GetAnalysisDetail(ctx context.Context, analysisID int64) ([]KeywordEntry, error) {
	const query = `
SELECT id, keyword, resume_id, job_id, present_in_resume, present_in_job
FROM keywords
WHERE resume_id = ? OR job_id = ?
ORDER BY id ASC`
	rows, err := r.DB.QueryContext(ctx, query, analysisID, analysisID)
	if err != nil {
		return nil, storageErr(opAnalysisDetail, err)
	}
	out, err := scanKeywords(rows)
	if err != nil {
		return nil, storageErr(opAnalysisDetail, err)
	}
	return out, nil
}

// Ping checks the storage file is reachable.
func (r *SQLiteRepo) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

// Close releases the storage handle.
func (r *SQLiteRepo) Close() error {
	return r.DB.Close()
}

func (r *SQLiteRepo) nowUTC() time.Time {
	if r.now == nil {
		return time.Now().UTC()
	}
	return r.now().UTC()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
