package analyses

import (
	"context"
	"database/sql"
	"time"

	"keyword-history/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
// When Atomic is set, SaveAnalysis runs in one transaction.
type PGRepo struct {
	DB     *sql.DB
	Atomic bool
}

// SaveAnalysis inserts the analysis row and its keywords.
func (r *PGRepo) SaveAnalysis(ctx context.Context, analysis Analysis, keywords []KeywordEntry) (int64, error) {
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now().UTC()
	}
	if !r.Atomic {
		return savePG(ctx, r.DB, analysis, keywords)
	}
	var id int64
	err := db.WithTx(ctx, r.DB, nil, func(ctx context.Context, tx db.DBTX) error {
		var err error
		id, err = savePG(ctx, tx, analysis, keywords)
		return err
	})
	if err != nil {
		return 0, storageErr(opInsertAnalysis, err)
	}
	return id, nil
}

func savePG(ctx context.Context, q db.DBTX, analysis Analysis, keywords []KeywordEntry) (int64, error) {
	const insertAnalysis = `
INSERT INTO analyses (user_id, resume_name, job_title, thumbnail, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	const insertKeyword = `
INSERT INTO keywords (keyword, resume_id, job_id, present_in_resume, present_in_job)
VALUES ($1, $2, $3, $4, $5)`

	var id int64
	err := q.QueryRowContext(ctx, insertAnalysis,
		nullableString(analysis.UserID),
		analysis.ResumeName,
		nullableString(analysis.JobTitle),
		nullableString(analysis.Thumbnail),
		analysis.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, storageErr(opInsertAnalysis, err)
	}

	for _, k := range keywords {
		if _, err := q.ExecContext(ctx, insertKeyword, k.Keyword, id, id, k.PresentInResume, k.PresentInJob); err != nil {
			return 0, storageErr(opInsertKeyword, err)
		}
	}
	return id, nil
}

// ListHistory returns analyses for the user, newest first.
func (r *PGRepo) ListHistory(ctx context.Context, userID string) ([]Analysis, error) {
	const query = `
SELECT id, user_id, resume_name, job_title, thumbnail, created_at
FROM analyses
WHERE user_id = $1
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
func (r *PGRepo) GetAnalysisDetail(ctx context.Context, analysisID int64) ([]KeywordEntry, error) {
	const query = `
SELECT id, keyword, resume_id, job_id, present_in_resume, present_in_job
FROM keywords
WHERE resume_id = $1 OR job_id = $2
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

// Ping checks the database connection.
func (r *PGRepo) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

// Close releases the connection pool.
func (r *PGRepo) Close() error {
	return r.DB.Close()
}
