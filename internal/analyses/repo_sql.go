package analyses

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const (
	opInsertAnalysis = "insert analysis"
	opInsertKeyword  = "insert keyword"
	opListHistory    = "list history"
	opAnalysisDetail = "analysis detail"
)

// sqliteTimeLayout sorts lexically in the same order as time.
const sqliteTimeLayout = "2006-01-02 15:04:05.000"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

func scanHistory(rows *sql.Rows) ([]Analysis, error) {
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		var a Analysis
		var userID, resumeName, jobTitle, thumbnail, createdAt sql.NullString
		if err := rows.Scan(&a.ID, &userID, &resumeName, &jobTitle, &thumbnail, &createdAt); err != nil {
			return nil, err
		}
		a.UserID = userID.String
		a.ResumeName = resumeName.String
		a.JobTitle = jobTitle.String
		a.Thumbnail = thumbnail.String
		if createdAt.Valid {
			ts, err := parseTimestamp(createdAt.String)
			if err != nil {
				return nil, err
			}
			a.CreatedAt = ts
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanKeywords(rows *sql.Rows) ([]KeywordEntry, error) {
	defer rows.Close()

	out := []KeywordEntry{}
	for rows.Next() {
		var k KeywordEntry
		var keyword sql.NullString
		var resumeID, jobID sql.NullInt64
		var inResume, inJob sql.NullBool
		if err := rows.Scan(&k.ID, &keyword, &resumeID, &jobID, &inResume, &inJob); err != nil {
			return nil, err
		}
		k.Keyword = keyword.String
		k.ResumeID = resumeID.Int64
		k.JobID = jobID.Int64
		k.PresentInResume = inResume.Bool
		k.PresentInJob = inJob.Bool
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseTimestamp accepts what either driver hands back for created_at:
// RFC 3339 when the driver decoded a time, or the stored SQLite text.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse created_at %q", raw)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
