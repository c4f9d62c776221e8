package analyses

import "context"

// Repo defines persistence operations for analyses and their keywords.
// Implementations own their storage handle and release it in Close.
type Repo interface {
	// SaveAnalysis inserts the analysis and then one row per keyword, all
	// referencing the generated id, which is returned.
	SaveAnalysis(ctx context.Context, analysis Analysis, keywords []KeywordEntry) (int64, error)
	// ListHistory returns analyses with exactly this user id, newest first.
	ListHistory(ctx context.Context, userID string) ([]Analysis, error)
	// GetAnalysisDetail returns keywords linked to the id, in insertion order.
	GetAnalysisDetail(ctx context.Context, analysisID int64) ([]KeywordEntry, error)
	Ping(ctx context.Context) error
	Close() error
}
