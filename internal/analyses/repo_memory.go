package analyses

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu        sync.RWMutex
	analyses  []Analysis
	keywords  []KeywordEntry
	nextID    int64
	nextKwID  int64
	now       func() time.Time
	failAfter int
	closed    bool
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{now: time.Now, failAfter: -1}
}

// FailKeywordInsertsAfter makes SaveAnalysis fail once n keyword rows of a
// call were written. A negative n disables the failure.
func (r *MemoryRepo) FailKeywordInsertsAfter(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failAfter = n
}

// SaveAnalysis stores the analysis and its keywords.
func (r *MemoryRepo) SaveAnalysis(ctx context.Context, analysis Analysis, keywords []KeywordEntry) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, storageErr(opInsertAnalysis, errors.New("store closed"))
	}

	r.nextID++
	analysis.ID = r.nextID
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = r.now().UTC()
	}
	r.analyses = append(r.analyses, analysis)

	for i, k := range keywords {
		if r.failAfter >= 0 && i >= r.failAfter {
			return 0, storageErr(opInsertKeyword, errors.New("keyword insert failed"))
		}
		r.nextKwID++
		k.ID = r.nextKwID
		k.ResumeID = analysis.ID
		k.JobID = analysis.ID
		r.keywords = append(r.keywords, k)
	}
	return analysis.ID, nil
}

// ListHistory returns analyses for a user, newest first.
func (r *MemoryRepo) ListHistory(ctx context.Context, userID string) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []Analysis{}
	for _, a := range r.analyses {
		if a.UserID != "" && a.UserID == userID {
			out = append(out, a)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// GetAnalysisDetail returns keywords for an analysis in insertion order.
func (r *MemoryRepo) GetAnalysisDetail(ctx context.Context, analysisID int64) ([]KeywordEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []KeywordEntry{}
	for _, k := range r.keywords {
		if k.ResumeID == analysisID || k.JobID == analysisID {
			out = append(out, k)
		}
	}
	return out, nil
}

// Counts reports stored analyses and keyword rows.
func (r *MemoryRepo) Counts() (analyses, keywords int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.analyses), len(r.keywords)
}

func (r *MemoryRepo) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return errors.New("store closed")
	}
	return ctx.Err()
}

func (r *MemoryRepo) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
