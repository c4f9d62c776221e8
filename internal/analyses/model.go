package analyses

import "time"

// Analysis is one saved resume-vs-job comparison. Empty optional strings are
// persisted as NULL.
type Analysis struct {
	ID         int64
	UserID     string
	ResumeName string
	JobTitle   string
	Thumbnail  string
	CreatedAt  time.Time
}

// KeywordEntry is one keyword's presence flags tied to an analysis.
// ResumeID and JobID always carry the owning analysis id.
type KeywordEntry struct {
	ID              int64
	Keyword         string
	ResumeID        int64
	JobID           int64
	PresentInResume bool
	PresentInJob    bool
}

// SaveInput is the payload accepted by Service.SaveAnalysis.
type SaveInput struct {
	UserID         string
	ResumeName     string `validate:"required"`
	JobTitle       string
	Thumbnail      string
	ResumeKeywords []string
	Matched        []string
	Missing        []string
}

// BuildKeywordEntries expands the three keyword categories into rows in
// insertion order: resume keywords, then matched, then missing. Duplicates
// are kept.
func BuildKeywordEntries(resumeKeywords, matched, missing []string) []KeywordEntry {
	out := make([]KeywordEntry, 0, len(resumeKeywords)+len(matched)+len(missing))
	for _, k := range resumeKeywords {
		out = append(out, KeywordEntry{Keyword: k, PresentInResume: true})
	}
	for _, k := range matched {
		out = append(out, KeywordEntry{Keyword: k, PresentInResume: true, PresentInJob: true})
	}
	for _, k := range missing {
		out = append(out, KeywordEntry{Keyword: k, PresentInJob: true})
	}
	return out
}
