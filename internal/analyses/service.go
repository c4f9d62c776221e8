package analyses

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"keyword-history/internal/shared/telemetry"
)

// Recorder receives store outcomes for metrics.
type Recorder interface {
	AnalysisSaved(keywords int)
	StoreFailed(op string)
}

type nopRecorder struct{}

func (nopRecorder) AnalysisSaved(int)  {}
func (nopRecorder) StoreFailed(string) {}

// Service is the record store entry point used by handlers.
type Service struct {
	Repo     Repo
	Metrics  Recorder
	validate *validator.Validate
}

// NewService constructs a Service around repo.
func NewService(repo Repo, metrics Recorder) *Service {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Service{
		Repo:     repo,
		Metrics:  metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// SaveAnalysis validates the input, writes the analysis and its keyword rows,
// and returns the generated analysis id. A keyword failure after the analysis
// row was written is reported as an error; rows already written stay unless
// the repository is atomic. Store calls run detached from ctx cancellation so
// a disconnecting client cannot stop a keyword batch halfway.
func (s *Service) SaveAnalysis(ctx context.Context, in SaveInput) (int64, error) {
	if err := s.validateInput(in); err != nil {
		return 0, err
	}
	if s.Repo == nil {
		return 0, errors.New("analyses repository not configured")
	}

	keywords := BuildKeywordEntries(in.ResumeKeywords, in.Matched, in.Missing)
	analysis := Analysis{
		UserID:     in.UserID,
		ResumeName: in.ResumeName,
		JobTitle:   in.JobTitle,
		Thumbnail:  in.Thumbnail,
	}

	id, err := s.Repo.SaveAnalysis(context.WithoutCancel(ctx), analysis, keywords)
	if err != nil {
		s.recordFailure("analysis.save_failed", err, map[string]any{"user_id": in.UserID})
		return 0, err
	}

	s.recorder().AnalysisSaved(len(keywords))
	telemetry.Info("analysis.saved", map[string]any{
		"analysis_id": id,
		"user_id":     in.UserID,
		"keywords":    len(keywords),
	})
	return id, nil
}

// ListHistory returns the user's analyses, newest first.
func (s *Service) ListHistory(ctx context.Context, userID string) ([]Analysis, error) {
	if s.Repo == nil {
		return nil, errors.New("analyses repository not configured")
	}
	out, err := s.Repo.ListHistory(context.WithoutCancel(ctx), userID)
	if err != nil {
		s.recordFailure("history.list_failed", err, map[string]any{"user_id": userID})
		return nil, err
	}
	return out, nil
}

// GetAnalysisDetail returns the keyword rows for an analysis.
func (s *Service) GetAnalysisDetail(ctx context.Context, analysisID int64) ([]KeywordEntry, error) {
	if s.Repo == nil {
		return nil, errors.New("analyses repository not configured")
	}
	out, err := s.Repo.GetAnalysisDetail(context.WithoutCancel(ctx), analysisID)
	if err != nil {
		s.recordFailure("analysis.detail_failed", err, map[string]any{"analysis_id": analysisID})
		return nil, err
	}
	return out, nil
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if s.Repo == nil {
		return errors.New("analyses repository not configured")
	}
	return s.Repo.Ping(ctx)
}

func (s *Service) validateInput(in SaveInput) error {
	v := s.validate
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ValidationError{Field: lowerFirst(fieldErrs[0].StructField())}
	}
	return err
}

func (s *Service) recordFailure(msg string, err error, fields map[string]any) {
	op := "unknown"
	var se *StorageError
	if errors.As(err, &se) {
		op = se.Op
	}
	s.recorder().StoreFailed(op)
	fields["op"] = op
	fields["error"] = err.Error()
	telemetry.Error(msg, fields)
}

func (s *Service) recorder() Recorder {
	if s.Metrics == nil {
		return nopRecorder{}
	}
	return s.Metrics
}

func lowerFirst(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}
