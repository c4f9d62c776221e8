package analyses

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"keyword-history/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/saveAnalysis", h.saveAnalysis)
	rg.GET("/history/:userId", h.listHistory)
	rg.GET("/analysis/:id", h.getAnalysis)
}

type saveAnalysisRequest struct {
	UserID         string   `json:"userId"`
	ResumeName     string   `json:"resumeName"`
	JobTitle       string   `json:"jobTitle"`
	Thumbnail      string   `json:"thumbnail"`
	Matched        []*string `json:"matched"`
	Missing        []*string `json:"missing"`
	ResumeKeywords []*string `json:"resumeKeywords"`
}

// keywordList flattens a decoded keyword list, reporting false when any entry
// was JSON null.
func keywordList(in []*string) ([]string, bool) {
	out := make([]string, 0, len(in))
	for _, k := range in {
		if k == nil {
			return nil, false
		}
		out = append(out, *k)
	}
	return out, true
}

type historyItem struct {
	ID         int64     `json:"id"`
	ResumeName string    `json:"resume_name"`
	JobTitle   *string   `json:"job_title"`
	Thumbnail  *string   `json:"thumbnail"`
	CreatedAt  time.Time `json:"created_at"`
}

type keywordItem struct {
	ID              int64  `json:"id"`
	Keyword         string `json:"keyword"`
	PresentInResume int    `json:"present_in_resume"`
	PresentInJob    int    `json:"present_in_job"`
}

func (h *Handler) saveAnalysis(c *gin.Context) {
	var req saveAnalysisRequest
	// An empty body is treated like {} so the missing field is reported.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(c, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request body")
		return
	}
	if req.UserID != "" {
		c.Set("userId", req.UserID)
	}
	resumeKeywords, ok1 := keywordList(req.ResumeKeywords)
	matched, ok2 := keywordList(req.Matched)
	missing, ok3 := keywordList(req.Missing)
	if !ok1 || !ok2 || !ok3 {
		respond.Error(c, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request body")
		return
	}

	id, err := h.Svc.SaveAnalysis(c.Request.Context(), SaveInput{
		UserID:         req.UserID,
		ResumeName:     req.ResumeName,
		JobTitle:       req.JobTitle,
		Thumbnail:      req.Thumbnail,
		ResumeKeywords: resumeKeywords,
		Matched:        matched,
		Missing:        missing,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Set("analysisId", id)
	respond.JSON(c, http.StatusOK, gin.H{
		"status":     "ok",
		"analysisId": id,
	})
}

func (h *Handler) listHistory(c *gin.Context) {
	userID := c.Param("userId")
	c.Set("userId", userID)

	rows, err := h.Svc.ListHistory(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]historyItem, 0, len(rows))
	for _, a := range rows {
		resp = append(resp, historyItem{
			ID:         a.ID,
			ResumeName: a.ResumeName,
			JobTitle:   optional(a.JobTitle),
			Thumbnail:  optional(a.Thumbnail),
			CreatedAt:  a.CreatedAt,
		})
	}
	respond.List(c, resp)
}

func (h *Handler) getAnalysis(c *gin.Context) {
	raw := c.Param("id")
	// Ids are integers; anything else cannot match a row.
	analysisID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respond.List(c, []keywordItem{})
		return
	}
	c.Set("analysisId", analysisID)

	rows, err := h.Svc.GetAnalysisDetail(c.Request.Context(), analysisID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]keywordItem, 0, len(rows))
	for _, k := range rows {
		resp = append(resp, keywordItem{
			ID:              k.ID,
			Keyword:         k.Keyword,
			PresentInResume: boolToInt(k.PresentInResume),
			PresentInJob:    boolToInt(k.PresentInJob),
		})
	}
	respond.List(c, resp)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, ve.Error())
	default:
		respond.Error(c, http.StatusInternalServerError, ErrorCodeStorage, err.Error())
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
