// ABOUTME: HTTP JSON handlers for analysis, questions, search, session state and downloads
// ABOUTME: Errors are returned as {"error": ...} with a 4xx/5xx status
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/harper/newsclip/internal/core"
	"github.com/harper/newsclip/internal/models"
	"github.com/harper/newsclip/internal/search"
	"github.com/harper/newsclip/internal/session"
	"github.com/harper/newsclip/internal/storage"
	"github.com/harper/newsclip/internal/storage/sqlite"
	"github.com/harper/newsclip/internal/youtube"
)

const maxBodyBytes = 1 << 20

// Analyzer runs the full pipeline
type Analyzer interface {
	Run(ctx context.Context, sess *session.Session, url string) (*models.Analysis, error)
}

// Asker answers questions over an index
type Asker interface {
	Ask(ctx context.Context, idx *storage.VectorIndex, question string) (models.Answer, error)
}

// HistoryLister reads the analysis log
type HistoryLister interface {
	ListAnalyses(limit int) ([]sqlite.AnalysisRecord, error)
}

// downloads maps URL file names to session artifact kinds
var downloads = map[string]string{
	"transcript.txt": "transcript",
	"summary.txt":    "summary",
	"highlights.md":  "highlights",
}

// Handlers serves the HTTP API over one session
type Handlers struct {
	analyzer Analyzer
	asker    Asker
	searcher core.WebSearcher
	sess     *session.Session
	history  HistoryLister

	running sync.Mutex // one analysis at a time
}

// NewHandlers creates Handlers. history may be nil.
func NewHandlers(analyzer Analyzer, asker Asker, searcher core.WebSearcher, sess *session.Session, history HistoryLister) *Handlers {
	return &Handlers{
		analyzer: analyzer,
		asker:    asker,
		searcher: searcher,
		sess:     sess,
		history:  history,
	}
}

type analyzeRequest struct {
	URL string `json:"url"`
}

// HandleAnalyze runs the pipeline on a video
func (h *Handlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing field 'url'"})
		return
	}

	if !h.running.TryLock() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "an analysis is already running"})
		return
	}
	defer h.running.Unlock()

	analysis, err := h.analyzer.Run(r.Context(), h.sess, req.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         analysis.ID,
		"title":      analysis.Transcript.Title,
		"summary":    analysis.Summary,
		"highlights": analysis.Highlights,
		"steps":      analysis.Steps,
	})
}

type askRequest struct {
	Question string `json:"question"`
}

// HandleAsk answers a question about the current video
func (h *Handlers) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing field 'question'"})
		return
	}

	_, _ = h.sess.AddMessage(models.RoleUser, question)
	answer, err := h.asker.Ask(r.Context(), h.sess.Index(), question)
	if err != nil {
		h.sess.AddError(err)
		writeError(w, err)
		return
	}
	_, _ = h.sess.AddMessage(models.RoleAssistant, answer.Render())

	writeJSON(w, http.StatusOK, map[string]any{
		"question": question,
		"answer":   answer.Render(),
		"no_index": answer.NoIndex,
		"sources":  answer.Sources,
	})
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

// HandleSearch runs a web search
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.searcher.Search(r.Context(), req.Query, req.MaxResults)
	if err != nil {
		writeError(w, err)
		return
	}

	items := res.Items
	if items == nil {
		items = []models.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":     res.Query,
		"results":   items,
		"total":     len(items),
		"cached":    res.Cached,
		"formatted": res.Format(),
	})
}

// HandleSession returns the session snapshot
func (h *Handlers) HandleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.Snapshot())
}

// HandleHistory lists recorded analyses
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	records := []sqlite.AnalysisRecord{}
	if h.history != nil {
		var err error
		records, err = h.history.ListAnalyses(limit)
		if err != nil {
			slog.Error("list analyses", slog.Any("error", err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list analyses"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"analyses": records,
		"total":    len(records),
	})
}

// HandleDownload serves one artifact of the current session as a file
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	kind, ok := downloads[r.PathValue("file")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown file"})
		return
	}

	name, content, ok := h.sess.Artifact(kind)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no " + kind + " available yet"})
		return
	}

	contentType := "text/plain; charset=utf-8"
	if strings.HasSuffix(name, ".md") {
		contentType = "text/markdown; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write([]byte(content))
}

// HandleHealth reports liveness
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

// writeError maps domain errors to status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := map[string]string{"error": err.Error()}

	var stageErr *core.StageError
	switch {
	case errors.Is(err, youtube.ErrInvalidURL),
		errors.Is(err, search.ErrEmptyQuery),
		errors.Is(err, core.ErrEmptyQuestion):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrAudioTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusBadGateway
	}
	if errors.As(err, &stageErr) {
		body["stage"] = stageErr.Stage
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", slog.Int("status", status), slog.Any("error", err))
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
