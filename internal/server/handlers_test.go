// ABOUTME: Tests for the HTTP API handlers
// ABOUTME: Uses httptest against the full route table with fake stages

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/harper/newsclip/internal/core"
	"github.com/harper/newsclip/internal/models"
	"github.com/harper/newsclip/internal/search"
	"github.com/harper/newsclip/internal/session"
	"github.com/harper/newsclip/internal/storage"
	"github.com/harper/newsclip/internal/storage/sqlite"
	"github.com/harper/newsclip/internal/youtube"
)

type fakeAnalyzer struct {
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeAnalyzer) Run(ctx context.Context, sess *session.Session, url string) (*models.Analysis, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		sess.AddError(f.err)
		return nil, f.err
	}
	a := &models.Analysis{
		ID:         "analysis_1234abcd",
		URL:        url,
		Transcript: models.Transcript{Title: "Entrevista", Text: "transcrição completa"},
		Summary:    models.Summary{Text: "resumo curto"},
		Highlights: models.Highlights{Text: "## Destaque 1\ntrecho"},
		Steps:      []models.Step{{Name: core.StageTranscribe}},
	}
	sess.Commit(a, nil)
	return a, nil
}

type fakeAsker struct {
	asked []string
}

func (f *fakeAsker) Ask(ctx context.Context, idx *storage.VectorIndex, question string) (models.Answer, error) {
	f.asked = append(f.asked, question)
	if idx.Len() == 0 {
		return models.Answer{Question: question, Text: core.NoIndexMessage, NoIndex: true}, nil
	}
	return models.Answer{Question: question, Text: "resposta"}, nil
}

type fakeSearcher struct {
	err error
}

func (f fakeSearcher) Search(ctx context.Context, query string, n int) (search.Results, error) {
	if f.err != nil {
		return search.Results{}, f.err
	}
	if strings.TrimSpace(query) == "" {
		return search.Results{}, search.ErrEmptyQuery
	}
	return search.Results{
		Query: query,
		Items: []models.SearchResult{{Title: "Notícia", Snippet: "texto", URL: "https://example.com/a"}},
	}, nil
}

type fakeHistory struct {
	limit int
	err   error
}

func (f *fakeHistory) ListAnalyses(limit int) ([]sqlite.AnalysisRecord, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return []sqlite.AnalysisRecord{{ID: "analysis_1", Title: "Entrevista"}}, nil
}

func newTestServer(analyzer Analyzer, history HistoryLister) (*httptest.Server, *session.Session, *fakeAsker) {
	sess := session.New()
	asker := &fakeAsker{}
	h := NewHandlers(analyzer, asker, fakeSearcher{}, sess, history)
	return httptest.NewServer(Routes(h)), sess, asker
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, out
}

func TestHandleAnalyze(t *testing.T) {
	srv, sess, _ := newTestServer(&fakeAnalyzer{}, nil)
	defer srv.Close()

	resp, body := postJSON(t, srv.URL+"/api/analyze", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}
	if body["id"] != "analysis_1234abcd" || body["title"] != "Entrevista" {
		t.Errorf("body = %v", body)
	}
	if _, ok := sess.Summary(); !ok {
		t.Error("session should hold the committed summary")
	}
}

func TestHandleAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantStage  string
	}{
		{name: "invalid json", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "missing url", body: `{"url":"  "}`, wantStatus: http.StatusBadRequest},
		{
			name:       "invalid url",
			body:       `{"url":"https://vimeo.com/1"}`,
			err:        &core.StageError{Stage: core.StageTranscribe, Err: youtube.ErrInvalidURL},
			wantStatus: http.StatusBadRequest,
			wantStage:  core.StageTranscribe,
		},
		{
			name:       "audio too large",
			body:       `{"url":"https://youtu.be/dQw4w9WgXcQ"}`,
			err:        &core.StageError{Stage: core.StageTranscribe, Err: core.ErrAudioTooLarge},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantStage:  core.StageTranscribe,
		},
		{
			name:       "upstream failure",
			body:       `{"url":"https://youtu.be/dQw4w9WgXcQ"}`,
			err:        &core.StageError{Stage: core.StageSearch, Err: errors.New("connection reset")},
			wantStatus: http.StatusBadGateway,
			wantStage:  core.StageSearch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, sess, _ := newTestServer(&fakeAnalyzer{err: tt.err}, nil)
			defer srv.Close()

			resp, body := postJSON(t, srv.URL+"/api/analyze", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if body["error"] == nil {
				t.Errorf("body = %v, want error field", body)
			}
			if tt.wantStage != "" && body["stage"] != tt.wantStage {
				t.Errorf("stage = %v, want %s", body["stage"], tt.wantStage)
			}
			if _, ok := sess.Transcript(); ok {
				t.Error("failed analysis must not load a transcript")
			}
		})
	}
}

func TestHandleAnalyze_Busy(t *testing.T) {
	analyzer := &fakeAnalyzer{block: make(chan struct{}), started: make(chan struct{})}
	srv, _, _ := newTestServer(analyzer, nil)
	defer srv.Close()

	done := make(chan int, 1)
	go func() {
		resp, err := http.Post(srv.URL+"/api/analyze", "application/json", strings.NewReader(`{"url":"https://youtu.be/dQw4w9WgXcQ"}`))
		if err != nil {
			done <- 0
			return
		}
		_ = resp.Body.Close()
		done <- resp.StatusCode
	}()

	select {
	case <-analyzer.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first analysis never started")
	}

	resp, _ := postJSON(t, srv.URL+"/api/analyze", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("concurrent analyze status = %d, want 409", resp.StatusCode)
	}

	close(analyzer.block)
	if status := <-done; status != http.StatusOK {
		t.Errorf("first analyze status = %d, want 200", status)
	}
}

func TestHandleAsk(t *testing.T) {
	srv, sess, asker := newTestServer(&fakeAnalyzer{}, nil)
	defer srv.Close()

	resp, body := postJSON(t, srv.URL+"/api/ask", `{"question":"  Quem falou?  "}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["answer"] != core.NoIndexMessage || body["no_index"] != true {
		t.Errorf("body = %v, want no-index answer", body)
	}
	if len(asker.asked) != 1 || asker.asked[0] != "Quem falou?" {
		t.Errorf("asked = %v", asker.asked)
	}
	if got := len(sess.History()); got != 2 {
		t.Errorf("history length = %d, want 2", got)
	}

	resp, _ = postJSON(t, srv.URL+"/api/ask", `{"question":""}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty question status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleSearch(t *testing.T) {
	srv, _, _ := newTestServer(&fakeAnalyzer{}, nil)
	defer srv.Close()

	resp, body := postJSON(t, srv.URL+"/api/search", `{"query":"reforma tributária"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["total"] != float64(1) {
		t.Errorf("total = %v, want 1", body["total"])
	}
	if f, _ := body["formatted"].(string); !strings.HasPrefix(f, "Resultados da busca:") {
		t.Errorf("formatted = %q", f)
	}

	resp, _ = postJSON(t, srv.URL+"/api/search", `{"query":""}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty query status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleSession(t *testing.T) {
	srv, sess, _ := newTestServer(&fakeAnalyzer{}, nil)
	defer srv.Close()

	sess.SetTranscript(models.Transcript{Title: "Vídeo", Text: "texto"})

	resp, err := http.Get(srv.URL + "/api/session")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	var snap session.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Transcript == nil || snap.Transcript.Text != "texto" || snap.Summary != nil {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.History == nil {
		t.Error("history should encode as an empty list")
	}
}

func TestHandleHistory(t *testing.T) {
	history := &fakeHistory{}
	srv, _, _ := newTestServer(&fakeAnalyzer{}, history)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/history?limit=5")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Analyses []sqlite.AnalysisRecord `json:"analyses"`
		Total    int                     `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()

	if history.limit != 5 || body.Total != 1 || body.Analyses[0].ID != "analysis_1" {
		t.Errorf("limit = %d, body = %+v", history.limit, body)
	}

	history.err = fmt.Errorf("database is locked")
	resp, err = http.Get(srv.URL + "/api/history")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	if history.limit != 20 {
		t.Errorf("default limit = %d, want 20", history.limit)
	}
}

func TestHandleHistory_NoStore(t *testing.T) {
	srv, _, _ := newTestServer(&fakeAnalyzer{}, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/history")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != http.StatusOK || body["total"] != float64(0) {
		t.Errorf("status = %d, body = %v", resp.StatusCode, body)
	}
}

func TestHandleDownload(t *testing.T) {
	srv, _, _ := newTestServer(&fakeAnalyzer{}, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/download/summary.txt")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("download before analysis status = %d, want 404", resp.StatusCode)
	}

	if r, _ := postJSON(t, srv.URL+"/api/analyze", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`); r.StatusCode != http.StatusOK {
		t.Fatalf("analyze status = %d", r.StatusCode)
	}

	tests := []struct {
		file        string
		wantName    string
		wantContent string
		wantType    string
	}{
		{"transcript.txt", session.TranscriptFile, "transcrição completa", "text/plain"},
		{"summary.txt", session.SummaryFile, "resumo curto", "text/plain"},
		{"highlights.md", session.HighlightsFile, "## Destaque 1\ntrecho", "text/markdown"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/download/" + tt.file)
			if err != nil {
				t.Fatal(err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, tt.wantName) {
				t.Errorf("Content-Disposition = %q, want %s", cd, tt.wantName)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, tt.wantType) {
				t.Errorf("Content-Type = %q, want %s", ct, tt.wantType)
			}
			data, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.wantContent {
				t.Errorf("content = %q, want %q", data, tt.wantContent)
			}
		})
	}

	resp, err = http.Get(srv.URL + "/download/secrets.env")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown file status = %d, want 404", resp.StatusCode)
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _, _ := newTestServer(&fakeAnalyzer{}, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	resp2, err := http.Get(srv.URL + "/api/analyze")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp2.Body.Close()
	if resp2.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/analyze status = %d, want 405", resp2.StatusCode)
	}
}

func TestNew(t *testing.T) {
	srv := New(":8080", NewHandlers(&fakeAnalyzer{}, &fakeAsker{}, fakeSearcher{}, session.New(), nil))
	if srv.Addr != ":8080" || srv.Handler == nil {
		t.Errorf("server = %+v", srv)
	}
}
