// ABOUTME: Pipeline runs every stage for one video and commits the results to the session
// ABOUTME: Nothing reaches the session unless all stages succeed; failures name the stage
package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/harper/newsclip/internal/models"
	"github.com/harper/newsclip/internal/session"
	"github.com/harper/newsclip/internal/storage"
)

// Pipeline is the explicit orchestrator: transcribe, summarize, index,
// keywords, news search and highlights, in that order
type Pipeline struct {
	stages   *Stages
	recorder AnalysisRecorder

	// OnStep, when set, is called after each completed stage
	OnStep func(models.Step)
}

// NewPipeline creates a Pipeline. recorder may be nil.
func NewPipeline(stages *Stages, recorder AnalysisRecorder) *Pipeline {
	return &Pipeline{stages: stages, recorder: recorder}
}

// Run processes the video at url. On success the analysis is committed to
// sess; on failure sess keeps its previous artifacts and gets an error entry
// in its history, and the returned error is a *StageError.
func (p *Pipeline) Run(ctx context.Context, sess *session.Session, url string) (*models.Analysis, error) {
	analysis, idx, err := p.run(ctx, url)
	if err != nil {
		slog.Error("pipeline failed", slog.String("url", url), slog.Any("error", err))
		sess.AddError(err)
		return nil, err
	}

	sess.Commit(analysis, idx)
	_, _ = sess.AddMessage(models.RoleAssistant, fmt.Sprintf(
		"Vídeo processado: %s. Resumo, índice e %d destaques disponíveis.",
		analysis.Transcript.Title, analysis.Highlights.Count()))

	if p.recorder != nil {
		if err := p.recorder.SaveAnalysis(analysis); err != nil {
			slog.Warn("failed to record analysis", slog.Any("error", err))
		}
	}
	return analysis, nil
}

func (p *Pipeline) run(ctx context.Context, url string) (*models.Analysis, *storage.VectorIndex, error) {
	a := &models.Analysis{
		ID:        "analysis_" + uuid.New().String()[:8],
		URL:       url,
		StartedAt: time.Now().UTC(),
	}
	st := p.stages

	var err error
	err = p.step(ctx, a, StageTranscribe, func(ctx context.Context) (string, error) {
		a.Transcript, err = st.Transcriber.Transcribe(ctx, url)
		if err != nil {
			return "", err
		}
		return a.Transcript.Render(), nil
	})
	if err != nil {
		return nil, nil, err
	}

	err = p.step(ctx, a, StageSummarize, func(ctx context.Context) (string, error) {
		if a.Transcript.Len() <= st.Summarizer.Threshold() {
			a.Summary = models.Summary{Text: a.Transcript.Text}
			return "Transcrição curta, usada como resumo.", nil
		}
		a.Summary, err = st.Summarizer.Summarize(ctx, a.Transcript.Text)
		if err != nil {
			return "", err
		}
		return a.Summary.Text, nil
	})
	if err != nil {
		return nil, nil, err
	}

	var idx *storage.VectorIndex
	err = p.step(ctx, a, StageIndex, func(ctx context.Context) (string, error) {
		idx, err = st.Indexer.Index(ctx, a.Transcript.Text)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Transcrição indexada em %d trechos.", idx.Len()), nil
	})
	if err != nil {
		return nil, nil, err
	}

	err = p.step(ctx, a, StageKeywords, func(ctx context.Context) (string, error) {
		a.Highlights.Keywords, err = st.Highlighter.Keywords(ctx, a.Summary.Text)
		if err != nil {
			return "", err
		}
		a.Highlights.SearchQuery = st.Highlighter.NewsQuery(a.Highlights.Keywords)
		return a.Highlights.Keywords, nil
	})
	if err != nil {
		return nil, nil, err
	}

	var searchContext string
	err = p.step(ctx, a, StageSearch, func(ctx context.Context) (string, error) {
		res, err := st.Search.Search(ctx, a.Highlights.SearchQuery, st.SearchResults)
		if err != nil {
			return "", err
		}
		searchContext = res.Format()
		return searchContext, nil
	})
	if err != nil {
		return nil, nil, err
	}

	err = p.step(ctx, a, StageHighlight, func(ctx context.Context) (string, error) {
		h, err := st.Highlighter.Highlight(ctx, a.Summary.Text, searchContext)
		if err != nil {
			return "", err
		}
		a.Highlights.Text = h.Text
		return h.Text, nil
	})
	if err != nil {
		return nil, nil, err
	}

	a.FinishedAt = time.Now().UTC()
	slog.Info("pipeline complete",
		slog.String("analysis_id", a.ID),
		slog.Int("highlights", a.Highlights.Count()),
		slog.Duration("took", a.FinishedAt.Sub(a.StartedAt)))
	return a, idx, nil
}

// step runs one stage, records it and wraps its error with the stage name
func (p *Pipeline) step(ctx context.Context, a *models.Analysis, name string, fn func(context.Context) (string, error)) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: name, Err: err}
	}

	start := time.Now()
	content, err := fn(ctx)
	if err != nil {
		return &StageError{Stage: name, Err: err}
	}

	s := models.Step{Name: name, Content: content, Duration: time.Since(start)}
	a.Steps = append(a.Steps, s)
	slog.Debug("stage complete", slog.String("stage", name), slog.Duration("took", s.Duration))
	if p.OnStep != nil {
		p.OnStep(s)
	}
	return nil
}
