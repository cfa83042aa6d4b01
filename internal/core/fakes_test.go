// ABOUTME: Test doubles for the stage collaborators
// ABOUTME: Deterministic LLM, embedder, downloader, speech-to-text, search and cache fakes
package core

import (
	"context"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/harper/newsclip/internal/llm"
	"github.com/harper/newsclip/internal/models"
	"github.com/harper/newsclip/internal/search"
	"github.com/harper/newsclip/internal/youtube"
)

// fakeLLM answers prompts through respond and records every call
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	temps   []float32
	respond func(prompt string) (string, error)
}

func (f *fakeLLM) Chat(ctx context.Context, messages []llm.Message, temperature float32) (string, error) {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return f.Complete(ctx, b.String(), temperature)
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.temps = append(f.temps, temperature)
	f.mu.Unlock()
	if f.respond == nil {
		return "ok", nil
	}
	return f.respond(prompt)
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeLLM) callsContaining(s string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.prompts {
		if strings.Contains(p, s) {
			n++
		}
	}
	return n
}

// bagEmbedder hashes lowercase words into a fixed number of buckets
type bagEmbedder struct {
	dims  int
	calls int
	err   error
}

func (e *bagEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, e.dims)
		for _, w := range strings.Fields(strings.ToLower(t)) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(strings.Trim(w, ".,?!")))
			v[h.Sum32()%uint32(e.dims)]++
		}
		v[0] += 0.01
		out[i] = v
	}
	return out, nil
}

// fakeDownloader writes a file of size bytes into dir
type fakeDownloader struct {
	title string
	size  int
	err   error
	dirs  []string
}

func (d *fakeDownloader) DownloadAudio(ctx context.Context, url, dir string) (youtube.Audio, error) {
	d.dirs = append(d.dirs, dir)
	if d.err != nil {
		return youtube.Audio{}, d.err
	}
	path := filepath.Join(dir, "audio.mp3")
	if err := os.WriteFile(path, make([]byte, d.size), 0644); err != nil {
		return youtube.Audio{}, err
	}
	return youtube.Audio{Title: d.title, Path: path, Size: int64(d.size)}, nil
}

type fakeSTT struct {
	text  string
	err   error
	calls int
}

func (s *fakeSTT) Transcribe(ctx context.Context, audioPath string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func (s *fakeSTT) Language() string { return "pt" }

type fakeSearcher struct {
	items   []models.SearchResult
	err     error
	queries []string
}

func (s *fakeSearcher) Search(ctx context.Context, query string, n int) (search.Results, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return search.Results{}, s.err
	}
	return search.Results{Query: query, Items: s.items}, nil
}

type memoryCache struct {
	items map[string]models.Transcript
	puts  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]models.Transcript)}
}

func (c *memoryCache) GetTranscript(videoID, language string) (*models.Transcript, error) {
	t, ok := c.items[videoID+"/"+language]
	if !ok {
		return nil, nil
	}
	t.Cached = true
	return &t, nil
}

func (c *memoryCache) PutTranscript(t models.Transcript) error {
	c.puts++
	c.items[t.VideoID+"/"+t.Language] = t
	return nil
}

type fakeRecorder struct {
	saved []*models.Analysis
}

func (r *fakeRecorder) SaveAnalysis(a *models.Analysis) error {
	r.saved = append(r.saved, a)
	return nil
}
