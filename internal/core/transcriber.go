// ABOUTME: Transcriber downloads a video's audio and sends it to speech-to-text
// ABOUTME: Consults the transcript cache first; the temp directory is always removed
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/harper/newsclip/internal/models"
	"github.com/harper/newsclip/internal/youtube"
)

// MaxAudioBytes is the speech-to-text upload limit
const MaxAudioBytes = 25 << 20

// ErrAudioTooLarge is returned when the extracted audio exceeds MaxAudioBytes
var ErrAudioTooLarge = errors.New("audio file exceeds the 25 MB transcription limit")

// ErrEmptyTranscript is returned when speech-to-text produced no text
var ErrEmptyTranscript = errors.New("transcription returned no text")

// Transcriber turns a video URL into a Transcript
type Transcriber struct {
	downloader AudioDownloader
	stt        SpeechToText
	cache      TranscriptCache
	tempRoot   string
	maxBytes   int64
}

// NewTranscriber creates a Transcriber. cache may be nil.
func NewTranscriber(downloader AudioDownloader, stt SpeechToText, cache TranscriptCache) *Transcriber {
	return &Transcriber{
		downloader: downloader,
		stt:        stt,
		cache:      cache,
		maxBytes:   MaxAudioBytes,
	}
}

// Transcribe returns the transcript of the video at url
func (t *Transcriber) Transcribe(ctx context.Context, url string) (models.Transcript, error) {
	videoID, err := youtube.VideoID(url)
	if err != nil {
		return models.Transcript{}, err
	}
	language := t.stt.Language()

	if cached := t.lookup(videoID, language); cached != nil {
		slog.Info("transcript cache hit", slog.String("video_id", videoID))
		return *cached, nil
	}

	dir, err := os.MkdirTemp(t.tempRoot, "newsclip-*")
	if err != nil {
		return models.Transcript{}, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	audio, err := t.downloader.DownloadAudio(ctx, url, dir)
	if err != nil {
		return models.Transcript{}, err
	}
	if audio.Size > t.maxBytes {
		return models.Transcript{}, fmt.Errorf("%w (%d bytes)", ErrAudioTooLarge, audio.Size)
	}

	start := time.Now()
	text, err := t.stt.Transcribe(ctx, audio.Path)
	if err != nil {
		return models.Transcript{}, err
	}
	if strings.TrimSpace(text) == "" {
		return models.Transcript{}, ErrEmptyTranscript
	}

	transcript := models.Transcript{
		VideoID:   videoID,
		Title:     audio.Title,
		URL:       url,
		Text:      text,
		Language:  language,
		CreatedAt: time.Now().UTC(),
	}
	slog.Info("transcribed video",
		slog.String("video_id", videoID),
		slog.Int("chars", transcript.Len()),
		slog.Duration("took", time.Since(start)))

	if t.cache != nil {
		if err := t.cache.PutTranscript(transcript); err != nil {
			slog.Warn("failed to cache transcript", slog.Any("error", err))
		}
	}
	return transcript, nil
}

func (t *Transcriber) lookup(videoID, language string) *models.Transcript {
	if t.cache == nil {
		return nil
	}
	cached, err := t.cache.GetTranscript(videoID, language)
	if err != nil {
		slog.Warn("transcript cache lookup failed", slog.Any("error", err))
		return nil
	}
	return cached
}
