// ABOUTME: Audio downloader that shells out to yt-dlp (and ffmpeg) through a CommandRunner
// ABOUTME: Produces one mp3 per call inside a caller-provided directory
package youtube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrDownloadFailed wraps yt-dlp failures
var ErrDownloadFailed = errors.New("audio download failed")

// CommandRunner runs an external command and returns its stdout
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run executes name with args, returning stdout. Stderr is folded into the error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", err, lastLine(msg))
	}
	return stdout.Bytes(), nil
}

// Audio is a downloaded audio track
type Audio struct {
	VideoID string
	Title   string
	Path    string
	Size    int64
}

// Downloader fetches audio tracks from YouTube
type Downloader struct {
	runner CommandRunner
	binary string
}

// NewDownloader creates a Downloader. An empty binary means "yt-dlp" on PATH.
func NewDownloader(runner CommandRunner, binary string) *Downloader {
	if runner == nil {
		runner = ExecRunner{}
	}
	if binary == "" {
		binary = "yt-dlp"
	}
	return &Downloader{runner: runner, binary: binary}
}

// DownloadAudio extracts the audio of url to an mp3 file inside dir
func (d *Downloader) DownloadAudio(ctx context.Context, rawURL, dir string) (Audio, error) {
	id, err := VideoID(rawURL)
	if err != nil {
		return Audio{}, err
	}

	args := []string{
		"--no-playlist",
		"--no-progress",
		"--no-simulate",
		"--extract-audio",
		"--audio-format", "mp3",
		// VBR ~100kbps, enough for speech
		"--audio-quality", "7",
		"--print", "after_move:%(title)s",
		"--output", filepath.Join(dir, "audio.%(ext)s"),
		CanonicalURL(id),
	}

	slog.Debug("downloading audio", slog.String("video_id", id), slog.String("dir", dir))
	out, err := d.runner.Run(ctx, d.binary, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Audio{}, ctxErr
		}
		return Audio{}, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	path, err := findAudio(dir)
	if err != nil {
		return Audio{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Audio{}, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	title := lastLine(strings.TrimSpace(string(out)))
	if title == "" {
		title = id
	}

	return Audio{VideoID: id, Title: title, Path: path, Size: info.Size()}, nil
}

func findAudio(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "audio.*"))
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		if filepath.Ext(m) == ".mp3" {
			return m, nil
		}
	}
	if len(matches) > 0 {
		return matches[0], nil
	}
	return "", fmt.Errorf("%w: no audio file produced", ErrDownloadFailed)
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
