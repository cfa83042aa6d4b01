// ABOUTME: YouTube URL validation and video ID extraction
// ABOUTME: Accepts watch, short-link, shorts, embed and live URL shapes
package youtube

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidURL is returned for anything that is not a YouTube video URL
var ErrInvalidURL = errors.New("invalid YouTube URL")

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var hosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

// VideoID validates raw and returns the 11-character video ID
func VideoID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	host := strings.ToLower(u.Hostname())
	if !hosts[host] {
		return "", fmt.Errorf("%w: unsupported host %q", ErrInvalidURL, host)
	}

	var id string
	path := strings.Trim(u.Path, "/")
	switch {
	case host == "youtu.be":
		id = firstSegment(path)
	case path == "watch":
		id = u.Query().Get("v")
	default:
		parts := strings.SplitN(path, "/", 2)
		if len(parts) == 2 {
			switch parts[0] {
			case "shorts", "embed", "live", "v":
				id = firstSegment(parts[1])
			}
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: no video ID in %q", ErrInvalidURL, raw)
	}
	return id, nil
}

// CanonicalURL returns the watch URL for a video ID
func CanonicalURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

func firstSegment(p string) string {
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return p
}
