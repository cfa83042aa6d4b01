// ABOUTME: DuckDuckGo web search over the HTML lite endpoint, parsed with goquery
// ABOUTME: Rate limited, retried on transient failures and cached
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/harper/newsclip/internal/models"
	"github.com/harper/newsclip/internal/util"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the DuckDuckGo HTML lite search URL
const DefaultEndpoint = "https://html.duckduckgo.com/html/"

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// ErrEmptyQuery is returned for blank queries
var ErrEmptyQuery = errors.New("search query is empty")

// Options configures a Client
type Options struct {
	Endpoint   string
	Region     string
	MaxResults int
	// Interval is the minimum spacing between outbound requests
	Interval   time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	Cache      *Cache
	HTTPClient *http.Client
}

// Client searches DuckDuckGo
type Client struct {
	endpoint   string
	region     string
	maxResults int
	http       *http.Client
	limiter    *rate.Limiter
	retry      util.RetryConfig
	cache      *Cache
}

// NewClient creates a search client
func NewClient(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Region == "" {
		opts.Region = "wt-wt"
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}

	return &Client{
		endpoint:   opts.Endpoint,
		region:     opts.Region,
		maxResults: opts.MaxResults,
		http:       hc,
		limiter:    rate.NewLimiter(limit, 1),
		retry: util.RetryConfig{
			MaxRetries: opts.MaxRetries,
			BaseDelay:  opts.RetryDelay,
		},
		cache: opts.Cache,
	}
}

// MaxResults returns the default result count
func (c *Client) MaxResults() int {
	return c.maxResults
}

// Search returns up to n results for query. n <= 0 uses the configured default.
// A search that finds nothing returns empty Results and a nil error.
func (c *Client) Search(ctx context.Context, query string, n int) (Results, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Results{}, ErrEmptyQuery
	}
	if n <= 0 {
		n = c.maxResults
	}

	key := Key(c.region, strconv.Itoa(n), query)
	if cached, ok := c.cache.Get(ctx, key); ok {
		cached.Cached = true
		slog.Debug("search cache hit", slog.String("query", query))
		return cached, nil
	}

	items, err := util.Retry(ctx, c.retry, func(ctx context.Context) ([]models.SearchResult, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return c.fetch(ctx, query)
	})
	if err != nil {
		return Results{}, fmt.Errorf("web search %q: %w", query, err)
	}

	if len(items) > n {
		items = items[:n]
	}
	res := Results{Query: query, Items: items}
	if !res.Empty() {
		c.cache.Set(ctx, key, res)
	}

	slog.Debug("web search", slog.String("query", query), slog.Int("results", len(items)))
	return res, nil
}

func (c *Client) fetch(ctx context.Context, query string) ([]models.SearchResult, error) {
	form := url.Values{"q": {query}, "kl": {c.region}, "df": {""}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", "https://html.duckduckgo.com/")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &util.StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return parseHTML(resp.Body)
}

// parseHTML extracts search results from a DDG HTML lite page
func parseHTML(r io.Reader) ([]models.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("goquery parse: %w", err)
	}

	var results []models.SearchResult
	seen := make(map[string]bool)

	doc.Find(".result, .web-result").Each(func(i int, s *goquery.Selection) {
		if s.HasClass("result--ad") {
			return
		}

		link := s.Find("a.result__a, .result__title a, a.result-link").First()
		title := strings.TrimSpace(link.Text())
		href, exists := link.Attr("href")
		if !exists || title == "" {
			return
		}

		href = unwrapURL(href)
		if href == "" || seen[href] {
			return
		}
		seen[href] = true

		snippet := strings.Join(strings.Fields(s.Find(".result__snippet, .result__body").First().Text()), " ")

		results = append(results, models.SearchResult{
			Title:   title,
			Snippet: snippet,
			URL:     href,
		})
	})

	return results, nil
}

// unwrapURL extracts the target from DDG redirect links:
// //duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com&rut=...
func unwrapURL(href string) string {
	if strings.Contains(href, "duckduckgo.com/l/") || strings.Contains(href, "uddg=") {
		if u, err := url.Parse(href); err == nil {
			if uddg := u.Query().Get("uddg"); uddg != "" {
				return uddg
			}
		}
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return ""
}
