package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"auricle/internal/config"
	"auricle/internal/services"
)

// maxBodyBytes caps article downloads; anything larger is not an article.
const maxBodyBytes = 10 << 20

// Extraction is the readable portion of a downloaded page.
type Extraction struct {
	Title    string
	Text     string
	CoverURL string
	Excerpt  string
}

// Extractor downloads a page and reduces it to readable article text.
type Extractor struct {
	httpClient *http.Client
	userAgent  string
}

// NewExtractor builds an extractor from the fetch configuration.
func NewExtractor(cfg config.Fetch) *Extractor {
	return &Extractor{
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		userAgent:  cfg.UserAgent,
	}
}

// Extract fetches pageURL and returns its readable content.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*Extraction, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, services.Wrap(services.ErrValidation, "fetch", "extract", fmt.Sprintf("invalid url %q", pageURL), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "fetch", "extract", "new request", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "fetch", "extract", "http error", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExternalTool, "fetch", "extract", fmt.Sprintf("http %d", resp.StatusCode), nil)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxBodyBytes), parsed)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "fetch", "extract", "readability parse", err)
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return nil, services.Wrap(services.ErrExternalTool, "fetch", "extract", "no readable content", nil)
	}
	return &Extraction{
		Title:    strings.TrimSpace(article.Title),
		Text:     text,
		CoverURL: strings.TrimSpace(article.Image),
		Excerpt:  strings.TrimSpace(article.Excerpt),
	}, nil
}
