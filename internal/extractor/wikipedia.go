package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/logger"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// fallbackTitle is used when the page carries no firstHeading element.
const fallbackTitle = "Unknown Article"

// citationPattern matches inline citation markers like [1], [23].
var citationPattern = regexp.MustCompile(`\[\d+\]`)

// WikipediaExtractor fetches a Wikipedia article page and reduces it to a
// title plus cleaned, bounded plain text. One HTTP GET per call, no retries.
type WikipediaExtractor struct {
	client *http.Client
	cfg    config.ExtractorConfig
}

// NewWikipediaExtractor creates a WikipediaExtractor with a bounded-timeout
// HTTP client.
func NewWikipediaExtractor(cfg config.ExtractorConfig) domain.ArticleExtractor {
	return &WikipediaExtractor{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

// Extract implements domain.ArticleExtractor.
func (e *WikipediaExtractor) Extract(ctx context.Context, rawURL string) (*domain.Article, error) {
	if err := e.validateURL(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("Invalid URL: %s", rawURL))
	}
	// Browser-like header to avoid bot-blocking on the article fetch.
	req.Header.Set("User-Agent", e.cfg.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, domain.NewFetchError(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewFetchError(rawURL, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, domain.NewExtractionError(fmt.Sprintf("Failed to parse article HTML: %v", err))
	}

	title := strings.TrimSpace(doc.Find("h1#firstHeading").First().Text())
	if title == "" {
		title = fallbackTitle
	}

	content := doc.Find("div#mw-content-text")
	if content.Length() == 0 {
		return nil, domain.NewExtractionError("Could not find article content")
	}

	// Strip noise before paragraph extraction: citation superscripts, tables
	// (infoboxes included), navigation boxes and thumbnail/caption blocks.
	// figure covers the markup current Wikipedia uses for thumbnails.
	content.Find("sup, table, div.navbox, div.thumb, figure").Remove()

	var parts []string
	content.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		if len(text) <= e.cfg.MinParagraphChars {
			return true
		}
		text = citationPattern.ReplaceAllString(text, "")
		parts = append(parts, text)
		return len(parts) < e.cfg.MaxParagraphs
	})

	body := strings.Join(parts, "\n\n")
	if len(body) < e.cfg.MinContentChars {
		return nil, domain.NewInsufficientContentError(len(body))
	}

	logger.Get().Info("Extracted article",
		zap.String("url", rawURL),
		zap.String("title", title),
		zap.Int("paragraphs", len(parts)),
		zap.Int("content_chars", len(body)),
	)

	return &domain.Article{Title: title, Content: body}, nil
}

func (e *WikipediaExtractor) validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return domain.NewInvalidInputError(fmt.Sprintf("Invalid URL: %s", rawURL))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return domain.NewInvalidInputError(fmt.Sprintf("Unsupported URL scheme: %s", parsed.Scheme))
	}
	if !e.cfg.AllowAnyHost && !isWikipediaHost(parsed.Hostname()) {
		return domain.NewInvalidInputError(fmt.Sprintf("Not a Wikipedia URL: %s", rawURL))
	}
	return nil
}

func isWikipediaHost(host string) bool {
	host = strings.ToLower(host)
	return host == "wikipedia.org" || strings.HasSuffix(host, ".wikipedia.org")
}

var _ domain.ArticleExtractor = (*WikipediaExtractor)(nil)
