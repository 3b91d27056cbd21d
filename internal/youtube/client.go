package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/asktube/asktube/internal/domain"
)

const (
	// DefaultAPIHost is the RapidAPI transcript provider. Fetching captions
	// through it avoids YouTube blocking datacenter IPs.
	DefaultAPIHost = "youtube-transcript3.p.rapidapi.com"

	defaultTimeout = 15 * time.Second
)

// videoIDPattern captures the 11-character video id from watch, shortened,
// embed and shorts URL forms.
var videoIDPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:youtube\.com/(?:[^/\n\s]+/\S+/|(?:v|e(?:mbed)?|shorts)/|\S*?[?&]v=)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ExtractVideoID parses a YouTube URL and returns the video id.
func ExtractVideoID(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", domain.ErrInvalidVideoURL
	}

	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", domain.ErrInvalidVideoURL
	}
	return m[1], nil
}

// SummaryFallback generates a stand-in description of a video when no
// transcript can be fetched.
type SummaryFallback interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client fetches video transcripts from the RapidAPI transcript provider.
type Client struct {
	httpClient *http.Client
	apiKey     string
	apiHost    string
	baseURL    string
	fallback   SummaryFallback
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the provider endpoint, host header included.
func WithBaseURL(baseURL, host string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
		c.apiHost = host
	}
}

// WithSummaryFallback enables the model-generated stand-in transcript used
// when the provider has no captions for a video.
func WithSummaryFallback(fallback SummaryFallback) Option {
	return func(c *Client) { c.fallback = fallback }
}

// NewClient creates a transcript client for the given RapidAPI key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		apiKey:     apiKey,
		apiHost:    DefaultAPIHost,
		baseURL:    "https://" + DefaultAPIHost + "/api/transcript",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExtractVideoID parses a YouTube URL and returns the video id.
func (c *Client) ExtractVideoID(rawURL string) (string, error) {
	return ExtractVideoID(rawURL)
}

type transcriptResponse struct {
	Transcript []struct {
		Text   string  `json:"text"`
		Offset float64 `json:"offset"`
	} `json:"transcript"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FetchTranscript fetches and sanitizes the transcript for one video. If the
// provider has no captions and a fallback generator is configured, a single
// model-generated segment is returned so the video can still be indexed.
func (c *Client) FetchTranscript(ctx context.Context, videoID string) ([]domain.TranscriptSegment, error) {
	segments, err := c.fetchFromProvider(ctx, videoID)
	if err == nil {
		return segments, nil
	}

	if c.fallback == nil {
		return nil, err
	}

	log.Printf("youtube: transcript fetch failed for %s (%v), trying model fallback", videoID, err)
	return c.fetchFallbackSummary(ctx, videoID)
}

func (c *Client) fetchFromProvider(ctx context.Context, videoID string) ([]domain.TranscriptSegment, error) {
	endpoint := c.baseURL + "?videoId=" + url.QueryEscape(videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to build transcript request", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "transcript provider request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.NewDomainError(domain.ErrCodeUpstream, "transcript provider quota exceeded")
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrTranscriptUnavailable
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		log.Printf("youtube: provider returned %d: %s", resp.StatusCode, body)
		return nil, domain.NewDomainError(domain.ErrCodeUpstream, fmt.Sprintf("transcript provider error: %d", resp.StatusCode))
	}

	var payload transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "transcript provider returned invalid JSON", err)
	}

	if len(payload.Transcript) == 0 {
		if payload.Error != "" || payload.Message != "" {
			log.Printf("youtube: no transcript segments for %s: %s%s", videoID, payload.Error, payload.Message)
		}
		return nil, domain.ErrTranscriptUnavailable
	}

	segments := make([]domain.TranscriptSegment, 0, len(payload.Transcript))
	for _, s := range payload.Transcript {
		text := cleanText(s.Text)
		if text == "" {
			continue
		}
		segments = append(segments, domain.TranscriptSegment{Text: text, Start: s.Offset})
	}

	if len(segments) == 0 {
		return nil, domain.ErrTranscriptUnavailable
	}

	log.Printf("youtube: fetched %d transcript segments for %s", len(segments), videoID)
	return segments, nil
}

func (c *Client) fetchFallbackSummary(ctx context.Context, videoID string) ([]domain.TranscriptSegment, error) {
	watchURL := "https://www.youtube.com/watch?v=" + videoID
	prompt := fmt.Sprintf(
		"I cannot retrieve the transcript for this YouTube video: %s. "+
			"Based on your internal knowledge, please provide a detailed summary "+
			"of what this video is likely about. Cover the main topics and key points.",
		watchURL,
	)

	summary, err := c.fallback.Generate(ctx, prompt)
	if err != nil || summary == "" {
		return nil, domain.ErrTranscriptUnavailable
	}

	// Marked so downstream consumers can tell it apart from real captions.
	return []domain.TranscriptSegment{
		{Text: "[FALLBACK SUMMARY BY AI]: " + summary, Start: 0.0},
	}, nil
}

// cleanText sanitizes caption text: HTML entities are unescaped, tags
// stripped, and whitespace collapsed to single spaces.
func cleanText(text string) string {
	if text == "" {
		return ""
	}
	cleaned := html.UnescapeString(text)
	cleaned = tagPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\u00a0", " ")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
