// Package extract fetches a remote resource and either hands back audio for
// transcription or reduces a document to a bounded plain-text excerpt.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/nadzzz/kisanvani/internal/audio"
	"github.com/nadzzz/kisanvani/internal/config"
	"github.com/nadzzz/kisanvani/internal/errorsx"
)

// TruncationMarker is appended to excerpts cut at the character cap.
const TruncationMarker = "... [content truncated]"

// DefaultMaxChars caps excerpts when config leaves it unset.
const DefaultMaxChars = 5000

// Kind distinguishes fetched audio from documents.
type Kind int

const (
	KindDocument Kind = iota
	KindAudio
)

// Resource is a fetched remote body.
type Resource struct {
	URL         string
	Kind        Kind
	ContentType string
	Body        []byte
}

// Extractor fetches remote resources with bounded time and size.
type Extractor struct {
	client    *http.Client
	timeout   time.Duration
	maxBytes  int64
	maxChars  int
	userAgent string
	logger    *slog.Logger
}

// New creates an Extractor from config.
func New(cfg config.ExtractConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &Extractor{
		client:    &http.Client{},
		timeout:   cfg.Timeout,
		maxBytes:  maxBytes,
		maxChars:  maxChars,
		userAgent: cfg.UserAgent,
		logger:    logger.With("component", "extract"),
	}
}

// Fetch downloads rawURL. Only http and https are accepted.
func (e *Extractor) Fetch(ctx context.Context, rawURL string) (*Resource, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errorsx.New(errorsx.ReasonBadRequest, fmt.Sprintf("invalid url: %q", rawURL))
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("creating request: %w", err), errorsx.ReasonBadRequest)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,audio/*;q=0.8,*/*;q=0.5")

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, e.fetchError(fmt.Errorf("fetching %s: %w", u.Redacted(), err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorsx.New(errorsx.ReasonContentExtraction,
			fmt.Sprintf("fetching %s: HTTP %d", u.Redacted(), resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes+1))
	if err != nil {
		return nil, e.fetchError(fmt.Errorf("reading %s: %w", u.Redacted(), err))
	}
	if int64(len(body)) > e.maxBytes {
		return nil, errorsx.New(errorsx.ReasonContentExtraction,
			fmt.Sprintf("resource exceeds %d bytes", e.maxBytes))
	}

	ct := resp.Header.Get("Content-Type")
	res := &Resource{URL: u.String(), ContentType: ct, Body: body, Kind: KindDocument}
	// Mislabelled recordings are recognized by their container header.
	if IsAudio(ct, u.Path) || (!isTextual(mediaType(ct)) && audio.Sniff(body) != audio.FormatUnknown) {
		res.Kind = KindAudio
	}
	e.logger.Debug("fetched resource", "host", u.Host, "content_type", ct, "bytes", len(body),
		"audio", res.Kind == KindAudio, "elapsed", time.Since(start))
	return res, nil
}

func (e *Extractor) fetchError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errorsx.Wrap(err, errorsx.ReasonTimeout)
	}
	return errorsx.Wrap(err, errorsx.ReasonContentExtraction)
}

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".ogg": true, ".oga": true, ".opus": true,
	".webm": true, ".m4a": true, ".flac": true, ".aac": true,
}

// audioContainers are non-audio media types that browsers and file servers
// use for voice recordings.
var audioContainers = map[string]bool{
	"video/webm": true, "video/ogg": true, "video/mp4": true, "application/ogg": true,
}

// IsAudio classifies a resource as audio from its content type, falling back
// to the URL path extension for anything that is not a text document.
func IsAudio(contentType, urlPath string) bool {
	ct := mediaType(contentType)
	switch {
	case strings.HasPrefix(ct, "audio/"), audioContainers[ct]:
		return true
	case isTextual(ct):
		return false
	}
	return audioExtensions[strings.ToLower(path.Ext(urlPath))]
}

func mediaType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	ct, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	return strings.TrimSpace(ct)
}

func isTextual(mt string) bool {
	if strings.HasPrefix(mt, "text/") {
		return true
	}
	switch mt {
	case "application/xhtml+xml", "application/xml", "application/json", "application/rss+xml", "application/atom+xml":
		return true
	}
	return false
}

// Text reduces a document resource to a plain-text excerpt of at most the
// configured character cap plus TruncationMarker.
func (e *Extractor) Text(res *Resource) (string, error) {
	ct := strings.ToLower(res.ContentType)
	var text string
	switch {
	case strings.HasPrefix(ct, "text/plain"), strings.HasPrefix(ct, "text/markdown"):
		text = collapseSpace(decodeText(res.Body, res.ContentType))
	default:
		t, err := HTMLText(res.Body, res.ContentType)
		if err != nil {
			return "", errorsx.Wrap(fmt.Errorf("parsing document: %w", err), errorsx.ReasonContentExtraction)
		}
		text = t
	}
	return Truncate(text, e.maxChars), nil
}

// skipElements never contribute content.
var skipElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true, "svg": true,
	"nav": true, "footer": true, "header": true, "head": true, "form": true,
}

// HTMLText returns the visible text of an HTML document with navigation and
// markup removed and whitespace collapsed to single spaces.
func HTMLText(body []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		r = bytes.NewReader(body)
	}
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		if depth > 200 {
			return
		}
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
			return
		case html.ElementNode:
			if skipElements[n.Data] {
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, depth+1)
		}
	}
	walk(doc, 0)
	return collapseSpace(sb.String()), nil
}

func decodeText(body []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return string(body)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return string(body)
	}
	return string(out)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to max characters (runes) followed by TruncationMarker.
// Strings within the cap are returned unchanged.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + TruncationMarker
		}
		n++
	}
	return s
}
