package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-chat-bridge/internal/domain"
	"ai-chat-bridge/internal/domain/ports/adapter"
)

var _ adapter.MediaFetcher = (*Fetcher)(nil)

// Fetcher downloads inbound image attachments. Twilio media URLs require
// the account credentials as basic auth; other hosts get none.
type Fetcher struct {
	client    *http.Client
	maxBytes  int64
	user      string
	pass      string
	authHosts map[string]struct{}
}

type Option func(*Fetcher)

// WithBasicAuth sends user/pass to the listed hosts only.
func WithBasicAuth(user, pass string, hosts ...string) Option {
	return func(f *Fetcher) {
		f.user, f.pass = user, pass
		for _, h := range hosts {
			f.authHosts[strings.ToLower(h)] = struct{}{}
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

func NewFetcher(timeout time.Duration, maxBytes int64, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: timeout},
		maxBytes:  maxBytes,
		authHosts: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// TwilioHosts are the hosts serving Twilio media.
var TwilioHosts = []string{"api.twilio.com", "media.twiliocdn.com"}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*adapter.Media, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("media url %q: %w", rawURL, domain.ErrUnsupportedMedium)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if _, ok := f.authHosts[strings.ToLower(u.Hostname())]; ok && f.user != "" {
		req.SetBasicAuth(f.user, f.pass)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download media: http %d", resp.StatusCode)
	}

	ct, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("content type %q: %w", resp.Header.Get("Content-Type"), domain.ErrMediaNotImage)
	}
	if f.maxBytes > 0 && resp.ContentLength > f.maxBytes {
		return nil, domain.ErrMediaTooLarge
	}

	r := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		r = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read media: %w", err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, domain.ErrMediaTooLarge
	}
	return &adapter.Media{Data: data, ContentType: ct}, nil
}
