package adapter

import "context"

// Media is a downloaded attachment.
type Media struct {
	Data        []byte
	ContentType string
}

// MediaFetcher downloads an inbound attachment by URL.
type MediaFetcher interface {
	Fetch(ctx context.Context, url string) (*Media, error)
}
