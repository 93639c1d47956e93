package fetcher

import (
	"errors"
	"time"
)

// wraps every failure to obtain source material. these happen before any
// billable call and map to a 400.
var ErrFetch = errors.New("fetch failed")

const (
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// only this many photos are sent to the extractor
	MaxPhotos = 4

	// per-photo ceiling on decoded size
	MaxPhotoBytes = 5 << 20

	// transcripts shorter than this cannot plausibly hold a recipe
	MinTranscriptLength = 50
)

// what a video page yielded
type VideoContent struct {
	VideoID     string `json:"videoId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// captions when available, otherwise the description
	Transcript   string `json:"transcript"`
	FromCaptions bool   `json:"fromCaptions"`
}

// a validated photo ready to send to a vision model
type Image struct {
	MediaType string
	// base64 payload without the data URI prefix
	Data string
}

type Option func(*options)

type options struct {
	timeout   time.Duration
	userAgent string
	watchBase string
}

// overrides the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// points video lookups at another host (tests)
func WithWatchBase(base string) Option {
	return func(o *options) { o.watchBase = base }
}

func buildOptions(opts []Option) options {
	o := options{
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		watchBase: "https://www.youtube.com",
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
