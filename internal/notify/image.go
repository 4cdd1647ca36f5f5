package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/soyeahso/mjrelay/internal/domain"
	"github.com/soyeahso/mjrelay/internal/logging"
)

const downloadTimeout = 10 * time.Second

// Fetcher obtains rendered images for delivery. Without a proxy the image
// URL is handed to the chat transport to fetch itself; with a proxy the
// bytes are downloaded here (the CDN may be unreachable from the transport)
// and optionally persisted to a local directory.
type Fetcher struct {
	imagesDir string
	client    *http.Client // nil when no proxy is configured
	log       *logging.Logger
}

// NewFetcher creates an image fetcher. proxyURL and imagesDir may be empty.
func NewFetcher(proxyURL, imagesDir string, log *logging.Logger) (*Fetcher, error) {
	f := &Fetcher{imagesDir: imagesDir, log: log.Sub("images")}
	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("parsing image proxy url: %w", err)
		}
		f.client = &http.Client{
			Timeout:   downloadTimeout,
			Transport: &http.Transport{Proxy: http.ProxyURL(parsed)},
		}
	}
	return f, nil
}

// Fetch returns the image for rawURL. Direct mode returns a URL reference;
// proxy mode returns downloaded bytes.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (domain.Image, error) {
	filename := path.Base(rawURL)

	if f.client == nil {
		return domain.Image{URL: rawURL, Filename: filename}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.Image{}, fmt.Errorf("building image request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.Image{}, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Image{}, fmt.Errorf("downloading image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Image{}, fmt.Errorf("reading image body: %w", err)
	}

	if f.imagesDir != "" {
		dst := filepath.Join(f.imagesDir, filename)
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			// The copy on disk is a convenience; delivery goes ahead.
			f.log.Error().Err(err).Str("path", dst).Msg("saving image failed")
		}
	}

	return domain.Image{Filename: filename, Data: data}, nil
}
