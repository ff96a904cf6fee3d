package download

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/chenjicheng/upmc/internal/branding"
	"github.com/chenjicheng/upmc/internal/failure"
)

// PartSuffix is appended to a destination while it is being written.
const PartSuffix = ".part"

// Default timeouts.
const (
	DefaultRequestTimeout  = 30 * time.Second
	DefaultDownloadTimeout = 600 * time.Second
)

// ProgressFunc receives the bytes written so far and the expected total.
// total is -1 when the server did not send a Content-Length.
type ProgressFunc func(done, total int64)

// Client performs HTTP GETs with the updater's User-Agent and timeouts.
type Client struct {
	httpClient      *http.Client
	requestTimeout  time.Duration
	downloadTimeout time.Duration
	userAgent       string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeouts sets the document and artifact timeouts.
func WithTimeouts(request, download time.Duration) Option {
	return func(cl *Client) {
		if request > 0 {
			cl.requestTimeout = request
		}
		if download > 0 {
			cl.downloadTimeout = download
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// New creates a Client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient:      http.DefaultClient,
		requestTimeout:  DefaultRequestTimeout,
		downloadTimeout: DefaultDownloadTimeout,
		userAgent:       branding.CLIName() + "-updater",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, failure.Wrap(err, failure.RemoteDataMalformed, "creating request for "+url)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, failure.Wrap(err, failure.NetworkUnavailable, "fetching "+url)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, failure.Errorf(failure.NetworkUnavailable, "fetching %s: server returned status %d", url, resp.StatusCode)
	}
	return resp, nil
}

// GetBytes reads the whole body of url.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure.Wrap(err, failure.NetworkUnavailable, "reading response body of "+url)
	}
	return body, nil
}

// GetJSON decodes the JSON body of url into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.GetBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return failure.Wrap(err, failure.RemoteDataMalformed, "parsing JSON from "+url)
	}
	return nil
}

// ToFile streams url to dest via dest+".part". The part file is recreated on
// every call. progress may be nil.
func (c *Client) ToFile(ctx context.Context, url, dest string, progress ProgressFunc) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, failure.WrapPath(err, failure.Filesystem, "creating directory", filepath.Dir(dest))
	}

	resp, err := c.get(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	part := dest + PartSuffix
	n, err := writeBody(resp, part, progress)
	if err != nil {
		os.Remove(part)
		return 0, err
	}

	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		return 0, failure.WrapPath(err, failure.Filesystem, "moving download into place", dest)
	}
	log.WithFields(log.Fields{"url": url, "bytes": n}).Debug("download complete")
	return n, nil
}

func writeBody(resp *http.Response, part string, progress ProgressFunc) (int64, error) {
	f, err := os.Create(part)
	if err != nil {
		return 0, failure.WrapPath(err, failure.Filesystem, "creating download file", part)
	}
	defer f.Close()

	total := resp.ContentLength
	if total <= 0 {
		total = -1
	}
	var downloaded int64

	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := f.Write(buf[:n]); writeErr != nil {
				return 0, failure.WrapPath(writeErr, failure.Filesystem, "writing download", part)
			}
			downloaded += int64(n)
			if progress != nil {
				progress(downloaded, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return 0, failure.Wrap(readErr, failure.NetworkUnavailable, "reading download stream")
		}
	}
	if total > 0 && downloaded != total {
		return 0, failure.Errorf(failure.NetworkUnavailable, "download truncated: got %d of %d bytes", downloaded, total)
	}
	if err := f.Close(); err != nil {
		return 0, failure.WrapPath(err, failure.Filesystem, "closing download", part)
	}
	return downloaded, nil
}

