package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/multierr"

	"github.com/Koora7334/minecraft-launcher-core/internal/fsutil"
)

const (
	// pendingSuffix marks files still being written. The destination
	// only ever exists in a complete, validated form.
	pendingSuffix = ".pending"

	// defaultFileMode is used when the request does not specify one.
	defaultFileMode = os.FileMode(0o644)
)

var (
	errNoURLs        = errors.New("no urls to download from")
	errNoDestination = errors.New("destination path is empty")
)

// ProgressEvent describes a slice of a transfer in flight.
type ProgressEvent struct {
	// URL is the candidate location the bytes come from.
	URL string
	// Delta is the size of the chunk just received, 0 for the opening event.
	Delta int64
	// Written is the number of bytes received so far.
	Written int64
	// Total is the expected size, or -1 when the server did not report one.
	Total int64
}

// ProgressFunc receives transfer progress. Implementations must be fast,
// the callback runs on the download path.
type ProgressFunc func(event ProgressEvent)

// Request describes a single file to fetch.
type Request struct {
	// URLs are candidate locations tried in order until one succeeds.
	URLs []string
	// Destination is the path the finished file ends up at.
	Destination string
	// Validator checks the fetched content before it replaces Destination.
	// A nil validator accepts anything.
	Validator Validator
	// Mode is applied to the destination file, defaults to 0644.
	Mode os.FileMode
	// Progress, when set, receives chunk events during the transfer.
	Progress ProgressFunc
}

// Download fetches the requested file, trying each URL in order.
//
// If the destination already exists and passes validation, no network
// traffic happens at all. Content is streamed to a ".pending" sibling
// and only renamed over the destination after validation, so a crashed
// or failed transfer never leaves a corrupt file behind. When every URL
// fails, the returned error aggregates the per-URL causes.
func (c *Client) Download(ctx context.Context, req *Request) error {
	if len(req.URLs) == 0 {
		return errNoURLs
	}

	if req.Destination == "" {
		return errNoDestination
	}

	if req.Validator != nil {
		if _, err := os.Stat(req.Destination); err == nil {
			if req.Validator.Validate(req.Destination) == nil {
				return nil
			}
		}
	}

	if err := fsutil.EnsureDir(filepath.Dir(req.Destination)); err != nil {
		return err
	}

	var errs error

	for _, rawURL := range req.URLs {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}

		err := c.downloadOne(ctx, rawURL, req)
		if err == nil {
			return nil
		}

		errs = multierr.Append(errs, fmt.Errorf("%s: %w", rawURL, err))
	}

	return fmt.Errorf("download %s: %w", filepath.Base(req.Destination), errs)
}

func (c *Client) downloadOne(ctx context.Context, rawURL string, req *Request) error {
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.retryable.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %w", resp.Status, errUnexpectedStatus)
	}

	pending := req.Destination + pendingSuffix

	if err = c.writePending(pending, rawURL, resp, req.Progress); err != nil {
		return err
	}

	if req.Validator != nil {
		if err = req.Validator.Validate(pending); err != nil {
			_ = os.Remove(pending)
			return err
		}
	}

	return finalize(pending, req.Destination, req.Mode)
}

func (c *Client) writePending(
	pending, rawURL string,
	resp *http.Response,
	progress ProgressFunc,
) error {
	out, err := os.Create(pending) //nolint:gosec // Paths come from the install plan, not user input.
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}

	body := wrapProgress(resp.Body, rawURL, resp.ContentLength, progress)

	if _, err = io.Copy(out, body); err != nil {
		_ = out.Close()
		_ = os.Remove(pending)

		return fmt.Errorf("write pending file: %w", err)
	}

	if err = out.Close(); err != nil {
		_ = os.Remove(pending)
		return fmt.Errorf("close pending file: %w", err)
	}

	return nil
}

// finalize moves the validated pending file into place with the
// requested mode.
func finalize(pending, destination string, mode os.FileMode) error {
	if mode == 0 {
		mode = defaultFileMode
	}

	if err := os.Chmod(pending, mode); err != nil {
		_ = os.Remove(pending)
		return fmt.Errorf("chmod pending file: %w", err)
	}

	if err := os.Remove(destination); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = os.Remove(pending)
		return fmt.Errorf("remove stale file: %w", err)
	}

	if err := os.Rename(pending, destination); err != nil {
		_ = os.Remove(pending)
		return fmt.Errorf("finalize file: %w", err)
	}

	return nil
}

// progressReader reports consumed bytes to a callback as they pass through.
type progressReader struct {
	inner    io.Reader
	url      string
	written  int64
	total    int64
	callback ProgressFunc
}

func wrapProgress(r io.Reader, url string, total int64, callback ProgressFunc) io.Reader {
	if callback == nil {
		return r
	}

	callback(ProgressEvent{URL: url, Total: total})

	return &progressReader{
		inner:    r,
		url:      url,
		total:    total,
		callback: callback,
	}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.inner.Read(b)
	if n > 0 {
		p.written += int64(n)
		p.callback(ProgressEvent{
			URL:     p.url,
			Delta:   int64(n),
			Written: p.written,
			Total:   p.total,
		})
	}

	return n, err
}
