// Package fetch streams remote files to disk, retrying transfers that die with a
// connection reset.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/vodrip/vodrip/filesystem"
	"github.com/vodrip/vodrip/log"
	"github.com/vodrip/vodrip/network"
	"github.com/vodrip/vodrip/util"
)

// DefaultChunkSize is the read size used when Fetcher.ChunkSize is unset.
const DefaultChunkSize = 32 * 1024

// Progress receives the bytes written so far and the declared total, which is
// -1 when the server did not send a length. It restarts from zero on a retry.
type Progress func(written, total int64)

// Fetcher downloads one URL at a time to a destination path.
type Fetcher struct {
	Client     *http.Client
	Policy     RetryPolicy
	ChunkSize  int
	OnProgress Progress
}

// Fetch writes the body at url to dest, replacing whatever dest held. Connection
// resets restart the transfer from the first byte after Policy.Delay; error
// statuses fail immediately with a *SegmentFetchError.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) error {
	for attempt := 1; ; attempt++ {
		err := f.attempt(ctx, url, dest)
		if err == nil {
			return nil
		}

		if !IsTransient(err) {
			return err
		}

		entry := log.With(log.Fields{"url": url, "attempt": attempt})
		if !f.Policy.allows(attempt) {
			entry.Errorf("giving up: %v", err)
			return &RetryExhaustedError{URL: url, Attempts: attempt, Last: err}
		}

		entry.Warnf("connection lost, retrying in %s: %v", f.Policy.Delay, err)
		if err := f.Policy.wait(ctx); err != nil {
			return err
		}
	}
}

func (f *Fetcher) attempt(ctx context.Context, url, dest string) error {
	resp, err := network.Get(ctx, f.Client, url)
	if err != nil {
		return classify(ctx, url, err)
	}
	defer util.Ignore(resp.Body.Close)

	if !network.IsSuccess(resp.StatusCode) {
		return &SegmentFetchError{URL: url, Status: resp.StatusCode}
	}

	file, err := filesystem.Overwrite(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	if err := f.copy(ctx, url, file, resp.Body, resp.ContentLength); err != nil {
		_ = file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dest, err)
	}
	return nil
}

// copy moves the body to w in chunks of ChunkSize.
func (f *Fetcher) copy(ctx context.Context, url string, w io.Writer, body io.Reader, total int64) error {
	size := f.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}

	buf := make([]byte, size)
	var written int64
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return fmt.Errorf("write: %w", err)
			}
			written += int64(n)
			if f.OnProgress != nil {
				f.OnProgress(written, total)
			}
		}

		if readErr == io.EOF {
			if total >= 0 && written < total {
				return fmt.Errorf("%w: %w", ErrTransient, io.ErrUnexpectedEOF)
			}
			return nil
		}
		if readErr != nil {
			return classify(ctx, url, readErr)
		}
	}
}

// classify sorts a network error into transient, cancelled or fatal.
func classify(ctx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if IsTransient(err) {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return &SegmentFetchError{URL: url, Err: err}
}
