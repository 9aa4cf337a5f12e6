package fetch

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"

	"golang.org/x/net/http2"
)

var (
	// ErrSegmentFetch matches every *SegmentFetchError.
	ErrSegmentFetch = errors.New("segment fetch failed")
	// ErrTransient marks a connection that was reset or aborted mid-transfer.
	ErrTransient = errors.New("transient network failure")
)

// SegmentFetchError is a non-retryable failure fetching a segment or the source file.
type SegmentFetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *SegmentFetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *SegmentFetchError) Unwrap() error {
	return e.Err
}

func (e *SegmentFetchError) Is(target error) bool {
	return target == ErrSegmentFetch
}

// RetryExhaustedError is returned only when a retry ceiling is configured and
// every attempt ended in a transient failure.
type RetryExhaustedError struct {
	URL      string
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("fetch %s: gave up after %d attempts: %v", e.URL, e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() []error {
	return []error{ErrTransient, e.Last}
}

// IsTransient reports whether err is a connection reset or abort that is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrTransient) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var streamErr http2.StreamError
	if errors.As(err, &streamErr) {
		return streamResetTransient(streamErr.Code)
	}

	var goAway http2.GoAwayError
	if errors.As(err, &goAway) {
		return streamResetTransient(goAway.ErrCode)
	}

	var connErr http2.ConnectionError
	if errors.As(err, &connErr) {
		return streamResetTransient(http2.ErrCode(connErr))
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		msg := opErr.Err.Error()
		return strings.Contains(msg, "connection reset") || strings.Contains(msg, "connection aborted")
	}

	return false
}

// streamResetTransient reports whether an HTTP/2 reset code means the peer
// dropped the stream rather than rejected the request.
func streamResetTransient(code http2.ErrCode) bool {
	switch code {
	case http2.ErrCodeNo,
		http2.ErrCodeInternal,
		http2.ErrCodeCancel,
		http2.ErrCodeRefusedStream,
		http2.ErrCodeConnect,
		http2.ErrCodeEnhanceYourCalm:
		return true
	default:
		return false
	}
}
