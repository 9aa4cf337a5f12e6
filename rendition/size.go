package rendition

import (
	"context"
	"errors"

	"github.com/samber/mo"
)

// bytesPerMB converts a declared content length to megabytes.
const bytesPerMB = 1_000_000

// kbpsMinuteToMB turns kbps·minutes into an approximate megabyte figure.
const kbpsMinuteToMB = 0.0075

// Prober supplies the remote facts a size estimate depends on.
type Prober interface {
	// ContentLength returns the declared byte length of the resource at url.
	ContentLength(ctx context.Context, url string) (int64, error)
	// Duration returns the cumulative #EXTINF duration of a playlist in seconds.
	Duration(ctx context.Context, playlistURL string) (float64, error)
}

// ErrUnknownLength is returned when the source host does not declare a length.
var ErrUnknownLength = errors.New("remote did not declare a content length")

// EstimateMB approximates the size in megabytes of a compressed rendition. It is
// a heuristic and must not be used for allocation or integrity checks.
func EstimateMB(videoKbps, audioKbps int, durationSeconds float64) float64 {
	return float64(videoKbps+audioKbps) * (durationSeconds / 60) * kbpsMinuteToMB
}

// EstimatedSize returns the size in megabytes, computing it on first use.
// Source renditions report their declared length; compressed ones use EstimateMB.
func (r *Rendition) EstimatedSize(ctx context.Context, prober Prober) (float64, error) {
	if size, ok := r.size.Get(); ok {
		return size, nil
	}

	var size float64
	switch r.Kind {
	case Source:
		length, err := prober.ContentLength(ctx, r.URL)
		if err != nil {
			return 0, err
		}
		if length < 0 {
			return 0, ErrUnknownLength
		}
		size = float64(length) / bytesPerMB
	default:
		duration, err := prober.Duration(ctx, r.PlaylistURL)
		if err != nil {
			return 0, err
		}
		size = EstimateMB(r.VideoKbps, r.AudioKbps, duration)
	}

	r.size = mo.Some(size)
	return size, nil
}
