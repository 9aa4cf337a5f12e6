package download

import (
	"context"
	"fmt"

	"github.com/samber/mo"
	"github.com/vodrip/vodrip/fetch"
	"github.com/vodrip/vodrip/log"
	"github.com/vodrip/vodrip/manifest"
	"github.com/vodrip/vodrip/network"
	"github.com/vodrip/vodrip/rendition"
	"github.com/vodrip/vodrip/util"
)

// ContentLength asks the host for the size of url with a HEAD request, falling
// back to the headers of a GET whose body is discarded unread.
func (p *Pipeline) ContentLength(ctx context.Context, url string) (int64, error) {
	resp, err := network.Head(ctx, p.Fetcher.Client, url)
	if err == nil {
		util.Ignore(resp.Body.Close)
		if network.IsSuccess(resp.StatusCode) && resp.ContentLength >= 0 {
			return resp.ContentLength, nil
		}
	}

	resp, err = network.Get(ctx, p.Fetcher.Client, url)
	if err != nil {
		return 0, err
	}
	defer util.Ignore(resp.Body.Close)

	if !network.IsSuccess(resp.StatusCode) {
		return 0, &fetch.SegmentFetchError{URL: url, Status: resp.StatusCode}
	}
	return resp.ContentLength, nil
}

// Duration returns the total #EXTINF duration of the playlist at url.
func (p *Pipeline) Duration(ctx context.Context, url string) (float64, error) {
	pl, err := p.playlist(ctx, url)
	if err != nil {
		return 0, err
	}
	return pl.Duration, nil
}

// Entry is one line of a rendition listing.
type Entry struct {
	Selection Selection            `json:"selection"`
	Rendition *rendition.Rendition `json:"rendition"`
	// SizeMB is absent when the size could not be determined.
	SizeMB mo.Option[float64] `json:"sizeMb"`
}

// Estimated reports whether the size is a bitrate estimate rather than a declared length.
func (e *Entry) Estimated() bool {
	return e.Rendition.Kind == rendition.Compressed
}

func (e *Entry) size() string {
	size, ok := e.SizeMB.Get()
	if !ok {
		return "unknown size"
	}

	if e.Estimated() {
		return fmt.Sprintf("~%0.2f MB", size)
	}
	return fmt.Sprintf("%0.2f MB", size)
}

func (e *Entry) String() string {
	return fmt.Sprintf("%d - %s - %s", int(e.Selection), e.Rendition.Resolution(), e.size())
}

// List returns the selectable renditions with their sizes. A size that cannot
// be determined is logged and left empty instead of failing the listing.
func (p *Pipeline) List(ctx context.Context, renditions *manifest.Renditions) ([]*Entry, error) {
	var entries []*Entry

	add := func(selection Selection, r *rendition.Rendition) error {
		entry := &Entry{Selection: selection, Rendition: r}

		size, err := r.EstimatedSize(ctx, p)
		switch {
		case err == nil:
			entry.SizeMB = mo.Some(size)
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			log.With(log.Fields{"rendition": r.String()}).Warnf("estimating size: %v", err)
		}

		entries = append(entries, entry)
		return nil
	}

	if source, err := renditions.Source(); err == nil {
		if err := add(SourceSelection, source); err != nil {
			return nil, err
		}
	}

	for i, r := range renditions.Compressed() {
		if err := add(Selection(i+1), r); err != nil {
			return nil, err
		}
	}

	return entries, nil
}
