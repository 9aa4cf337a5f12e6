package playlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/vodrip/vodrip/log"
	"github.com/vodrip/vodrip/network"
	"github.com/vodrip/vodrip/util"
)

// ErrPlaylistFetch matches every *FetchError.
var ErrPlaylistFetch = errors.New("playlist fetch failed")

// FetchError describes a failed playlist request. Status is zero when the
// request never got a response.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch playlist %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch playlist %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrPlaylistFetch
}

// Resolver fetches playlists. Each fetch is a single attempt.
type Resolver struct {
	Client *http.Client
}

// Resolve downloads and parses the playlist at url.
func (r *Resolver) Resolve(ctx context.Context, url string) (*Playlist, error) {
	log.Infof("fetching playlist %s", url)

	resp, err := network.Get(ctx, r.Client, url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer util.Ignore(resp.Body.Close)

	if !network.IsSuccess(resp.StatusCode) {
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	p := Parse(string(body))
	log.With(log.Fields{"url": url, "segments": p.Len(), "duration": p.Duration}).Debug("playlist parsed")
	return p, nil
}
