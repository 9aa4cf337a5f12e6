// Package download drives a VOD from its page URL to a finished file on disk.
package download

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"github.com/vodrip/vodrip/config"
	"github.com/vodrip/vodrip/fetch"
	"github.com/vodrip/vodrip/key"
	"github.com/vodrip/vodrip/log"
	"github.com/vodrip/vodrip/manifest"
	"github.com/vodrip/vodrip/merge"
	"github.com/vodrip/vodrip/page"
	"github.com/vodrip/vodrip/playlist"
	"github.com/vodrip/vodrip/rendition"
	"github.com/vodrip/vodrip/where"
)

// Target is a VOD page resolved up to the point where a rendition can be chosen.
type Target struct {
	URL        string
	Context    *page.Context
	Renditions *manifest.Renditions
}

// Pipeline wires the stages of a download together. It is not safe for
// concurrent use.
type Pipeline struct {
	Pages     *page.Extractor
	Manifests *manifest.Resolver
	Playlists *playlist.Resolver
	Fetcher   *fetch.Fetcher
	Observer  Observer

	playlists map[string]*playlist.Playlist
}

// New builds a pipeline around client with the given retry policy. A nil cache
// disables manifest caching.
func New(client *http.Client, policy fetch.RetryPolicy, cache *manifest.Cache) *Pipeline {
	return &Pipeline{
		Pages:     &page.Extractor{Client: client},
		Manifests: &manifest.Resolver{Client: client, Cache: cache},
		Playlists: &playlist.Resolver{Client: client},
		Fetcher:   &fetch.Fetcher{Client: client, Policy: policy},
	}
}

// FromConfig builds a pipeline from the current configuration.
func FromConfig(client *http.Client) *Pipeline {
	var cache *manifest.Cache
	if lifetime := config.ManifestLifetime(); lifetime > 0 {
		cache = manifest.NewCache(where.Manifests(), lifetime)
	}

	p := New(client, fetch.RetryPolicy{
		MaxAttempts: viper.GetInt(key.DownloaderMaxRetries),
		Delay:       config.RetryDelay(),
	}, cache)
	p.Fetcher.ChunkSize = viper.GetInt(key.DownloaderChunkSize)
	return p
}

func (p *Pipeline) observer() Observer {
	if p.Observer == nil {
		return NopObserver
	}
	return p.Observer
}

func (p *Pipeline) enter(state State) {
	log.With(log.Fields{"state": state.String()}).Debug("state changed")
	p.observer().OnState(state)
}

func (p *Pipeline) fail(err error) error {
	log.Error(err)
	p.observer().OnState(Failed)
	return err
}

// Resolve fetches the page and its manifest. A page without a context never
// triggers a manifest request.
func (p *Pipeline) Resolve(ctx context.Context, url string) (*Target, error) {
	p.enter(ResolvingContext)
	pageCtx, err := p.Pages.Extract(ctx, url)
	if err != nil {
		return nil, p.fail(err)
	}

	p.enter(ResolvingManifest)
	m, err := p.Manifests.Resolve(ctx, pageCtx.VOD.ManifestURL())
	if err != nil {
		return nil, p.fail(err)
	}

	renditions := manifest.Parse(m, pageCtx.VOD.UserSlug, pageCtx.VOD.TitleSlug)
	log.With(log.Fields{
		"url":        url,
		"source":     renditions.HasSource(),
		"compressed": len(renditions.Compressed()),
	}).Info("renditions resolved")

	p.enter(AwaitingSelection)
	return &Target{URL: url, Context: pageCtx, Renditions: renditions}, nil
}

// Download writes the selected rendition into outDir and returns the finished
// job. The job's staging directory is gone by the time Download returns.
func (p *Pipeline) Download(ctx context.Context, renditions *manifest.Renditions, selection Selection, outDir string) (*Job, error) {
	r, err := Select(renditions, selection)
	if err != nil {
		return nil, p.fail(err)
	}

	job, err := newJob(r, outDir)
	if err != nil {
		return nil, p.fail(err)
	}
	defer job.cleanup()

	entry := log.With(log.Fields{"job": job.ID, "rendition": r.String(), "output": job.Output})
	entry.Info("download started")
	started := time.Now()

	switch r.Kind {
	case rendition.Source:
		err = p.downloadSource(ctx, job)
	default:
		err = p.downloadCompressed(ctx, job)
	}
	if err != nil {
		return nil, p.fail(err)
	}

	entry.WithField("elapsed", time.Since(started).String()).Info("download finished")
	p.enter(Done)
	return job, nil
}

func (p *Pipeline) downloadSource(ctx context.Context, job *Job) error {
	p.enter(SourceDownload)

	fetcher := *p.Fetcher
	fetcher.OnProgress = func(written, total int64) {
		p.observer().OnProgress(Progress{State: SourceDownload, Done: written, Total: total})
	}

	return fetcher.Fetch(ctx, job.Rendition.URL, job.Output)
}

func (p *Pipeline) downloadCompressed(ctx context.Context, job *Job) error {
	p.enter(CompressedDownload)

	pl, err := p.playlist(ctx, job.Rendition.PlaylistURL)
	if err != nil {
		return err
	}
	job.Segments = pl.Segments

	total := int64(len(job.Segments))
	p.observer().OnProgress(Progress{State: CompressedDownload, Total: total})

	started := time.Now()
	for i, segment := range job.Segments {
		dest := job.segmentPath(i)
		if err := p.Fetcher.Fetch(ctx, segment, dest); err != nil {
			return fmt.Errorf("segment %d of %d: %w", i+1, total, err)
		}

		job.Staged = append(job.Staged, dest)
		job.Completed++
		p.observer().OnProgress(Progress{State: CompressedDownload, Done: int64(job.Completed), Total: total})
	}
	log.With(log.Fields{"job": job.ID, "segments": total, "elapsed": time.Since(started).String()}).Info("segments fetched")

	p.enter(Reassembling)
	merger := &merge.Merger{OnProgress: func(done, total int) {
		p.observer().OnProgress(Progress{State: Reassembling, Done: int64(done), Total: int64(total)})
	}}

	return merger.Merge(job.Staged, job.Output)
}

// playlist resolves url once per pipeline, so estimating sizes and then
// downloading the same rendition costs one request.
func (p *Pipeline) playlist(ctx context.Context, url string) (*playlist.Playlist, error) {
	if pl, ok := p.playlists[url]; ok {
		return pl, nil
	}

	pl, err := p.Playlists.Resolve(ctx, url)
	if err != nil {
		return nil, err
	}

	if p.playlists == nil {
		p.playlists = make(map[string]*playlist.Playlist)
	}
	p.playlists[url] = pl
	return pl, nil
}
