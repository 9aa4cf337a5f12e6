package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vodrip/vodrip/fetch"
	"github.com/vodrip/vodrip/filesystem"
	"github.com/vodrip/vodrip/manifest"
	"github.com/vodrip/vodrip/page"
	"github.com/vodrip/vodrip/playlist"
	"github.com/vodrip/vodrip/where"
)

func init() {
	filesystem.SetMemMapFs()
}

var segments = [][]byte{
	bytes.Repeat([]byte{0x47, 0x01}, 3000),
	[]byte("middle segment"),
	bytes.Repeat([]byte{0x47, 0xff}, 5000),
}

type recorder struct {
	states   []State
	progress []Progress
}

func (r *recorder) OnState(state State)          { r.states = append(r.states, state) }
func (r *recorder) OnProgress(progress Progress) { r.progress = append(r.progress, progress) }

// platform fakes the page, manifest, playlist and file hosts of one VOD. The
// source file is the concatenation of the segments.
type platform struct {
	*httptest.Server
	manifest       string
	pageBody       string
	manifestHits   atomic.Int32
	playlistHits   atomic.Int32
	failingSegment atomic.Int32
}

func newPlatform(withHLS bool) *platform {
	p := &platform{}
	p.failingSegment.Store(-1)
	mux := http.NewServeMux()
	p.Server = httptest.NewServer(mux)

	p.pageBody = fmt.Sprintf(`<html><head>
	<script>__context = {"vod": {"title": "Speedrun", "titleSlug": "any-percent",
		"userSlug": "runner", "_links": {"manifest": {"href": "%s/manifest.json"}}}};</script>
</head></html>`, p.URL)

	hls := ""
	if withHLS {
		hls = fmt.Sprintf(`, "mp4-hls": {"videoCodec": "avc1", "audioCodec": "mp4a", "encodings": [
			{"videoWidth": 1280, "videoHeight": 720, "videoKbps": 2000, "audioKbps": 128, "location": "%[1]s/720.m3u8"},
			{"videoWidth": 640, "videoHeight": 360, "videoKbps": 800, "audioKbps": 64, "location": "%[1]s/360.m3u8"}
		]}`, p.URL)
	}
	p.manifest = fmt.Sprintf(`{"formats": {"mp4-http": {"videoCodec": "avc1", "audioCodec": "mp4a",
		"origin": {"location": "%s/source.mp4"}}%s}}`, p.URL, hls)

	mux.HandleFunc("/vod", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(p.pageBody))
	})
	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		p.manifestHits.Add(1)
		_, _ = w.Write([]byte(p.manifest))
	})
	mux.HandleFunc("/720.m3u8", func(w http.ResponseWriter, r *http.Request) {
		p.playlistHits.Add(1)
		var b strings.Builder
		b.WriteString("#EXTM3U\r\n#EXT-X-TARGETDURATION:10\r\n")
		for i := range segments {
			fmt.Fprintf(&b, "#EXTINF:10.000,\r\n%s/seg/%d.ts\r\n", p.URL, i)
		}
		b.WriteString("#EXT-X-ENDLIST\r\n")
		_, _ = w.Write([]byte(b.String()))
	})
	mux.HandleFunc("/360.m3u8", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/seg/", func(w http.ResponseWriter, r *http.Request) {
		var i int
		if _, err := fmt.Sscanf(r.URL.Path, "/seg/%d.ts", &i); err != nil || i >= len(segments) || int32(i) == p.failingSegment.Load() {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(segments[i])
	})
	mux.HandleFunc("/source.mp4", func(w http.ResponseWriter, r *http.Request) {
		body := bytes.Join(segments, nil)
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		_, _ = w.Write(body)
	})

	return p
}

func (p *platform) pipeline() (*Pipeline, *recorder) {
	pipeline := New(p.Client(), fetch.RetryPolicy{}, nil)
	rec := &recorder{}
	pipeline.Observer = rec
	return pipeline, rec
}

func stagingDirs() []string {
	infos, err := filesystem.API().ReadDir(where.Temp())
	if err != nil {
		return nil
	}

	var dirs []string
	for _, info := range infos {
		if strings.HasPrefix(info.Name(), "job-") {
			dirs = append(dirs, info.Name())
		}
	}
	return dirs
}

func TestParseSelection(t *testing.T) {
	Convey("ParseSelection", t, func() {
		for input, want := range map[string]Selection{"0": 0, "source": 0, "Source": 0, "1": 1, " 3 ": 3, "-1": -1} {
			s, err := ParseSelection(input)
			So(err, ShouldBeNil)
			So(s, ShouldEqual, want)
		}

		_, err := ParseSelection("best")
		So(errors.Is(err, ErrInvalidSelection), ShouldBeTrue)
	})
}

func TestSelect(t *testing.T) {
	full := &manifest.Manifest{Formats: manifest.Formats{
		HTTP: &manifest.HTTPFormat{VideoCodec: "avc1"},
		HLS: &manifest.HLSFormat{Encodings: []manifest.Encoding{
			{VideoWidth: 1280, VideoHeight: 720},
			{VideoWidth: 640, VideoHeight: 360},
		}},
	}}

	Convey("Given a manifest with a source and two compressed renditions", t, func() {
		renditions := manifest.Parse(full, "u", "t")

		Convey("0 selects the source", func() {
			r, err := Select(renditions, 0)
			So(err, ShouldBeNil)
			So(r.Resolution(), ShouldEqual, "Source")
		})

		Convey("1 and 2 select the compressed renditions in manifest order", func() {
			r, err := Select(renditions, 1)
			So(err, ShouldBeNil)
			So(r.Resolution(), ShouldEqual, "1280x720")

			r, err = Select(renditions, 2)
			So(err, ShouldBeNil)
			So(r.Resolution(), ShouldEqual, "640x360")
		})

		Convey("3 and -1 are rejected instead of falling back", func() {
			_, err := Select(renditions, 3)
			So(errors.Is(err, ErrInvalidSelection), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "--list")

			_, err = Select(renditions, -1)
			So(errors.Is(err, ErrInvalidSelection), ShouldBeTrue)
		})
	})

	Convey("Given a manifest without mp4-hls", t, func() {
		renditions := manifest.Parse(&manifest.Manifest{Formats: manifest.Formats{
			HTTP: &manifest.HTTPFormat{},
		}}, "u", "t")

		Convey("The source is still selectable", func() {
			_, err := Select(renditions, SourceSelection)
			So(err, ShouldBeNil)
		})

		Convey("Any compressed selection is a missing format", func() {
			_, err := Select(renditions, 1)
			So(errors.Is(err, manifest.ErrMissingFormat), ShouldBeTrue)
		})
	})

	Convey("Given a manifest without mp4-http", t, func() {
		renditions := manifest.Parse(&manifest.Manifest{Formats: manifest.Formats{
			HLS: &manifest.HLSFormat{Encodings: []manifest.Encoding{{VideoWidth: 1}}},
		}}, "u", "t")

		Convey("Selecting the source is a missing format", func() {
			_, err := Select(renditions, SourceSelection)
			So(errors.Is(err, manifest.ErrMissingFormat), ShouldBeTrue)
		})
	})
}

func TestPipeline(t *testing.T) {
	ctx := context.Background()

	Convey("Given a platform serving a VOD with both formats", t, func() {
		p := newPlatform(true)
		defer p.Close()
		pipeline, rec := p.pipeline()

		target, err := pipeline.Resolve(ctx, p.URL+"/vod")
		So(err, ShouldBeNil)
		So(target.Context.VOD.UserSlug, ShouldEqual, "runner")
		So(target.Renditions.Compressed(), ShouldHaveLength, 2)
		So(rec.states, ShouldResemble, []State{ResolvingContext, ResolvingManifest, AwaitingSelection})

		Convey("Downloading quality 1 reassembles the segments in order", func() {
			job, err := pipeline.Download(ctx, target.Renditions, 1, "/videos")
			So(err, ShouldBeNil)
			So(job.Output, ShouldEqual, "/videos/runner-any-percent-1280x720.mp4")
			So(job.Completed, ShouldEqual, len(segments))
			So(rec.states[len(rec.states)-3:], ShouldResemble, []State{CompressedDownload, Reassembling, Done})

			data, err := filesystem.API().ReadFile(job.Output)
			So(err, ShouldBeNil)
			So(bytes.Equal(data, bytes.Join(segments, nil)), ShouldBeTrue)

			Convey("And the staging directory is removed", func() {
				exists, err := filesystem.API().DirExists(job.StagingDir)
				So(err, ShouldBeNil)
				So(exists, ShouldBeFalse)
			})

			Convey("And the source download is byte-identical", func() {
				sourceJob, err := pipeline.Download(ctx, target.Renditions, SourceSelection, "/videos")
				So(err, ShouldBeNil)
				So(sourceJob.Output, ShouldEqual, "/videos/runner-any-percent-source.mp4")

				source, err := filesystem.API().ReadFile(sourceJob.Output)
				So(err, ShouldBeNil)
				So(bytes.Equal(source, data), ShouldBeTrue)
			})
		})

		Convey("Listing estimates sizes and reuses the playlist for the download", func() {
			entries, err := pipeline.List(ctx, target.Renditions)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 3)

			So(entries[0].String(), ShouldEqual, fmt.Sprintf("0 - Source - %0.2f MB", float64(len(bytes.Join(segments, nil)))/1e6))
			// 2128 kbps for 30 seconds
			So(entries[1].String(), ShouldEqual, "1 - 1280x720 - ~7.98 MB")
			So(entries[2].String(), ShouldEqual, "2 - 640x360 - unknown size")

			_, err = pipeline.Download(ctx, target.Renditions, 1, "/videos")
			So(err, ShouldBeNil)
			So(p.playlistHits.Load(), ShouldEqual, 1)
		})

		Convey("A missing segment aborts the job and cleans up", func() {
			p.failingSegment.Store(1)
			before := len(stagingDirs())

			_, err := pipeline.Download(ctx, target.Renditions, 1, "/failed")
			So(errors.Is(err, fetch.ErrSegmentFetch), ShouldBeTrue)
			So(rec.states[len(rec.states)-1], ShouldEqual, Failed)
			So(len(stagingDirs()), ShouldEqual, before)

			exists, _ := filesystem.API().Exists("/failed/runner-any-percent-1280x720.mp4")
			So(exists, ShouldBeFalse)
		})

		Convey("A playlist that cannot be fetched is a playlist error", func() {
			_, err := pipeline.Download(ctx, target.Renditions, 2, "/videos")
			So(errors.Is(err, playlist.ErrPlaylistFetch), ShouldBeTrue)
		})

		Convey("An out of range quality fails before any transfer", func() {
			_, err := pipeline.Download(ctx, target.Renditions, 5, "/videos")
			So(errors.Is(err, ErrInvalidSelection), ShouldBeTrue)
			So(p.playlistHits.Load(), ShouldEqual, 0)
		})
	})

	Convey("Given a platform without HLS", t, func() {
		p := newPlatform(false)
		defer p.Close()
		pipeline, _ := p.pipeline()

		target, err := pipeline.Resolve(ctx, p.URL+"/vod")
		So(err, ShouldBeNil)

		Convey("The source path works", func() {
			_, err := pipeline.Download(ctx, target.Renditions, SourceSelection, "/nohls")
			So(err, ShouldBeNil)
		})

		Convey("A compressed selection is a missing format", func() {
			_, err := pipeline.Download(ctx, target.Renditions, 1, "/nohls")
			So(errors.Is(err, manifest.ErrMissingFormat), ShouldBeTrue)
		})
	})

	Convey("Given a page without a context", t, func() {
		p := newPlatform(true)
		defer p.Close()
		p.pageBody = "<html><body>nothing here</body></html>"
		pipeline, rec := p.pipeline()

		Convey("Resolve fails without requesting the manifest", func() {
			_, err := pipeline.Resolve(ctx, p.URL+"/vod")
			So(errors.Is(err, page.ErrContextNotFound), ShouldBeTrue)
			So(p.manifestHits.Load(), ShouldEqual, 0)
			So(rec.states, ShouldResemble, []State{ResolvingContext, Failed})
		})
	})
}
