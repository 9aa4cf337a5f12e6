package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vodrip/vodrip/filesystem"
	"github.com/vodrip/vodrip/rendition"
)

func init() {
	filesystem.SetMemMapFs()
}

const fullManifest = `{
  "formats": {
    "mp4-http": {
      "videoCodec": "avc1.64002a",
      "audioCodec": "mp4a.40.2",
      "origin": {"location": "https://cdn.example/source.mp4"}
    },
    "mp4-hls": {
      "videoCodec": "avc1.4d401f",
      "audioCodec": "mp4a.40.5",
      "encodings": [
        {"videoWidth": 640, "videoHeight": 360, "videoKbps": 800, "audioKbps": 64, "location": "https://cdn.example/360.m3u8"},
        {"videoWidth": 1280, "videoHeight": 720, "videoKbps": 2000, "audioKbps": 128, "location": "https://cdn.example/720.m3u8"},
        {"videoWidth": 854, "videoHeight": 480, "videoKbps": 1200, "audioKbps": 96, "location": "https://cdn.example/480.m3u8"}
      ]
    }
  }
}`

const sourceOnlyManifest = `{
  "formats": {
    "mp4-http": {
      "videoCodec": "avc1",
      "audioCodec": "mp4a",
      "origin": {"location": "https://cdn.example/source.mp4"}
    }
  }
}`

func decode(raw string) *Manifest {
	var m Manifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		panic(err)
	}
	return &m
}

func TestParse(t *testing.T) {
	Convey("Given a manifest with both formats", t, func() {
		renditions := Parse(decode(fullManifest), "streamer", "late-night")

		Convey("The source comes first, then every encoding in manifest order", func() {
			all := renditions.All()
			So(all, ShouldHaveLength, 4)
			So(all[0].Kind, ShouldEqual, rendition.Source)
			So(all[0].URL, ShouldEqual, "https://cdn.example/source.mp4")
			So(all[0].VideoCodec, ShouldEqual, "avc1.64002a")

			So(all[1].Resolution(), ShouldEqual, "640x360")
			So(all[2].Resolution(), ShouldEqual, "1280x720")
			So(all[3].Resolution(), ShouldEqual, "854x480")
			So(all[3].PlaylistURL, ShouldEqual, "https://cdn.example/480.m3u8")
			So(all[3].VideoKbps, ShouldEqual, 1200)
			So(all[3].AudioKbps, ShouldEqual, 96)
		})

		Convey("Compressed renditions carry the HLS codecs", func() {
			for _, r := range renditions.Compressed() {
				So(r.Kind, ShouldEqual, rendition.Compressed)
				So(r.VideoCodec, ShouldEqual, "avc1.4d401f")
				So(r.AudioCodec, ShouldEqual, "mp4a.40.5")
			}
		})
	})

	Convey("Given a manifest without mp4-hls", t, func() {
		renditions := Parse(decode(sourceOnlyManifest), "streamer", "late-night")

		Convey("Only the source is produced", func() {
			So(renditions.All(), ShouldHaveLength, 1)
			So(renditions.HasHLS(), ShouldBeFalse)
			src, err := renditions.Source()
			So(err, ShouldBeNil)
			So(src.Filename(), ShouldEqual, "streamer-late-night-source.mp4")
		})
	})

	Convey("Given a manifest without mp4-http", t, func() {
		m := decode(fullManifest)
		m.Formats.HTTP = nil
		renditions := Parse(m, "streamer", "late-night")

		Convey("Asking for the source fails with ErrMissingFormat", func() {
			_, err := renditions.Source()
			So(errors.Is(err, ErrMissingFormat), ShouldBeTrue)
			So(renditions.All(), ShouldHaveLength, 3)
		})
	})

	Convey("Given an HLS format with no encodings", t, func() {
		renditions := Parse(decode(`{"formats": {"mp4-hls": {"encodings": []}}}`), "u", "t")
		So(renditions.HasHLS(), ShouldBeTrue)
		So(renditions.Compressed(), ShouldBeEmpty)
	})
}

func TestResolver(t *testing.T) {
	Convey("Given a manifest server", t, func() {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			if r.URL.Path != "/manifest.json" {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte(fullManifest))
		}))
		defer server.Close()

		Convey("Without a cache every call fetches", func() {
			resolver := &Resolver{Client: server.Client()}
			_, err := resolver.Resolve(context.Background(), server.URL+"/manifest.json")
			So(err, ShouldBeNil)
			m, err := resolver.Resolve(context.Background(), server.URL+"/manifest.json")
			So(err, ShouldBeNil)
			So(m.Formats.HLS.Encodings, ShouldHaveLength, 3)
			So(hits.Load(), ShouldEqual, 2)
		})

		Convey("With a cache the second call is served locally", func() {
			cache := NewCache(filepath.Join("/cache", t.Name()+".json"), time.Hour)
			resolver := &Resolver{Client: server.Client(), Cache: cache}
			_, err := resolver.Resolve(context.Background(), server.URL+"/manifest.json")
			So(err, ShouldBeNil)
			m, err := resolver.Resolve(context.Background(), server.URL+"/manifest.json")
			So(err, ShouldBeNil)
			So(m.Formats.HTTP.Origin.Location, ShouldEqual, "https://cdn.example/source.mp4")
			So(hits.Load(), ShouldEqual, 1)
		})

		Convey("Error statuses are reported", func() {
			resolver := &Resolver{Client: server.Client()}
			_, err := resolver.Resolve(context.Background(), server.URL+"/missing.json")
			So(err, ShouldNotBeNil)
		})
	})
}
