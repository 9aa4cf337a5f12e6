package playlist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given the reference playlist", t, func() {
		p := Parse("#EXTM3U\n#EXTINF:9.009,\nseg0.ts\n#EXTINF:9.009,\nseg1.ts\n#EXT-X-ENDLIST\n")

		Convey("Segments and duration are extracted", func() {
			So(p.Segments, ShouldResemble, []string{"seg0.ts", "seg1.ts"})
			So(p.Duration, ShouldAlmostEqual, 18.018, 1e-9)
			So(p.Len(), ShouldEqual, 2)
		})
	})

	Convey("Given segment lines out of order and repeated", t, func() {
		p := Parse("b.ts\na.ts\nb.ts\n")

		Convey("They are kept exactly as written", func() {
			So(p.Segments, ShouldResemble, []string{"b.ts", "a.ts", "b.ts"})
		})
	})

	Convey("Given lines that are not .ts segments", t, func() {
		p := Parse("#EXTM3U\nhttps://cdn.example/0.ts\nhttps://cdn.example/1.aac\nhttps://cdn.example/2.ts?token=1\n#comment.ts\n")

		Convey("Only lines ending in .ts are segments", func() {
			So(p.Segments, ShouldResemble, []string{"https://cdn.example/0.ts", "#comment.ts"})
		})
	})

	Convey("Given CRLF line endings", t, func() {
		p := Parse("#EXTINF:4.5,\r\nhttps://cdn.example/0.ts\r\n#EXTINF:4.5,\r\nhttps://cdn.example/1.ts\r\n")
		So(p.Segments, ShouldResemble, []string{"https://cdn.example/0.ts", "https://cdn.example/1.ts"})
		So(p.Duration, ShouldAlmostEqual, 9.0, 1e-9)
	})

	Convey("Given malformed EXTINF tags", t, func() {
		p := Parse("#EXTINF:abc,\n0.ts\n#EXTINF:\n1.ts\n#EXTINF:10,\n2.ts\n")

		Convey("They contribute nothing", func() {
			So(p.Duration, ShouldAlmostEqual, 10, 1e-9)
			So(p.Segments, ShouldHaveLength, 3)
		})
	})

	Convey("Given an empty body", t, func() {
		p := Parse("")
		So(p.Segments, ShouldBeEmpty)
		So(p.Duration, ShouldEqual, 0)
	})
}

func TestResolver(t *testing.T) {
	Convey("Given a playlist server", t, func() {
		var hits atomic.Int32
		mux := http.NewServeMux()
		mux.HandleFunc("/720.m3u8", func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte("#EXTM3U\n#EXTINF:6.0,\nhttps://cdn.example/0.ts\n"))
		})
		mux.HandleFunc("/broken.m3u8", func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		resolver := &Resolver{Client: server.Client()}

		Convey("A good playlist is parsed", func() {
			p, err := resolver.Resolve(context.Background(), server.URL+"/720.m3u8")
			So(err, ShouldBeNil)
			So(p.Segments, ShouldResemble, []string{"https://cdn.example/0.ts"})
		})

		Convey("An error status fails after a single attempt", func() {
			_, err := resolver.Resolve(context.Background(), server.URL+"/broken.m3u8")
			So(errors.Is(err, ErrPlaylistFetch), ShouldBeTrue)

			var fetchErr *FetchError
			So(errors.As(err, &fetchErr), ShouldBeTrue)
			So(fetchErr.Status, ShouldEqual, http.StatusServiceUnavailable)
			So(hits.Load(), ShouldEqual, 1)
		})

		Convey("A network failure is a fetch error too", func() {
			_, err := resolver.Resolve(context.Background(), "http://127.0.0.1:1/none.m3u8")
			So(errors.Is(err, ErrPlaylistFetch), ShouldBeTrue)
		})
	})
}
