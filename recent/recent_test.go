package recent

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/vodrip/vodrip/filesystem"
	"github.com/vodrip/vodrip/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestRecent(t *testing.T) {
	Convey("Given remembered URLs", t, func() {
		viper.Set(key.CliSuggestURLs, true)

		So(Remember("https://www.stream.me/archive/runner/any-percent", 1), ShouldBeNil)
		So(Remember("https://www.stream.me/archive/painter/landscapes", 1), ShouldBeNil)
		So(Remember(" https://www.stream.me/archive/painter/landscapes ", 5), ShouldBeNil)

		Convey("The most used match comes first", func() {
			suggestions := Suggest("stream.me")
			So(len(suggestions), ShouldBeGreaterThanOrEqualTo, 2)
			So(suggestions[0], ShouldEqual, "https://www.stream.me/archive/painter/landscapes")
		})

		Convey("Matching is fuzzy", func() {
			So(Suggest("runany"), ShouldContain, "https://www.stream.me/archive/runner/any-percent")
			So(Suggest("runany"), ShouldNotContain, "https://www.stream.me/archive/painter/landscapes")
		})

		Convey("Suggestions can be turned off", func() {
			viper.Set(key.CliSuggestURLs, false)
			So(Suggest("stream"), ShouldBeEmpty)
		})
	})
}
