package config

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/vodrip/vodrip/filesystem"
	"github.com/vodrip/vodrip/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Should retry forever by default", func() {
			_ = Setup()
			So(viper.GetInt(key.DownloaderMaxRetries), ShouldEqual, 0)
			So(RetryDelay(), ShouldEqual, 3*time.Second)
		})

		Convey("Should fall back to the working directory for output", func() {
			_ = Setup()
			viper.Set(key.DownloaderOutputDir, "")
			So(OutputDir(), ShouldNotBeEmpty)

			viper.Set(key.DownloaderOutputDir, "/srv/vods")
			So(OutputDir(), ShouldEqual, "/srv/vods")
			viper.Set(key.DownloaderOutputDir, "")
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("downloader.retry_delay")
			So(result, ShouldEqual, "downloader_retry_delay")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		field := Default[key.DownloaderChunkSize]

		Convey("Env should carry the application prefix", func() {
			So(field.Env(), ShouldEqual, "VODRIP_DOWNLOADER_CHUNK_SIZE")
		})

		Convey("Its type should be reported", func() {
			So(field.typeName(), ShouldEqual, "int")
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Parse converts raw values to the key's type", t, func() {
		v, err := Parse(key.DownloaderMaxRetries, []string{"5"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 5)

		v, err = Parse(key.NetworkTLSFingerprint, []string{"true"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, true)

		v, err = Parse(key.DownloaderOutputDir, []string{"/srv/vods"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, "/srv/vods")

		_, err = Parse(key.DownloaderChunkSize, []string{"big"})
		So(err, ShouldNotBeNil)

		_, err = Parse("downloader.nope", []string{"1"})
		So(errors.Is(err, ErrUnknownKey), ShouldBeTrue)
	})
}
