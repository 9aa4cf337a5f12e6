// Package rendition describes the downloadable variants of a VOD.
package rendition

import (
	"fmt"

	"github.com/samber/mo"
	"github.com/vodrip/vodrip/util"
)

// Kind discriminates the two ways a rendition is delivered.
type Kind int

const (
	// Source is the original progressive MP4, fetched in one transfer.
	Source Kind = iota
	// Compressed is a transcoded HLS rendition made of .ts segments.
	Compressed
)

func (k Kind) String() string {
	switch k {
	case Source:
		return "source"
	case Compressed:
		return "compressed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Rendition is one selectable quality of a VOD. Fields are set once by the
// manifest parser and never change; only the size estimate is filled in lazily.
type Rendition struct {
	Kind       Kind   `json:"kind"`
	User       string `json:"user"`
	Title      string `json:"title"`
	VideoCodec string `json:"videoCodec"`
	AudioCodec string `json:"audioCodec"`

	// URL is the direct file location of a Source rendition.
	URL string `json:"url,omitempty"`

	// PlaylistURL and the fields below only apply to Compressed renditions.
	PlaylistURL string `json:"playlistUrl,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	VideoKbps   int    `json:"videoKbps,omitempty"`
	AudioKbps   int    `json:"audioKbps,omitempty"`

	size mo.Option[float64]
}

// NewSource builds the progressive-file rendition.
func NewSource(user, title, videoCodec, audioCodec, url string) *Rendition {
	return &Rendition{
		Kind:       Source,
		User:       user,
		Title:      title,
		VideoCodec: videoCodec,
		AudioCodec: audioCodec,
		URL:        url,
	}
}

// NewCompressed builds an HLS rendition.
func NewCompressed(user, title, videoCodec, audioCodec string, width, height, videoKbps, audioKbps int, playlistURL string) *Rendition {
	return &Rendition{
		Kind:        Compressed,
		User:        user,
		Title:       title,
		VideoCodec:  videoCodec,
		AudioCodec:  audioCodec,
		PlaylistURL: playlistURL,
		Width:       width,
		Height:      height,
		VideoKbps:   videoKbps,
		AudioKbps:   audioKbps,
	}
}

// Resolution returns "WxH" for compressed renditions and "Source" otherwise.
func (r *Rendition) Resolution() string {
	if r.Kind == Source {
		return "Source"
	}
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

func (r *Rendition) String() string {
	return r.Resolution()
}

// Filename is the deterministic name of the finished file.
func (r *Rendition) Filename() string {
	stem := util.SanitizeFilename(r.User) + "-" + util.SanitizeFilename(r.Title)
	if r.Kind == Source {
		return stem + "-source.mp4"
	}
	return fmt.Sprintf("%s-%dx%d.mp4", stem, r.Width, r.Height)
}
