// Package manifest fetches the platform's format manifest and turns it into renditions.
package manifest

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/vodrip/vodrip/rendition"
)

// Format keys used by the platform.
const (
	FormatHTTP = "mp4-http"
	FormatHLS  = "mp4-hls"
)

// ErrMissingFormat is returned when a rendition path needs a format the manifest lacks.
var ErrMissingFormat = errors.New("manifest is missing format")

// Manifest mirrors the platform's manifest document.
type Manifest struct {
	Formats Formats `json:"formats"`
}

// Formats holds the optional delivery formats.
type Formats struct {
	HTTP *HTTPFormat `json:"mp4-http,omitempty"`
	HLS  *HLSFormat  `json:"mp4-hls,omitempty"`
}

// HTTPFormat is the progressive source file.
type HTTPFormat struct {
	VideoCodec string `json:"videoCodec"`
	AudioCodec string `json:"audioCodec"`
	Origin     struct {
		Location string `json:"location"`
	} `json:"origin"`
}

// HLSFormat lists the transcoded encodings, lowest quality first as declared upstream.
type HLSFormat struct {
	VideoCodec string     `json:"videoCodec"`
	AudioCodec string     `json:"audioCodec"`
	Encodings  []Encoding `json:"encodings"`
}

// Encoding is one HLS rendition entry.
type Encoding struct {
	VideoWidth  int    `json:"videoWidth"`
	VideoHeight int    `json:"videoHeight"`
	VideoKbps   int    `json:"videoKbps"`
	AudioKbps   int    `json:"audioKbps"`
	Location    string `json:"location"`
}

// Renditions is the parsed, ordered set of renditions of one VOD.
type Renditions struct {
	source     *rendition.Rendition
	compressed []*rendition.Rendition
	hasHLS     bool
}

// Parse maps the manifest to renditions. A missing mp4-hls format yields no
// compressed renditions and is not an error.
func Parse(m *Manifest, user, title string) *Renditions {
	r := &Renditions{}

	if src := m.Formats.HTTP; src != nil {
		r.source = rendition.NewSource(user, title, src.VideoCodec, src.AudioCodec, src.Origin.Location)
	}

	if hls := m.Formats.HLS; hls != nil {
		r.hasHLS = true
		r.compressed = lo.Map(hls.Encodings, func(e Encoding, _ int) *rendition.Rendition {
			return rendition.NewCompressed(
				user, title,
				hls.VideoCodec, hls.AudioCodec,
				e.VideoWidth, e.VideoHeight,
				e.VideoKbps, e.AudioKbps,
				e.Location,
			)
		})
	}

	return r
}

// Source returns the progressive rendition.
func (r *Renditions) Source() (*rendition.Rendition, error) {
	if r.source == nil {
		return nil, fmt.Errorf("%w %s", ErrMissingFormat, FormatHTTP)
	}
	return r.source, nil
}

// HasSource reports whether the manifest declared a progressive file.
func (r *Renditions) HasSource() bool {
	return r.source != nil
}

// HasHLS reports whether the manifest declared the HLS format at all.
func (r *Renditions) HasHLS() bool {
	return r.hasHLS
}

// Compressed returns the HLS renditions in manifest order.
func (r *Renditions) Compressed() []*rendition.Rendition {
	return r.compressed
}

// All returns the source (when present) followed by the compressed renditions.
func (r *Renditions) All() []*rendition.Rendition {
	if r.source == nil {
		return r.compressed
	}
	return append([]*rendition.Rendition{r.source}, r.compressed...)
}
