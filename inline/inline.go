// Package inline renders rendition listings in a machine readable form.
package inline

import (
	"encoding/json"
	"io"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/vodrip/vodrip/download"
)

// Rendition is one selectable quality.
type Rendition struct {
	// Selection is the value to pass to --quality.
	Selection  int    `json:"selection"`
	Kind       string `json:"kind" jsonschema:"enum=source,enum=compressed"`
	Resolution string `json:"resolution"`
	Filename   string `json:"filename"`
	VideoCodec string `json:"videoCodec"`
	AudioCodec string `json:"audioCodec"`
	URL        string `json:"url"`

	Width     int `json:"width,omitempty"`
	Height    int `json:"height,omitempty"`
	VideoKbps int `json:"videoKbps,omitempty"`
	AudioKbps int `json:"audioKbps,omitempty"`

	// SizeMB is null when the size could not be determined.
	SizeMB *float64 `json:"sizeMb"`
	// Estimated is true when SizeMB comes from the bitrate rather than the host.
	Estimated bool `json:"estimated"`
}

// Output is the listing of one VOD.
type Output struct {
	URL        string       `json:"url"`
	User       string       `json:"user"`
	Title      string       `json:"title"`
	Renditions []*Rendition `json:"renditions"`
}

// NewOutput converts a listing of target.
func NewOutput(target *download.Target, entries []*download.Entry) *Output {
	vod := target.Context.VOD
	return &Output{
		URL:   target.URL,
		User:  vod.UserSlug,
		Title: vod.Title,
		Renditions: lo.Map(entries, func(e *download.Entry, _ int) *Rendition {
			r := e.Rendition
			url := r.URL
			if url == "" {
				url = r.PlaylistURL
			}

			return &Rendition{
				Selection:  int(e.Selection),
				Kind:       r.Kind.String(),
				Resolution: r.Resolution(),
				Filename:   r.Filename(),
				VideoCodec: r.VideoCodec,
				AudioCodec: r.AudioCodec,
				URL:        url,
				Width:      r.Width,
				Height:     r.Height,
				VideoKbps:  r.VideoKbps,
				AudioKbps:  r.AudioKbps,
				SizeMB:     e.SizeMB.ToPointer(),
				Estimated:  e.Estimated(),
			}
		}),
	}
}

// Write encodes out as indented JSON.
func Write(w io.Writer, out *Output) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// Schema returns the JSON schema of Output.
func Schema() ([]byte, error) {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.Namer = func(t reflect.Type) string {
		name := t.Name()
		switch name {
		case "Output", "Rendition":
			return "vodrip." + name
		}

		return name
	}

	return json.MarshalIndent(reflector.Reflect(&Output{}), "", "  ")
}
