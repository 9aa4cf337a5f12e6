// Package playlist reads the segment list and duration out of an HLS media playlist.
package playlist

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/vodrip/vodrip/util"
)

// segmentSuffix marks a line as a segment location.
const segmentSuffix = ".ts"

var extinfPattern = regexp.MustCompile(`^#EXTINF:(?P<duration>\d*.\d*),`)

// Playlist is the ordered segment list of one compressed rendition.
type Playlist struct {
	// Segments are taken verbatim from the playlist, in file order.
	Segments []string
	// Duration is the sum of the #EXTINF durations in seconds. It is best effort
	// and only feeds the size estimate.
	Duration float64
}

// Parse extracts every line ending in ".ts" and totals the #EXTINF durations.
// Segment lines are not resolved against the playlist URL, reordered or deduplicated.
func Parse(body string) *Playlist {
	p := &Playlist{}

	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if strings.HasSuffix(line, segmentSuffix) {
			p.Segments = append(p.Segments, line)
			continue
		}

		if raw, ok := util.ReGroups(extinfPattern, line)["duration"]; ok {
			if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
				p.Duration += seconds
			}
		}
	}

	return p
}

// Len is the number of segments.
func (p *Playlist) Len() int {
	return len(p.Segments)
}
