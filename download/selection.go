package download

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vodrip/vodrip/manifest"
	"github.com/vodrip/vodrip/rendition"
)

// ErrInvalidSelection is returned for a quality index that matches no rendition.
var ErrInvalidSelection = errors.New("invalid quality selection")

// Selection picks a rendition: 0 is the source, n >= 1 the n-th compressed one.
type Selection int

// SourceSelection selects the progressive source file.
const SourceSelection Selection = 0

// ParseSelection accepts "source" or an integer.
func ParseSelection(s string) (Selection, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, rendition.Source.String()) {
		return SourceSelection, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is neither a number nor \"source\"", ErrInvalidSelection, s)
	}
	return Selection(n), nil
}

func (s Selection) String() string {
	if s == SourceSelection {
		return rendition.Source.String()
	}
	return strconv.Itoa(int(s))
}

// Select resolves s against the parsed renditions. Out of range indices fail
// instead of falling back to another quality.
func Select(renditions *manifest.Renditions, s Selection) (*rendition.Rendition, error) {
	if s < 0 {
		return nil, invalid(s, renditions)
	}

	if s == SourceSelection {
		return renditions.Source()
	}

	if !renditions.HasHLS() {
		return nil, fmt.Errorf("%w %s", manifest.ErrMissingFormat, manifest.FormatHLS)
	}

	compressed := renditions.Compressed()
	if int(s) > len(compressed) {
		return nil, invalid(s, renditions)
	}

	return compressed[s-1], nil
}

func invalid(s Selection, renditions *manifest.Renditions) error {
	return fmt.Errorf(
		"%w: %d is out of range 0..%d, use --list to see the available qualities",
		ErrInvalidSelection, int(s), len(renditions.Compressed()),
	)
}
