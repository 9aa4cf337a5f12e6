// Package merge rebuilds a single media file from its ordered segments.
package merge

import (
	"errors"
	"fmt"
	"io"

	"github.com/vodrip/vodrip/filesystem"
	"github.com/vodrip/vodrip/util"
)

// ErrReassembly matches every *ReassemblyError.
var ErrReassembly = errors.New("reassembly failed")

// ReassemblyError names the file that could not be read or written.
type ReassemblyError struct {
	Path string
	Err  error
}

func (e *ReassemblyError) Error() string {
	return fmt.Sprintf("reassemble %s: %v", e.Path, e.Err)
}

func (e *ReassemblyError) Unwrap() error {
	return e.Err
}

func (e *ReassemblyError) Is(target error) bool {
	return target == ErrReassembly
}

// Progress is called after every appended segment.
type Progress func(done, total int)

// Merger concatenates files.
type Merger struct {
	OnProgress Progress
}

// Merge writes the bytes of every path, in order, to out. Out is truncated
// first. On failure whatever was already written stays on disk.
func (m *Merger) Merge(paths []string, out string) error {
	file, err := filesystem.Overwrite(out)
	if err != nil {
		return &ReassemblyError{Path: out, Err: err}
	}

	for i, path := range paths {
		if err := appendFile(file, path, out); err != nil {
			_ = file.Close()
			return err
		}

		if m.OnProgress != nil {
			m.OnProgress(i+1, len(paths))
		}
	}

	if err := file.Close(); err != nil {
		return &ReassemblyError{Path: out, Err: err}
	}
	return nil
}

// Merge is a shorthand for a Merger without progress reporting.
func Merge(paths []string, out string) error {
	return (&Merger{}).Merge(paths, out)
}

func appendFile(dst io.Writer, path, out string) error {
	src, err := filesystem.API().Open(path)
	if err != nil {
		return &ReassemblyError{Path: path, Err: err}
	}
	defer util.Ignore(src.Close)

	if _, err := io.Copy(dst, src); err != nil {
		return &ReassemblyError{Path: path, Err: fmt.Errorf("append to %s: %w", out, err)}
	}
	return nil
}
