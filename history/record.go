package history

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
)

// Record describes one finished download.
type Record struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	User        string    `json:"user"`
	Title       string    `json:"title"`
	Quality     string    `json:"quality"`
	Output      string    `json:"output"`
	Bytes       int64     `json:"bytes"`
	Segments    int       `json:"segments"`
	CompletedAt time.Time `json:"completed_at"`
}

func (r *Record) String() string {
	return fmt.Sprintf(
		"%s - %s (%s) %s, %s",
		r.User,
		r.Title,
		r.Quality,
		humanize.Bytes(uint64(r.Bytes)),
		humanize.Time(r.CompletedAt),
	)
}

// Filename is the base name of the written file.
func (r *Record) Filename() string {
	return filepath.Base(r.Output)
}
