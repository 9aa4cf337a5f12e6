package download

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vodrip/vodrip/filesystem"
	"github.com/vodrip/vodrip/log"
	"github.com/vodrip/vodrip/rendition"
	"github.com/vodrip/vodrip/util"
	"github.com/vodrip/vodrip/where"
)

// StaleAfter is the age at which a staging directory left behind by a killed
// process is removed by PruneStaging.
const StaleAfter = 24 * time.Hour

const stagingPrefix = "job-"

// Job is one rendition being written to disk. Its staging directory is
// private to the job and is removed when the job ends, whatever the outcome.
type Job struct {
	ID         uuid.UUID
	Rendition  *rendition.Rendition
	Output     string
	StagingDir string

	// Segments are the remote segment URLs in playlist order.
	Segments []string
	// Staged holds the local path of every segment fetched so far.
	Staged    []string
	Completed int
}

func newJob(r *rendition.Rendition, outDir string) (*Job, error) {
	id := uuid.New()
	job := &Job{
		ID:         id,
		Rendition:  r,
		Output:     filepath.Join(outDir, r.Filename()),
		StagingDir: filepath.Join(where.Temp(), stagingPrefix+id.String()),
	}

	if err := filesystem.API().MkdirAll(job.StagingDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	if err := filesystem.API().MkdirAll(outDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	return job, nil
}

// segmentPath is where segment i is staged.
func (j *Job) segmentPath(i int) string {
	return filepath.Join(j.StagingDir, fmt.Sprintf("%d.ts", i))
}

func (j *Job) cleanup() {
	if err := util.Delete(j.StagingDir); err != nil {
		log.With(log.Fields{"job": j.ID}).Warnf("removing staging directory: %v", err)
	}
}

// PruneStaging removes staging directories older than maxAge and returns how
// many were removed. Jobs clean up after themselves, so only runs that were
// killed outright leave anything behind.
func PruneStaging(maxAge time.Duration) (int, error) {
	infos, err := filesystem.API().ReadDir(where.Temp())
	if err != nil {
		return 0, err
	}

	var removed int
	for _, info := range infos {
		if !info.IsDir() || !strings.HasPrefix(info.Name(), stagingPrefix) || time.Since(info.ModTime()) < maxAge {
			continue
		}

		path := filepath.Join(where.Temp(), info.Name())
		if err := util.Delete(path); err != nil {
			log.Warnf("removing stale staging directory %s: %v", path, err)
			continue
		}
		removed++
	}

	return removed, nil
}
