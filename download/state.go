package download

// State is a stage of a download run.
type State int

const (
	ResolvingContext State = iota
	ResolvingManifest
	AwaitingSelection
	SourceDownload
	CompressedDownload
	Reassembling
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case ResolvingContext:
		return "resolving context"
	case ResolvingManifest:
		return "resolving manifest"
	case AwaitingSelection:
		return "awaiting selection"
	case SourceDownload:
		return "downloading source"
	case CompressedDownload:
		return "downloading segments"
	case Reassembling:
		return "reassembling"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}

// Progress is a snapshot of the current stage. While downloading the source
// Done and Total count bytes, otherwise they count segments. Total is -1 when
// unknown.
type Progress struct {
	State State
	Done  int64
	Total int64
}

// Fraction returns progress in [0, 1], or 0 when the total is unknown.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total)
}

// Observer is notified as a run advances. Calls happen on the goroutine
// running the pipeline.
type Observer interface {
	OnState(state State)
	OnProgress(progress Progress)
}

type nopObserver struct{}

func (nopObserver) OnState(State)       {}
func (nopObserver) OnProgress(Progress) {}

// NopObserver ignores every notification.
var NopObserver Observer = nopObserver{}
