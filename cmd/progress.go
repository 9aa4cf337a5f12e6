package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
	"github.com/vodrip/vodrip/download"
	"github.com/vodrip/vodrip/icon"
	"github.com/vodrip/vodrip/style"
	"github.com/vodrip/vodrip/util"
)

const progressRefresh = 100 * time.Millisecond

// progressView draws a single self-erasing status line on the terminal.
type progressView struct {
	bar         progress.Model
	interactive bool
	erase       func()
	lastDraw    time.Time
}

func newProgressView() *progressView {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30

	_, _, err := util.TerminalSize()
	return &progressView{bar: bar, interactive: err == nil}
}

func (v *progressView) clear() {
	if v.erase != nil {
		v.erase()
		v.erase = nil
	}
}

func (v *progressView) OnState(state download.State) {
	if !v.interactive || state.Terminal() || state == download.AwaitingSelection {
		v.clear()
		return
	}

	v.draw(fmt.Sprintf("%s %s...", stateIcon(state), util.Capitalize(state.String())))
}

func (v *progressView) OnProgress(p download.Progress) {
	if !v.interactive {
		return
	}

	finished := p.Total > 0 && p.Done >= p.Total
	if !finished && time.Since(v.lastDraw) < progressRefresh {
		return
	}

	v.draw(fmt.Sprintf("%s %s %s", stateIcon(p.State), v.bar.ViewAs(p.Fraction()), describe(p)))
}

func (v *progressView) draw(line string) {
	v.clear()
	v.erase = util.PrintErasable(util.FitTerminal(line))
	v.lastDraw = time.Now()
}

func stateIcon(state download.State) string {
	switch state {
	case download.ResolvingContext, download.ResolvingManifest:
		return icon.Get(icon.Resolve)
	case download.AwaitingSelection:
		return icon.Get(icon.Select)
	case download.SourceDownload, download.CompressedDownload:
		return icon.Get(icon.Download)
	case download.Reassembling:
		return icon.Get(icon.Merge)
	case download.Done:
		return icon.Get(icon.Success)
	case download.Failed:
		return icon.Get(icon.Fail)
	default:
		return icon.Get(icon.Progress)
	}
}

func describe(p download.Progress) string {
	switch p.State {
	case download.SourceDownload:
		if p.Total < 0 {
			return humanize.Bytes(uint64(p.Done))
		}
		return fmt.Sprintf("%s / %s", humanize.Bytes(uint64(p.Done)), humanize.Bytes(uint64(p.Total)))
	case download.Reassembling:
		return style.Faint(fmt.Sprintf("merging %d/%d", p.Done, p.Total))
	default:
		return fmt.Sprintf("%d/%d %s", p.Done, p.Total, style.Faint("segments"))
	}
}
