// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ManualProgressBar implement progress bar functionality that must
// be manually managed. That is, the Display() function must be called
// whenever an updated progress bar should be printed to the screen.
//
// ManualProgressBar does not use concurrency.
type ManualProgressBar struct {
	out             io.Writer
	disabled        bool
	width           float64
	maxProgress     float64
	currentProgress float64
	bar             strings.Builder
	startTime       time.Time
}

// NewManualProgressBar returns a new ManualProgressBar which prints to
// out. A disabled progress bar keeps count but never prints.
func NewManualProgressBar(out io.Writer, width, max int,
	disabled bool) *ManualProgressBar {
	return &ManualProgressBar{
		out:             out,
		disabled:        disabled,
		width:           float64(width),
		maxProgress:     float64(max),
		currentProgress: 0,
		startTime:       time.Now(),
	}
}

// Increment increments the interal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ManualProgressBar) Increment() {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// Set sets the internal progress counter, for example when resuming
// from a checkpoint
func (p *ManualProgressBar) Set(progress int) {
	p.currentProgress = float64(progress)
	if p.currentProgress > p.maxProgress {
		p.currentProgress = p.maxProgress
	}
	if p.currentProgress < 0 {
		p.currentProgress = 0
	}
}

// Progress returns the fraction of work done
func (p *ManualProgressBar) Progress() float64 {
	if p.maxProgress <= 0 {
		return 1
	}
	return p.currentProgress / p.maxProgress
}

// String returns the current progress bar
func (p *ManualProgressBar) String() string {
	p.bar.Reset()
	p.bar.WriteString("|")

	currentProg := p.Progress() * p.width
	for i := 0.0; i < currentProg; i++ {
		p.bar.WriteString("█")
	}
	for i := currentProg; i < p.width; i++ {
		p.bar.WriteString(" ")
	}
	p.bar.WriteString(fmt.Sprintf("| [%.2f%v | elapsed: %v]",
		p.Progress()*100, "%", time.Since(p.startTime).Truncate(time.Second)))
	return p.bar.String()
}

// Display displays the progress bar on the screen, overwriting the
// previously displayed bar
func (p *ManualProgressBar) Display() {
	if p.disabled {
		return
	}
	fmt.Fprintf(p.out, "\n\033[1A\033[K%v", p.String())
}

// Close finishes the progress bar line
func (p *ManualProgressBar) Close() {
	if p.disabled {
		return
	}
	fmt.Fprintln(p.out)
}
