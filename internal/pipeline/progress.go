// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Phase banners for user-facing progress

package pipeline

import (
	"fmt"
	"io"
)

// Progress prints "[n/6] Stage" banners and "  → detail" lines
type Progress struct {
	w io.Writer
}

// NewProgress writes to w; nil discards output
func NewProgress(w io.Writer) *Progress {
	if w == nil {
		w = io.Discard
	}
	return &Progress{w: w}
}

// Phase prints the banner of a stage
func (p *Progress) Phase(stage StageID) {
	fmt.Fprintf(p.w, "\n[%d/%d] %s\n", stage.index(), len(Stages), stage.Title())
}

// Step prints one detail line
func (p *Progress) Step(format string, args ...any) {
	fmt.Fprintf(p.w, "  → "+format+"\n", args...)
}

// Warn prints one detail line with a warning marker
func (p *Progress) Warn(format string, args ...any) {
	fmt.Fprintf(p.w, "  → ⚠ "+format+"\n", args...)
}
