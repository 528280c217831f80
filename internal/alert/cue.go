package alert

import (
	"io"

	"notify-engine/internal/models"
)

// BellCue is the audible channel for terminal deployments: a BEL byte on
// the attached writer. A nil writer means no audio output is attached and
// the cue reports locked.
type BellCue struct {
	out io.Writer
}

func NewBellCue(out io.Writer) *BellCue {
	return &BellCue{out: out}
}

func (b *BellCue) Unlocked() bool {
	return b.out != nil
}

func (b *BellCue) Play(kind models.Kind) {
	if b.out == nil {
		return
	}
	// Errors get a double bell.
	if kind == models.KindError {
		b.out.Write([]byte{'\a', '\a'})
		return
	}
	b.out.Write([]byte{'\a'})
}
