// Package chime emits the audible finish confirmation. Playback is
// best-effort: a failed chime never fails the recording.
package chime

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Chime plays a finish confirmation.
type Chime interface {
	Play(ctx context.Context) error
}

// Bell writes the terminal bell character to its output.
type Bell struct {
	out io.Writer
}

// Option applies a configuration option to the Bell.
type Option func(*Bell)

// WithOutput redirects the bell character, e.g. for tests.
func WithOutput(w io.Writer) Option {
	return func(b *Bell) {
		if w != nil {
			b.out = w
		}
	}
}

// NewBell creates a terminal-bell chime writing to stdout.
func NewBell(opts ...Option) *Bell {
	b := &Bell{out: os.Stdout}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Play writes the bell character.
func (b *Bell) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.out.Write([]byte("\a")); err != nil {
		return fmt.Errorf("play chime: %w", err)
	}
	return nil
}

// Noop is a silent chime for headless runs.
type Noop struct{}

// Play does nothing.
func (Noop) Play(context.Context) error { return nil }
