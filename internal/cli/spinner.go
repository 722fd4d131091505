package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Spinner timing. Backends that answer within spinnerDelay never draw.
const (
	spinnerDelay = 150 * time.Millisecond
	spinnerTick  = 80 * time.Millisecond
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a one-line status on w while a storage backend connects.
type spinner struct {
	w       io.Writer
	message string
	delay   time.Duration

	mu    sync.Mutex
	drawn bool

	halt    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newSpinner(w io.Writer, message string) *spinner {
	return &spinner{
		w:       w,
		message: message,
		delay:   spinnerDelay,
		halt:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// start draws frames until stop is called or ctx is done.
func (s *spinner) start(ctx context.Context) {
	go func() {
		defer close(s.stopped)

		wait := time.NewTimer(s.delay)
		defer wait.Stop()
		select {
		case <-ctx.Done():
			return
		case <-s.halt:
			return
		case <-wait.C:
		}

		ticker := time.NewTicker(spinnerTick)
		defer ticker.Stop()
		for i := 0; ; i++ {
			s.draw(spinnerFrames[i%len(spinnerFrames)])
			select {
			case <-ctx.Done():
				return
			case <-s.halt:
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawn = true
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
}

// stop ends the animation and clears whatever was drawn. It is safe to call
// more than once.
func (s *spinner) stop() {
	s.once.Do(func() { close(s.halt) })
	<-s.stopped

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len([]rune(s.message))+4))
		s.drawn = false
	}
}

// connect runs open behind a spinner labelled "Connecting to <what>...".
// A failure leaves one line on w saying what could not be reached, or that
// the user gave up waiting.
func connect[T any](ctx context.Context, w io.Writer, what string, open func(context.Context) (T, error)) (T, error) {
	s := newSpinner(w, "Connecting to "+what+"...")
	s.start(ctx)
	v, err := open(ctx)
	s.stop()

	switch {
	case err == nil:
	case ctx.Err() != nil:
		fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" Cancelled connecting to "+what)
	default:
		fmt.Fprintln(w, styleIconError.Render(iconError)+" Could not reach "+what)
	}
	return v, err
}
