package formatter

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const (
	spinnerInterval = 80 * time.Millisecond
	clearLine       = "\r\033[K"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a progress line on w while a backend call is in flight.
// Progress goes to stderr so it never mixes with report output on stdout.
type Spinner struct {
	w        io.Writer
	message  string
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *Spinner) Start() {
	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.done)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.stop:
			fmt.Fprint(s.w, clearLine)
			return
		case <-ticker.C:
			glyph := StylePurple.Render(spinnerFrames[frame%len(spinnerFrames)])
			fmt.Fprintf(s.w, "\r  %s %s", glyph, Dim(s.message))
		}
	}
}

// Stop blocks until the line is cleared. Later calls return immediately.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
}

// StartSpinner runs a spinner on w and hands back its Stop.
func StartSpinner(w io.Writer, message string) func() {
	s := NewSpinner(w, message)
	s.Start()
	return s.Stop
}
