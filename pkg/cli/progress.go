package cli

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// DefaultWaitingMessage is shown while a reply is pending.
const DefaultWaitingMessage = "Menunggu balasan..."

var spinnerFrames = []string{"|", "/", "-", `\`}

// Waiting draws a one-line spinner until Stop is called. It is meant for
// interactive terminals; callers pass io.Discard when output is piped.
type Waiting struct {
	w        io.Writer
	message  string
	interval time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// NewWaiting creates an indicator that writes to w.
func NewWaiting(w io.Writer, message string) *Waiting {
	if message == "" {
		message = DefaultWaitingMessage
	}
	return &Waiting{w: w, message: message, interval: 120 * time.Millisecond}
}

// Start begins drawing. Calling Start on a running indicator does nothing.
func (s *Waiting) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
}

// Stop erases the line and waits for the drawing goroutine to exit.
func (s *Waiting) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()
	<-done
}

func (s *Waiting) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		fmt.Fprintf(s.w, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], s.message)
		select {
		case <-stop:
			// Blank the line so the reply starts at column 0.
			fmt.Fprintf(s.w, "\r%*s\r", len(s.message)+2, "")
			return
		case <-ticker.C:
		}
	}
}
