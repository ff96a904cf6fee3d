package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/chenjicheng/upmc/internal/failure"
	"github.com/chenjicheng/upmc/internal/progress"
)

// DefaultBuffer is the progress capacity used by Pipeline.Start.
const DefaultBuffer = 16

// Stream carries progress from the worker to the presentation layer and
// holds the terminal Result. Progress never blocks the worker: when the
// buffer is full the oldest event is dropped. The Result is set once and
// can be taken once.
type Stream struct {
	events chan progress.Event
	done   chan struct{}

	mu       sync.Mutex
	result   *Result
	taken    bool
	finished bool
}

// NewStream creates a Stream buffering up to size progress events.
func NewStream(size int) *Stream {
	if size < 1 {
		size = 1
	}
	return &Stream{
		events: make(chan progress.Event, size),
		done:   make(chan struct{}),
	}
}

// Report publishes a progress event. It has the signature of progress.Func.
func (s *Stream) Report(percent int, message string) {
	ev := progress.Event{Percent: progress.Clamp(percent), Message: message}
	for {
		select {
		case s.events <- ev:
			return
		default:
		}
		select {
		case <-s.events:
		default:
		}
	}
}

// Events returns the progress channel. It is never closed; select on Done
// as well.
func (s *Stream) Events() <-chan progress.Event {
	return s.events
}

// Done is closed when the Result has been posted.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Finish posts the terminal Result. Only the first call has an effect; it
// reports whether this call was it.
func (s *Stream) Finish(r Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return false
	}
	s.finished = true
	s.result = &r
	close(s.done)
	return true
}

// TakeResult returns the Result the first time it is called after Finish.
// Later calls, and calls before Finish, return false.
func (s *Stream) TakeResult() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil || s.taken {
		return Result{}, false
	}
	s.taken = true
	return *s.result, true
}

// Go runs work on its own goroutine. If work panics or returns without
// calling Finish, an internal error Result is posted so that a reader of
// the stream is never left waiting.
func Go(ctx context.Context, s *Stream, work func(ctx context.Context, s *Stream)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", fmt.Sprint(r)).Errorf("update worker crashed\n%s", debug.Stack())
				s.Finish(Failed(failure.Errorf(failure.Internal, "update worker crashed: %v", r)))
				return
			}
			if s.Finish(Failed(failure.New(failure.Internal, "update worker stopped without a result"))) {
				log.Error("update worker returned without posting a result")
			}
		}()
		work(ctx, s)
	}()
}
