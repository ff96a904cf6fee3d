package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenjicheng/upmc/internal/failure"
)

func TestStream_NewestWins(t *testing.T) {
	s := NewStream(2)
	for i := 1; i <= 5; i++ {
		s.Report(i*10, "step")
	}

	first := <-s.Events()
	second := <-s.Events()
	assert.Equal(t, 40, first.Percent)
	assert.Equal(t, 50, second.Percent)
}

func TestStream_ReportNeverBlocks(t *testing.T) {
	s := NewStream(1)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			s.Report(i%100, "busy")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Report blocked with nobody reading")
	}
}

func TestStream_TakeResultOnce(t *testing.T) {
	s := NewStream(1)
	_, ok := s.TakeResult()
	assert.False(t, ok, "nothing posted yet")

	assert.True(t, s.Finish(Result{Outcome: Offline}))
	assert.False(t, s.Finish(Result{Outcome: Success}), "only the first result counts")

	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed after Finish")
	}

	res, ok := s.TakeResult()
	require.True(t, ok)
	assert.Equal(t, Offline, res.Outcome)

	_, ok = s.TakeResult()
	assert.False(t, ok)
}

func TestStream_ConcurrentTake(t *testing.T) {
	s := NewStream(1)
	s.Finish(Result{Outcome: Success})

	var wg sync.WaitGroup
	var mu sync.Mutex
	taken := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.TakeResult(); ok {
				mu.Lock()
				taken++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, taken)
}

func waitResult(t *testing.T, s *Stream) Result {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("worker never posted a result")
	}
	res, ok := s.TakeResult()
	require.True(t, ok)
	return res
}

func TestGo_Panic(t *testing.T) {
	s := NewStream(1)
	Go(context.Background(), s, func(context.Context, *Stream) {
		panic("boom")
	})

	res := waitResult(t, s)
	assert.Equal(t, Error, res.Outcome)
	assert.True(t, failure.Is(res.Err, failure.Internal))
	assert.Contains(t, res.Err.Error(), "boom")
}

func TestGo_SilentReturn(t *testing.T) {
	s := NewStream(1)
	Go(context.Background(), s, func(_ context.Context, s *Stream) {
		s.Report(5, "started")
	})

	res := waitResult(t, s)
	assert.Equal(t, Error, res.Outcome)
	assert.Contains(t, res.Err.Error(), "without a result")
}

func TestGo_PostedResultWins(t *testing.T) {
	s := NewStream(1)
	Go(context.Background(), s, func(_ context.Context, s *Stream) {
		s.Finish(Result{Outcome: SelfUpdateRestarting})
	})

	res := waitResult(t, s)
	assert.Equal(t, SelfUpdateRestarting, res.Outcome)
}

func TestFailed(t *testing.T) {
	assert.Equal(t, ComponentRuntimeMissing, Failed(failure.New(failure.ComponentRuntimeMissing, "java")).Outcome)
	assert.Equal(t, Error, Failed(failure.New(failure.Filesystem, "write")).Outcome)
}
