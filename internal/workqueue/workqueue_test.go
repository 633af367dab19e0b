package workqueue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFinishWaitsForAllSubmittedTasks(t *testing.T) {
	q := New(4)
	defer q.Shutdown()

	var count atomic.Int64
	for i := 0; i < 100; i++ {
		q.Submit(func() {
			time.Sleep(time.Millisecond)
			count.Add(1)
		})
	}

	q.Finish()
	require.EqualValues(t, 100, count.Load())
}

func TestFinishFromMultipleCallers(t *testing.T) {
	q := New(2)
	defer q.Shutdown()

	var count atomic.Int64
	for i := 0; i < 20; i++ {
		q.Submit(func() {
			count.Add(1)
		})
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Finish()
		}()
	}
	wg.Wait()

	require.EqualValues(t, 20, count.Load())
}

func TestSubmissionsFromInsideATaskAreCounted(t *testing.T) {
	q := New(2)
	defer q.Shutdown()

	var count atomic.Int64
	var submitChild func()
	submitChild = func() {
		count.Add(1)
	}

	q.Submit(func() {
		q.Submit(submitChild)
	})

	q.Finish()
	require.EqualValues(t, 1, count.Load())
}

func TestPanickingTaskIsLoggedAndQueueContinues(t *testing.T) {
	q := New(1)
	defer q.Shutdown()

	var ran atomic.Bool
	q.Submit(func() {
		panic("boom")
	})
	q.Submit(func() {
		ran.Store(true)
	})

	q.Finish()
	require.True(t, ran.Load())
}

func TestShutdownDiscardsQueuedTasks(t *testing.T) {
	q := New(1)

	block := make(chan struct{})
	started := make(chan struct{})
	q.Submit(func() {
		close(started)
		<-block
	})

	var ran atomic.Bool
	q.Submit(func() {
		ran.Store(true)
	})

	<-started
	shutdownDone := make(chan struct{})
	go func() {
		q.Shutdown()
		close(shutdownDone)
	}()
	// Release the running task only once Shutdown has set its flag, so the
	// worker finds the queue shut down when it looks for its next task.
	for {
		q.mu.Lock()
		down := q.shutdown
		q.mu.Unlock()
		if down {
			break
		}
		time.Sleep(time.Millisecond)
	}
	close(block)
	<-shutdownDone

	require.False(t, ran.Load())
}

func TestSize(t *testing.T) {
	q := New(7)
	defer q.Shutdown()
	require.Equal(t, 7, q.Size())
}

func TestNewClampsToAtLeastOneWorker(t *testing.T) {
	q := New(0)
	defer q.Shutdown()
	require.Equal(t, 1, q.Size())
}
