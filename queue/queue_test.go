package queue_test

import (
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/roasbeef/tsqueue/envelope"
	"github.com/roasbeef/tsqueue/queue"
	"github.com/stretchr/testify/require"
)

func mustEnvelope(t *testing.T, topic, payload string) *envelope.Envelope {
	t.Helper()

	e, err := envelope.CreateString(topic, payload)
	require.NoError(t, err)

	return e
}

// TestSingleThreadRoundTrip pushes a handful of envelopes and pops them
// back in the same order, with no concurrency involved.
func TestSingleThreadRoundTrip(t *testing.T) {
	t.Parallel()

	q, err := queue.New(4)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		e := mustEnvelope(t, "orders", strconv.Itoa(i))
		require.NoError(t, q.Push(e))
	}

	require.Equal(t, 4, q.Size())

	for i := 0; i < 4; i++ {
		e, err := q.Pop()
		require.NoError(t, err)
		require.Equal(t, strconv.Itoa(i), string(e.Payload))
	}

	require.True(t, q.IsEmpty())
}

// TestTryPushBackpressure verifies a full queue rejects further pushes
// without blocking, and that popping frees a slot for the next push.
func TestTryPushBackpressure(t *testing.T) {
	t.Parallel()

	q, err := queue.New(2)
	require.NoError(t, err)

	require.NoError(t, q.TryPush(mustEnvelope(t, "t", "a")))
	require.NoError(t, q.TryPush(mustEnvelope(t, "t", "b")))

	err = q.TryPush(mustEnvelope(t, "t", "c"))
	require.ErrorIs(t, err, queue.ErrQueueFull)

	_, err = q.Pop()
	require.NoError(t, err)

	require.NoError(t, q.TryPush(mustEnvelope(t, "t", "c")))
}

// TestPopTimeoutOnEmptyQueue checks that PopTimeout returns ErrTimeout,
// not ErrShutdown, when the deadline elapses on a queue that is merely
// empty.
func TestPopTimeoutOnEmptyQueue(t *testing.T) {
	t.Parallel()

	q, err := queue.New(1)
	require.NoError(t, err)

	start := time.Now()
	_, err = q.PopTimeout(50 * time.Millisecond)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, queue.ErrTimeout)
	require.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
}

// TestShutdownWakesBlockedConsumer checks that a goroutine blocked in
// Pop on an empty queue wakes up with ErrShutdown as soon as Shutdown
// is called.
func TestShutdownWakesBlockedConsumer(t *testing.T) {
	t.Parallel()

	q, err := queue.New(1)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, popErr := q.Pop()
		done <- popErr
	}()

	time.Sleep(20 * time.Millisecond)
	q.Shutdown()

	select {
	case err := <-done:
		require.ErrorIs(t, err, queue.ErrShutdown)
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up after Shutdown")
	}
}

// TestShutdownPreservesInFlight checks that envelopes pushed before
// Shutdown remain poppable afterwards, and only once the queue is
// genuinely empty does Pop start returning ErrShutdown.
func TestShutdownPreservesInFlight(t *testing.T) {
	t.Parallel()

	q, err := queue.New(4)
	require.NoError(t, err)

	require.NoError(t, q.Push(mustEnvelope(t, "t", "a")))
	require.NoError(t, q.Push(mustEnvelope(t, "t", "b")))

	q.Shutdown()

	e, err := q.Pop()
	require.NoError(t, err)
	require.Equal(t, "a", string(e.Payload))

	e, err = q.Pop()
	require.NoError(t, err)
	require.Equal(t, "b", string(e.Payload))

	_, err = q.Pop()
	require.ErrorIs(t, err, queue.ErrShutdown)

	require.ErrorIs(t, q.Push(mustEnvelope(t, "t", "c")), queue.ErrShutdown)
}

// TestTryPopShutdownSemantics pins down the redesigned TryPop
// contract: ErrQueueEmpty while running, ErrShutdown only once both
// empty and shut down, and a clean dequeue for anything still queued
// at shutdown time.
func TestTryPopShutdownSemantics(t *testing.T) {
	t.Parallel()

	q, err := queue.New(2)
	require.NoError(t, err)

	_, err = q.TryPop()
	require.ErrorIs(t, err, queue.ErrQueueEmpty)

	require.NoError(t, q.Push(mustEnvelope(t, "t", "a")))
	q.Shutdown()

	e, err := q.TryPop()
	require.NoError(t, err)
	require.Equal(t, "a", string(e.Payload))

	_, err = q.TryPop()
	require.ErrorIs(t, err, queue.ErrShutdown)
}

// TestConcurrentProducersConsumersPreserveFIFO runs several producers,
// each emitting a strictly increasing sequence tagged with its own
// producer ID, and checks that every consumer observes each producer's
// slice of messages in order, even though messages interleave across
// producers.
func TestConcurrentProducersConsumersPreserveFIFO(t *testing.T) {
	t.Parallel()

	const (
		numProducers   = 4
		numConsumers   = 4
		perProducer    = 1000
		queueCapacity  = 64
	)

	q, err := queue.New(queueCapacity)
	require.NoError(t, err)

	var producerWG sync.WaitGroup
	for p := 0; p < numProducers; p++ {
		producerWG.Add(1)
		go func(producerID int) {
			defer producerWG.Done()

			for seq := 0; seq < perProducer; seq++ {
				key := strconv.Itoa(producerID)
				payload := strconv.Itoa(seq)

				env, cerr := envelope.Create("events", []byte(payload), key)
				require.NoError(t, cerr)

				require.NoError(t, q.Push(env))
			}
		}(p)
	}

	var (
		mu          sync.Mutex
		perConsumer []map[string][]int
	)

	var consumerWG sync.WaitGroup
	total := numProducers * perProducer
	popped := 0
	var poppedMu sync.Mutex

	for c := 0; c < numConsumers; c++ {
		consumerWG.Add(1)
		go func() {
			defer consumerWG.Done()

			seen := make(map[string][]int)
			defer func() {
				mu.Lock()
				perConsumer = append(perConsumer, seen)
				mu.Unlock()
			}()

			for {
				poppedMu.Lock()
				if popped >= total {
					poppedMu.Unlock()
					return
				}
				popped++
				poppedMu.Unlock()

				e, err := q.Pop()
				require.NoError(t, err)

				seq, convErr := strconv.Atoi(string(e.Payload))
				require.NoError(t, convErr)

				seen[e.Key()] = append(seen[e.Key()], seq)
			}
		}()
	}

	producerWG.Wait()
	consumerWG.Wait()

	received := make(map[string]int)
	for _, seen := range perConsumer {
		for producerID, seqs := range seen {
			require.True(t, sort.IntsAreSorted(seqs), "producer %s order: %v", producerID, seqs)
			received[producerID] += len(seqs)
		}
	}

	require.Len(t, received, numProducers)

	for producerID, n := range received {
		require.Equal(t, perProducer, n, "producer %s", producerID)
	}
}

// TestNewRejectsNonPositiveCapacity checks the constructor's input
// validation.
func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	t.Parallel()

	_, err := queue.New(0)
	require.Error(t, err)
}

// TestClosedDoubleShutdownIsSafe checks that Shutdown and Close can be
// called multiple times without panicking or blocking.
func TestClosedDoubleShutdownIsSafe(t *testing.T) {
	t.Parallel()

	q, err := queue.New(2)
	require.NoError(t, err)

	require.NoError(t, q.Push(mustEnvelope(t, "t", "a")))

	q.Shutdown()
	q.Shutdown()
	q.Close()
	q.Close()

	require.Equal(t, 0, q.Size())
}
