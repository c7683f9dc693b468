package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roasbeef/tsqueue/envelope"
	"github.com/roasbeef/tsqueue/queue"
	"github.com/spf13/cobra"
)

var (
	numProducers   int
	numConsumers   int
	perProducer    int
	capacityFlag   int
	runTimeout     time.Duration
	useTryVariants bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive producers and consumers against a bounded queue",
	Long: `Spin up a bounded queue and run a configurable number of producer
and consumer goroutines against it, then shut the queue down and report
throughput and drop counts.`,
	RunE: runBench,
}

func init() {
	runCmd.Flags().IntVar(
		&numProducers, "producers", 4, "number of producer goroutines",
	)
	runCmd.Flags().IntVar(
		&numConsumers, "consumers", 4, "number of consumer goroutines",
	)
	runCmd.Flags().IntVar(
		&perProducer, "per-producer", 10000,
		"messages each producer sends",
	)
	runCmd.Flags().IntVar(
		&capacityFlag, "capacity", 0,
		"queue capacity (0 uses the configured default)",
	)
	runCmd.Flags().DurationVar(
		&runTimeout, "op-timeout", 0,
		"use PushTimeout/PopTimeout with this bound instead of "+
			"blocking indefinitely (0 disables)",
	)
	runCmd.Flags().BoolVar(
		&useTryVariants, "non-blocking", false,
		"use TryPush/TryPop with a short retry spin instead of "+
			"blocking",
	)
}

// stats accumulates the demo's counters with atomics so producers and
// consumers can update them without a shared lock.
type stats struct {
	pushed  atomic.Int64
	popped  atomic.Int64
	dropped atomic.Int64
	retried atomic.Int64
}

func runBench(cmd *cobra.Command, args []string) error {
	capacity := capacityFlag
	if capacity == 0 {
		capacity = cfg.Queue.Capacity
	}

	q, err := queue.New(capacity)
	if err != nil {
		return fmt.Errorf("constructing queue: %w", err)
	}

	var st stats

	var producerWG sync.WaitGroup
	start := time.Now()

	for p := 0; p < numProducers; p++ {
		producerWG.Add(1)
		go func(producerID int) {
			defer producerWG.Done()
			produce(q, producerID, &st)
		}(p)
	}

	var consumerWG sync.WaitGroup
	for c := 0; c < numConsumers; c++ {
		consumerWG.Add(1)
		go func(consumerID int) {
			defer consumerWG.Done()
			consume(q, &st)
		}(c)
	}

	producerWG.Wait()
	q.Shutdown()
	consumerWG.Wait()

	elapsed := time.Since(start)

	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("producers:   %d\n", numProducers)
	fmt.Printf("consumers:   %d\n", numConsumers)
	fmt.Printf("capacity:    %d\n", capacity)
	fmt.Printf("pushed:      %d\n", st.pushed.Load())
	fmt.Printf("popped:      %d\n", st.popped.Load())
	fmt.Printf("dropped:     %d\n", st.dropped.Load())
	fmt.Printf("retried:     %d\n", st.retried.Load())
	fmt.Printf("elapsed:     %s\n", elapsed)

	return nil
}

func produce(q *queue.Queue, producerID int, st *stats) {
	for seq := 0; seq < perProducer; seq++ {
		env, err := envelope.Create(
			"bench", []byte(strconv.Itoa(seq)),
			strconv.Itoa(producerID),
		)
		if err != nil {
			st.dropped.Add(1)
			continue
		}

		switch {
		case useTryVariants:
			for {
				pushErr := q.TryPush(env)
				if pushErr == nil {
					st.pushed.Add(1)
					break
				}
				if errors.Is(pushErr, queue.ErrShutdown) {
					st.dropped.Add(1)
					break
				}
				st.retried.Add(1)
				time.Sleep(time.Microsecond)
			}

		case runTimeout > 0:
			if pushErr := q.PushTimeout(env, runTimeout); pushErr != nil {
				st.dropped.Add(1)
			} else {
				st.pushed.Add(1)
			}

		default:
			if pushErr := q.Push(env); pushErr != nil {
				st.dropped.Add(1)
			} else {
				st.pushed.Add(1)
			}
		}
	}
}

func consume(q *queue.Queue, st *stats) {
	for {
		var (
			env *envelope.Envelope
			err error
		)

		switch {
		case useTryVariants:
			env, err = q.TryPop()
			if errors.Is(err, queue.ErrQueueEmpty) {
				st.retried.Add(1)
				time.Sleep(time.Microsecond)
				continue
			}

		case runTimeout > 0:
			env, err = q.PopTimeout(runTimeout)
			if errors.Is(err, queue.ErrTimeout) {
				continue
			}

		default:
			env, err = q.Pop()
		}

		if err != nil {
			return
		}

		envelope.Release(env)
		st.popped.Add(1)
	}
}
