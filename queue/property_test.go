package queue_test

import (
	"testing"

	"github.com/roasbeef/tsqueue/envelope"
	"github.com/roasbeef/tsqueue/queue"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestQueueInvariants drives a single-goroutine model of TryPush/TryPop
// against the real queue and checks that size never exceeds capacity,
// IsEmpty agrees with Size, and FIFO order holds throughout a random
// sequence of operations.
func TestQueueInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		capacity := rapid.IntRange(1, 16).Draw(rt, "capacity")

		q, err := queue.New(capacity)
		require.NoError(rt, err)

		var model []string

		op := rapid.SampledFrom([]string{"push", "pop"})

		for i := 0; i < 200; i++ {
			switch op.Draw(rt, "op") {
			case "push":
				payload := rapid.StringN(0, 8, -1).Draw(rt, "payload")

				e, err := envelope.CreateString("t", payload)
				require.NoError(rt, err)

				pushErr := q.TryPush(e)
				if len(model) >= capacity {
					require.ErrorIs(rt, pushErr, queue.ErrQueueFull)
				} else {
					require.NoError(rt, pushErr)
					model = append(model, payload)
				}

			case "pop":
				e, popErr := q.TryPop()
				if len(model) == 0 {
					require.ErrorIs(rt, popErr, queue.ErrQueueEmpty)
				} else {
					require.NoError(rt, popErr)
					require.Equal(rt, model[0], string(e.Payload))
					model = model[1:]
				}
			}

			require.Equal(rt, len(model), q.Size())
			require.Equal(rt, len(model) == 0, q.IsEmpty())
			require.LessOrEqual(rt, q.Size(), capacity)
		}
	})
}

// TestCloneIndependence checks that Clone produces an envelope whose
// payload is a distinct backing array from the source, and that
// mutating one never affects the other.
func TestCloneIndependence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		payload := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(rt, "payload")

		src, err := envelope.Create("t", payload, "")
		require.NoError(rt, err)

		clone, err := envelope.Clone(src)
		require.NoError(rt, err)

		require.Equal(rt, src.Payload, clone.Payload)
		require.NotEqual(rt, src.ID, clone.ID)
		require.Equal(rt, src.PartitionID, clone.PartitionID)

		if len(clone.Payload) > 0 {
			clone.Payload[0] ^= 0xFF
			require.NotEqual(rt, src.Payload[0], clone.Payload[0])
		}
	})
}
