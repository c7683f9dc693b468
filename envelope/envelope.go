// Package envelope implements the immutable message envelope transported
// by the queue package. An Envelope owns its payload exclusively for its
// entire lifetime: the producer owns it until a successful push, the
// queue owns it while enqueued, and the consumer owns it after a
// successful pop.
package envelope

import (
	"time"

	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/tsqueue/errcode"
)

const (
	// MaxTopicLen is the maximum topic length in bytes, inclusive: a
	// topic is strictly shorter than 256 bytes (matches the source's
	// null-terminated 256-byte inline buffer, minus the terminator).
	MaxTopicLen = 255

	// MaxKeyLen is the maximum routing key length in bytes, inclusive: a
	// key is strictly shorter than 128 bytes.
	MaxKeyLen = 127

	// MaxPayloadSize is the maximum payload size in bytes.
	MaxPayloadSize = 65536
)

// Envelope is an immutable message value. Once handed to a successful
// queue push, the producer must treat its reference as invalid: the
// envelope belongs solely to the queue until a consumer pops it.
type Envelope struct {
	// ID is a generated identifier distinct from Key, useful for log
	// correlation. It is not part of the source spec's data model and
	// no invariant depends on it.
	ID uuid.UUID

	// Topic is the logical channel this envelope was published to.
	Topic string

	// key is the optional routing key. fn.Option models "empty means
	// unset" without overloading the zero value of a plain string.
	key fn.Option[string]

	// Payload is the opaque, exclusively-owned byte payload. Callers
	// must not mutate it after a successful push.
	Payload []byte

	// TimestampMs is the wall-clock creation time in milliseconds since
	// the epoch. Monotonic non-decreasing is not required.
	TimestampMs uint64

	// PartitionID is an unsigned 32-bit sharding hint, reserved for
	// future use. Defaults to 0.
	PartitionID uint32
}

// Key returns the routing key, or "" if it was never set. This mirrors
// the source's "empty string means unset" contract even though the
// field is internally modeled with fn.Option.
func (e *Envelope) Key() string {
	return e.key.UnwrapOr("")
}

// HasKey reports whether a routing key was set at creation time.
func (e *Envelope) HasKey() bool {
	return e.key.IsSome()
}

// Create builds a new Envelope that deep-copies payload and owns that
// copy for its entire lifetime. It fails with errcode.NullParam if topic
// is empty or payload is nil, errcode.InvalidTopic if topic is too long,
// and errcode.Allocation if payload exceeds MaxPayloadSize or the key is
// too long.
func Create(
	topic string, payload []byte, key string,
) (*Envelope, error) {

	if topic == "" {
		return nil, errcode.New(
			errcode.NullParam, "topic must not be empty",
		)
	}
	if payload == nil {
		return nil, errcode.New(
			errcode.NullParam, "payload must not be nil",
		)
	}
	if len(topic) > MaxTopicLen {
		return nil, errcode.Errorf(
			errcode.InvalidTopic,
			"topic length %d exceeds bound %d",
			len(topic), MaxTopicLen,
		)
	}
	if len(key) > MaxKeyLen {
		return nil, errcode.Errorf(
			errcode.Allocation,
			"key length %d exceeds bound %d",
			len(key), MaxKeyLen,
		)
	}
	if len(payload) > MaxPayloadSize {
		return nil, errcode.Errorf(
			errcode.Allocation,
			"payload size %d exceeds bound %d",
			len(payload), MaxPayloadSize,
		)
	}

	ownedPayload := make([]byte, len(payload))
	copy(ownedPayload, payload)

	keyOpt := fn.None[string]()
	if key != "" {
		keyOpt = fn.Some(key)
	}

	env := &Envelope{
		ID:          uuid.New(),
		Topic:       topic,
		key:         keyOpt,
		Payload:     ownedPayload,
		TimestampMs: nowMs(),
		PartitionID: 0,
	}

	log.Tracef("envelope created: id=%s topic=%s payload_size=%d",
		env.ID, topic, len(payload))

	return env, nil
}

// CreateString is a convenience over Create for a string payload, with
// no routing key.
func CreateString(topic, text string) (*Envelope, error) {
	return Create(topic, []byte(text), "")
}

// Clone deep-copies src into a new Envelope. The clone gets a fresh ID
// and a recomputed timestamp (clones are new envelopes), but PartitionID
// is preserved rather than reset to 0 -- see SPEC_FULL.md Part B for why
// this departs from the original C source.
func Clone(src *Envelope) (*Envelope, error) {
	if src == nil {
		return nil, errcode.New(errcode.NullParam, "src must not be nil")
	}

	dst, err := Create(src.Topic, src.Payload, src.Key())
	if err != nil {
		return nil, err
	}

	dst.PartitionID = src.PartitionID

	return dst, nil
}

// Release clears the envelope's payload reference. It is not a free in
// the C sense (the Go garbage collector owns the memory), but it gives
// callers a way to make accidental reuse after a successful pop/push
// handoff fail loudly instead of silently reading stale data. Release
// tolerates a nil argument and is not idempotence-safe: callers must
// release an envelope at most once, per the ownership-transfer contract.
func Release(e *Envelope) {
	if e == nil {
		return
	}

	log.Tracef("envelope released: id=%s topic=%s", e.ID, e.Topic)

	e.Payload = nil
}

func nowMs() uint64 {
	return uint64(time.Now().UnixMilli())
}
