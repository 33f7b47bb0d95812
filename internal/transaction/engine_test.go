package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/pentacore/bridge/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trivialDecoder treats each byte as a complete one-byte-payload frame,
// enough to exercise the engine's matcher and retry logic without pulling
// in a real wire codec.
func trivialDecoder() Decoder {
	return func(b byte) (*Frame, error) {
		return &Frame{Src: 0x10, Action: 0x01, Payload: []byte{b}}, nil
	}
}

func TestEngine_SuccessfulRoundTrip(t *testing.T) {
	a, b := port.NewLoopbackPair()
	pa := port.New(port.Config{ID: 0, Name: "a"}, port.LoopbackOpener(a))
	pb := port.New(port.Config{ID: 1, Name: "b"}, port.LoopbackOpener(b))
	defer pa.Close()
	defer pb.Close()

	e := NewEngine(pa, trivialDecoder(), DefaultPacerConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)
	defer e.Stop()

	// The peer replies only after the request arrives; a reply sent before
	// the transaction is registered would be routed as spontaneous status.
	go func() {
		buf := make([]byte, 1)
		if _, err := pb.Read(buf); err == nil {
			_ = pb.Write([]byte{0x01})
		}
	}()

	done := make(chan *MatchResult, 1)
	e.Enqueue(&Outbound{
		Priority:       PriorityUser,
		Frame:          []byte{0xAA},
		ExpectedPeer:   0x10,
		ExpectedAction: 0x01,
		TimeoutMs:      500,
		OnResult:       func(r *MatchResult) { done <- r },
	})

	select {
	case r := <-done:
		assert.True(t, r.Matched)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for transaction result")
	}
}

func TestEngine_NoResponseAfterRetries(t *testing.T) {
	a, _ := port.NewLoopbackPair()
	pa := port.New(port.Config{ID: 0, Name: "a"}, port.LoopbackOpener(a))
	defer pa.Close()

	e := NewEngine(pa, trivialDecoder(), DefaultPacerConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)
	defer e.Stop()

	done := make(chan *MatchResult, 1)
	e.Enqueue(&Outbound{
		Priority:       PriorityUser,
		Frame:          []byte{0xAA},
		ExpectedPeer:   0x10,
		ExpectedAction: 0x99,
		TimeoutMs:      20,
		MaxRetries:     1,
		RetryBackoffMs: []int{5},
		OnResult:       func(r *MatchResult) { done <- r },
	})

	select {
	case r := <-done:
		require.Error(t, r.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for NoResponse result")
	}
}

func TestPriorityQueue_Ordering(t *testing.T) {
	q := NewQueue()
	q.Enqueue(&Outbound{Priority: PriorityBackground})
	q.Enqueue(&Outbound{Priority: PrioritySystem})
	q.Enqueue(&Outbound{Priority: PriorityUser})

	first := q.Dequeue()
	assert.Equal(t, PrioritySystem, first.Priority)
	second := q.Dequeue()
	assert.Equal(t, PriorityUser, second.Priority)
	third := q.Dequeue()
	assert.Equal(t, PriorityBackground, third.Priority)
}
