package port

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPort_OpenWriteRead(t *testing.T) {
	a, b := NewLoopbackPair()

	pa := New(Config{ID: 0, Name: "a"}, LoopbackOpener(a))
	pb := New(Config{ID: 1, Name: "b"}, LoopbackOpener(b))
	defer pa.Close()
	defer pb.Close()

	require.Equal(t, StateOpen, pa.State())
	require.NoError(t, pa.Write([]byte("hello")))

	buf := make([]byte, 5)
	n, err := pb.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))

	assert.Equal(t, uint64(5), pa.Stats().BytesOut)
	assert.Equal(t, uint64(5), pb.Stats().BytesIn)
}

func TestPort_WriteAfterCloseFails(t *testing.T) {
	a, _ := NewLoopbackPair()
	p := New(Config{ID: 0, Name: "a"}, LoopbackOpener(a))
	require.NoError(t, p.Close())

	err := p.Write([]byte("x"))
	assert.Error(t, err)
}

func TestPort_IdleDetection(t *testing.T) {
	a, b := NewLoopbackPair()
	pa := New(Config{ID: 0, Name: "a", IdleBeforeTx: 10 * time.Millisecond}, LoopbackOpener(a))
	pb := New(Config{ID: 1, Name: "b"}, LoopbackOpener(b))
	defer pa.Close()
	defer pb.Close()

	require.True(t, pa.Idle())

	require.NoError(t, pb.Write([]byte("x")))
	buf := make([]byte, 1)
	_, err := pa.Read(buf)
	require.NoError(t, err)

	assert.False(t, pa.Idle())
	time.Sleep(15 * time.Millisecond)
	assert.True(t, pa.Idle())
}

func TestPort_FailedOpenEntersReconnecting(t *testing.T) {
	opener := func() (Conn, error) {
		return nil, assertErr
	}
	p := New(Config{ID: 0, Name: "bad"}, opener)
	assert.Equal(t, StateReconnecting, p.State())
	assert.NotEmpty(t, p.Stats().LastError)
}

func TestPort_ReconnectEntersProbingUntilStabilityWindowElapses(t *testing.T) {
	a, b := NewLoopbackPair()
	p := New(Config{ID: 0, Name: "a"}, LoopbackOpener(a))
	require.Equal(t, StateOpen, p.State())

	// Reconnect's liveness probe lands in StateProbing, not StateOpen:
	// writes must be refused until clean reads prove the link live.
	p.attemptOpen(true)
	require.Equal(t, StateProbing, p.State())
	assert.Error(t, p.Write([]byte("x")), "probing port must refuse writes")

	_, err := b.Write([]byte("y"))
	require.NoError(t, err)
	buf := make([]byte, 1)
	_, err = p.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, StateProbing, p.State(), "one clean read is not yet stabilityWindow")

	// Force the clock: backdate cleanReadsAt past the stability window and
	// read once more to trigger the promotion.
	p.mu.Lock()
	p.cleanReadsAt = time.Now().Add(-stabilityWindow)
	p.mu.Unlock()
	_, err = b.Write([]byte("z"))
	require.NoError(t, err)
	_, err = p.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, StateOpen, p.State(), "stabilityWindow of clean reads promotes probing to open")

	p.Close()
	b.Close()
}

func TestPort_InitialOpenSkipsProbing(t *testing.T) {
	a, _ := NewLoopbackPair()
	p := New(Config{ID: 0, Name: "a"}, LoopbackOpener(a))
	defer p.Close()
	assert.Equal(t, StateOpen, p.State(), "the first open has no prior failure to recover from")
	assert.NoError(t, p.Write([]byte("x")))
}

var assertErr = &testOpenError{}

type testOpenError struct{}

func (e *testOpenError) Error() string { return "simulated open failure" }
