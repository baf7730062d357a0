package rpc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingCallsIDsAreMonotonic(t *testing.T) {

	pending := newPendingCalls()

	var last uint64
	for i := 0; i < 100; i++ {
		id, _, err := pending.create()
		require.NoError(t, err)
		if i > 0 {
			assert.Greater(t, id, last)
		}
		last = id
	}
}

func TestPendingCallsSettle(t *testing.T) {

	pending := newPendingCalls()

	id, ch, err := pending.create()
	require.NoError(t, err)

	ok := pending.settle(id, callResult{result: "value"})
	require.True(t, ok)

	res := <-ch
	assert.Equal(t, "value", res.result)
	assert.NoError(t, res.err)

	// already consumed, a duplicate settle is dropped
	assert.False(t, pending.settle(id, callResult{result: "other"}))
}

func TestPendingCallsSettleUnknownID(t *testing.T) {

	pending := newPendingCalls()

	assert.False(t, pending.settle(12345, callResult{result: "late"}))
}

func TestPendingCallsRejectAll(t *testing.T) {

	pending := newPendingCalls()

	_, ch1, err := pending.create()
	require.NoError(t, err)
	_, ch2, err := pending.create()
	require.NoError(t, err)

	pending.rejectAll(ErrClosed)

	res1 := <-ch1
	res2 := <-ch2
	assert.ErrorIs(t, res1.err, ErrClosed)
	assert.ErrorIs(t, res2.err, ErrClosed)

	// no new calls after teardown
	_, _, err = pending.create()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPendingCallsRejectAllOnEmptyTableIsNoop(t *testing.T) {

	pending := newPendingCalls()

	pending.rejectAll(ErrClosed)
	pending.rejectAll(ErrClosed)
}

func TestPendingCallsConcurrentCreateAndSettle(t *testing.T) {

	pending := newPendingCalls()

	const callers = 50

	var wg sync.WaitGroup
	ids := make(chan uint64, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, ch, err := pending.create()
			assert.NoError(t, err)
			ids <- id
			res := <-ch
			assert.Equal(t, id, res.result)
		}()
	}

	for i := 0; i < callers; i++ {
		id := <-ids
		require.True(t, pending.settle(id, callResult{result: id}))
	}

	wg.Wait()
}
