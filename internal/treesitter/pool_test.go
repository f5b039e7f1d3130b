package treesitter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestParserPoolGetReleaseRoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewParserPoolWithSize(2)
	defer pool.Close()

	lp1, err := pool.Get()
	require.NoError(t, err)
	require.NotNil(t, lp1)

	lp2, err := pool.Get()
	require.NoError(t, err)
	require.NotNil(t, lp2)

	pool.Release(lp1)
	pool.Release(lp2)
}

func TestParserPoolCloseRejectsFurtherGets(t *testing.T) {
	pool := NewParserPoolWithSize(1)
	require.NoError(t, pool.Close())

	_, err := pool.Get()
	require.ErrorIs(t, err, ErrParserPoolClosed)
}

func TestParserPoolCloseWaitsForHeldParsers(t *testing.T) {
	pool := NewParserPoolWithSize(1)

	lp, err := pool.Get()
	require.NoError(t, err)

	closed := make(chan error, 1)
	go func() {
		closed <- pool.Close()
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a parser was still held")
	case <-time.After(50 * time.Millisecond):
	}

	pool.Release(lp)
	require.NoError(t, <-closed)
}
