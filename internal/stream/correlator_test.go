package stream

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/pkg/exception"
)

func TestCorrelatorResolveExactlyOnce(t *testing.T) {
	c := NewCorrelator()

	ch, err := c.Register(1)
	require.NoError(t, err)

	assert.True(t, c.Resolve(1, json.RawMessage(`{"ok":true}`)))
	assert.False(t, c.Resolve(1, json.RawMessage(`{"ok":false}`)), "second resolve must find nothing pending")

	result := <-ch
	require.NoError(t, result.err)
	assert.JSONEq(t, `{"ok":true}`, string(result.payload))
	assert.Zero(t, c.Len())
}

func TestCorrelatorDuplicateID(t *testing.T) {
	c := NewCorrelator()

	_, err := c.Register(7)
	require.NoError(t, err)

	_, err = c.Register(7)
	assert.ErrorIs(t, err, exception.ErrDuplicateRequestID)
}

func TestCorrelatorIndependentIDs(t *testing.T) {
	c := NewCorrelator()

	first, err := c.Register(1)
	require.NoError(t, err)
	second, err := c.Register(2)
	require.NoError(t, err)

	require.True(t, c.Resolve(2, json.RawMessage(`"b"`)))
	require.True(t, c.Resolve(1, json.RawMessage(`"a"`)))

	assert.Equal(t, `"a"`, string((<-first).payload))
	assert.Equal(t, `"b"`, string((<-second).payload))
}

func TestCorrelatorFailAllOnDisconnect(t *testing.T) {
	c := NewCorrelator()

	channels := make([]<-chan postResult, 0, 3)
	for id := uint64(1); id <= 3; id++ {
		ch, err := c.Register(id)
		require.NoError(t, err)
		channels = append(channels, ch)
	}

	c.FailAll(exception.ErrConnectionClosed)

	for _, ch := range channels {
		result := <-ch
		assert.ErrorIs(t, result.err, exception.ErrConnectionClosed)
	}
	assert.Zero(t, c.Len())
	assert.False(t, c.Resolve(1, nil), "late response after fail-all must be ignored")
}

func TestCorrelatorForget(t *testing.T) {
	c := NewCorrelator()

	_, err := c.Register(5)
	require.NoError(t, err)

	c.Forget(5)
	assert.Zero(t, c.Len())
	assert.False(t, c.Resolve(5, nil))
}
