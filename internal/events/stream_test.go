package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_PublishToSubscribers(t *testing.T) {
	stream := NewStream[string]()

	ch, cancel := stream.Subscribe(4)
	assert.Equal(t, 1, stream.Subscribers())

	assert.Equal(t, 1, stream.Publish("saved"))
	assert.Equal(t, 1, stream.Publish("deleted"))

	assert.Equal(t, "saved", <-ch)
	assert.Equal(t, "deleted", <-ch)

	cancel()
	assert.Equal(t, 0, stream.Subscribers())
	assert.Equal(t, 0, stream.Publish("ignored"))

	_, open := <-ch
	assert.False(t, open, "channel is closed on cancel")
}

func TestStream_FullBufferDropsValue(t *testing.T) {
	stream := NewStream[int]()

	ch, cancel := stream.Subscribe(1)
	defer cancel()

	assert.Equal(t, 1, stream.Publish(1))
	assert.Equal(t, 0, stream.Publish(2))

	require.Len(t, ch, 1)
	assert.Equal(t, 1, <-ch)
}

func TestStream_CancelTwice(t *testing.T) {
	stream := NewStream[int]()
	_, cancel := stream.Subscribe(0)
	cancel()
	assert.NotPanics(t, cancel)
}
