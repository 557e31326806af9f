package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnqueueKeepsNewestFrames(t *testing.T) {
	c := &client{send: make(chan []byte, 2), done: make(chan struct{})}

	for _, msg := range []string{"f1", "f2", "f3", "f4"} {
		assert.True(t, c.enqueue([]byte(msg)))
	}

	assert.Equal(t, "f3", string(<-c.send))
	assert.Equal(t, "f4", string(<-c.send))
}

func TestEnqueueAfterDisconnect(t *testing.T) {
	c := &client{send: make(chan []byte, 1), done: make(chan struct{})}
	close(c.done)
	assert.False(t, c.enqueue([]byte("f1")))
	assert.Empty(t, c.send)
}
