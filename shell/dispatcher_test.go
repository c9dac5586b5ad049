package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRunsCommandsInOrder(t *testing.T) {
	d := NewDispatcher()
	go d.Run()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		d.Post(func() { got = append(got, i) })
	}
	d.Close()

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestSendWaitsForCompletion(t *testing.T) {
	d := NewDispatcher()
	go d.Run()
	defer d.Close()

	ran := false
	d.Send(func() { ran = true })
	assert.True(t, ran, "Send returns only after the command ran")
}

func TestPostedBacklogDrainsBeforeClose(t *testing.T) {
	d := NewDispatcher()
	go d.Run()

	count := 0
	for i := 0; i < commandBacklog/2; i++ {
		d.Post(func() { count++ })
	}
	d.Close()
	assert.Equal(t, commandBacklog/2, count)
}
