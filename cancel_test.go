package ordr

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCancelHandle_CancelIsIdempotent(t *testing.T) {
	h := NewCancelHandle()
	assert.False(t, h.Cancelled())

	h.Cancel()
	h.Cancel()
	assert.True(t, h.Cancelled())

	select {
	case <-h.Done():
	default:
		t.Fatal("Done channel should be closed after Cancel")
	}
}

func TestCancelHandle_ConcurrentCancel(t *testing.T) {
	h := NewCancelHandle()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Cancel()
		}()
	}
	wg.Wait()
	assert.True(t, h.Cancelled())
}
