package backup

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlag_ConsumeClears(t *testing.T) {
	f := NewFlag()
	assert.False(t, f.Dirty())
	assert.False(t, f.Consume())

	f.MarkDirty()
	assert.True(t, f.Dirty())

	assert.True(t, f.Consume())
	assert.False(t, f.Dirty())
	assert.False(t, f.Consume())
}

func TestFlag_ConcurrentConsumeIsExclusive(t *testing.T) {
	f := NewFlag()
	f.MarkDirty()

	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan bool, workers)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- f.Consume()
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for w := range wins {
		if w {
			won++
		}
	}
	assert.Equal(t, 1, won)
}
