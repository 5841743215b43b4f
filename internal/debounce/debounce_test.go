package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_OnlyLastCallRuns(t *testing.T) {
	d := New(50 * time.Millisecond)

	var last atomic.Int32
	var runs atomic.Int32
	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Call(func() {
			runs.Add(1)
			last.Store(n)
		})
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, int32(5), last.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_SpacedCallsAllRun(t *testing.T) {
	d := New(20 * time.Millisecond)
	var runs atomic.Int32

	d.Call(func() { runs.Add(1) })
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	d.Call(func() { runs.Add(1) })
	assert.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_Cancel(t *testing.T) {
	d := New(30 * time.Millisecond)
	var runs atomic.Int32

	d.Call(func() { runs.Add(1) })
	assert.True(t, d.Pending())
	d.Cancel()
	assert.False(t, d.Pending())

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, runs.Load())
}

func TestNew_DefaultWait(t *testing.T) {
	assert.Equal(t, DefaultWait, New(0).wait)
	assert.Equal(t, 500*time.Millisecond, DefaultWait)
}
