package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corestream/streamcore/stats"
)

// property 9: IDR-request hysteresis. A sustained backlog triggers
// exactly one request until a keyframe clears the latch.
func TestIdrPolicy_QueuePressureLatchesUntilKeyframe(t *testing.T) {
	var p stats.IdrPolicy

	assert.True(t, p.ShouldRequestQueuePressure(20, 60), "20/60*1000=333ms backlog exceeds the 200ms threshold")

	for i := 0; i < 5; i++ {
		assert.False(t, p.ShouldRequestQueuePressure(20, 60), "must not re-request while latched")
	}
	assert.True(t, p.Requested())

	p.ClearOnKeyframe()
	assert.False(t, p.Requested())
	assert.True(t, p.ShouldRequestQueuePressure(20, 60), "a fresh backlog after the latch clears requests again")
}

func TestIdrPolicy_QueuePressureBelowThresholdNeverRequests(t *testing.T) {
	var p stats.IdrPolicy
	assert.False(t, p.ShouldRequestQueuePressure(2, 60), "queueSize must exceed 2")
	assert.False(t, p.ShouldRequestQueuePressure(1, 60), "1/60*1000=16.6ms delay is well under threshold")
	assert.False(t, p.ShouldRequestQueuePressure(10, 0), "fps=0 must not divide by zero or trigger")
}

func TestIdrPolicy_DropCountLatchesAtSixty(t *testing.T) {
	var p stats.IdrPolicy
	for n := 0; n < 60; n++ {
		assert.False(t, p.ShouldRequestDropCount(n), "must not fire before crossing 60")
	}
	assert.True(t, p.ShouldRequestDropCount(60))
	assert.False(t, p.ShouldRequestDropCount(61), "latched after the first request")

	p.ClearOnKeyframe()
	assert.True(t, p.ShouldRequestDropCount(60), "clears and can request again after a keyframe")
}
