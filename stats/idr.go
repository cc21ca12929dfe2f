package stats

// IdrPolicy is the shared hysteresis decision used by both the hardware
// decoder pipe's queue-pressure check (SPEC_FULL §4.2) and the
// fragmented-MP4 sink's drop-accounting check (§4.4): request at most
// one IDR per violation, and latch until a key frame clears it.
type IdrPolicy struct {
	requested bool
}

// ShouldRequestQueuePressure implements §4.2's formula: estimated queue
// delay is queueSize/fps*1000ms; request an IDR if that exceeds 200ms
// and queueSize exceeds 2, but only once per latch.
func (p *IdrPolicy) ShouldRequestQueuePressure(queueSize int, fps uint32) bool {
	if p.requested {
		return false
	}
	if fps == 0 {
		return false
	}
	delayMs := float64(queueSize) / float64(fps) * 1000
	if delayMs > 200 && queueSize > 2 {
		p.requested = true
		return true
	}
	return false
}

// ShouldRequestDropCount implements §4.4's drop-accounting rule:
// request an IDR once consecutiveDrops crosses 60, once per latch.
func (p *IdrPolicy) ShouldRequestDropCount(consecutiveDrops int) bool {
	if p.requested {
		return false
	}
	if consecutiveDrops >= 60 {
		p.requested = true
		return true
	}
	return false
}

// ClearOnKeyframe releases the latch; called whenever a key frame is
// observed, per both §4.2 and §4.4.
func (p *IdrPolicy) ClearOnKeyframe() {
	p.requested = false
}

func (p *IdrPolicy) Requested() bool { return p.requested }
