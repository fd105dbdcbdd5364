package engine

// Component G: Burst Detector (spec §4.G). A windowed arrival-rate
// classifier that toggles the chosen sleep tier between a light,
// fast-to-wake tier during bursts and a deeper tier once traffic quiets.
type burstDetector struct {
	cfg EngineConfig

	windowStart  Time
	currentCount int
	ring         []int // ring of length H of closed-window counts

	inBurst    bool
	quietCount int
	tier       SState
}

func newBurstDetector(cfg EngineConfig) burstDetector {
	return burstDetector{
		cfg:  cfg,
		tier: cfg.NonBurstSleepState,
		ring: make([]int, 0, cfg.BurstRingLength),
	}
}

// currentTier returns the sleep tier currently chosen by the detector.
func (b *burstDetector) currentTier() SState { return b.tier }

// onArrival records a task arrival at now, closing windows as they
// elapse, and returns true iff the chosen sleep tier changed as a
// result. Two arrivals landing in the same window can close at most one
// window and therefore produce at most one tier change (spec §8
// property 5).
func (b *burstDetector) onArrival(now Time) bool {
	if b.cfg.BurstWindowLength <= 0 {
		return false
	}
	if b.windowStart == 0 && b.currentCount == 0 && len(b.ring) == 0 {
		b.windowStart = now
	}

	changed := false
	for now-b.windowStart >= b.cfg.BurstWindowLength {
		if b.closeWindow() {
			changed = true
		}
		b.windowStart += b.cfg.BurstWindowLength
	}

	b.currentCount++
	return changed
}

// closeWindow shifts the ring, appends the just-closed window's count,
// resets the counter, and applies the burst/quiet transition rules of
// spec §4.G. Returns true iff the chosen tier changed.
func (b *burstDetector) closeWindow() bool {
	count := b.currentCount
	b.currentCount = 0

	if len(b.ring) == b.cfg.BurstRingLength {
		b.ring = b.ring[1:]
	}
	b.ring = append(b.ring, count)

	before := b.tier

	switch {
	case !b.inBurst && count > b.cfg.BurstThreshold:
		b.inBurst = true
		b.tier = b.cfg.BurstSleepState
		b.quietCount = 0
	case b.inBurst && count < b.cfg.QuietThreshold:
		b.quietCount++
		if b.quietCount >= b.cfg.QuietWindows {
			b.inBurst = false
			b.tier = b.cfg.NonBurstSleepState
			b.quietCount = 0
		}
	default:
		b.quietCount = 0
	}

	return b.tier != before
}
