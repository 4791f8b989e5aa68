package wheel

import (
	"math"
	"math/rand"
	"time"
)

// Start begins a drag gesture at the given position. It is ignored while a
// spin is in flight or when the position falls outside the wheel's disk.
func (w *Wheel) Start(x, y float64) {
	if w.spinning || w.dragging {
		return
	}
	dx := x - w.cfg.CenterX
	dy := y - w.cfg.CenterY
	if math.Hypot(dx, dy) > w.cfg.Radius {
		return
	}
	w.lastAngle = math.Atan2(dy, dx)
	w.lastTime = w.now()
	w.samples = w.samples[:0]
	w.velocity = 0
	w.dragging = true
}

// Move tracks the pointer during a drag. The wheel follows the pointer
// directly: the angular delta since the last event is accumulated into the
// rotation, and an instantaneous velocity sample is recorded for the release
// estimate. Ignored when no drag is active.
func (w *Wheel) Move(x, y float64) {
	if !w.dragging {
		return
	}
	angle := math.Atan2(y-w.cfg.CenterY, x-w.cfg.CenterX)

	// Raw delta lives in (-2π, 2π); fold it into (-π, π] so a drag crossing
	// the atan2 discontinuity at ±π doesn't read as a near-full turn.
	delta := angle - w.lastAngle
	if delta > math.Pi {
		delta -= 2 * math.Pi
	} else if delta <= -math.Pi {
		delta += 2 * math.Pi
	}
	w.rotation += delta

	now := w.now()
	if dt := now.Sub(w.lastTime).Seconds(); dt > 0 {
		w.samples = append(w.samples, velocitySample{velocity: delta / dt, at: now})
		w.evictSamples(now)
	}
	w.lastAngle = angle
	w.lastTime = now
}

// End releases the drag. The release velocity is the mean of the samples in
// the trailing window, damped and clamped; if it clears the spin threshold the
// wheel enters the spinning state with a small random kick. A drag that
// produced no samples (zero-length, or no measurable time delta) never spins.
func (w *Wheel) End() {
	if !w.dragging {
		return
	}
	w.dragging = false
	if len(w.samples) == 0 {
		return
	}

	var sum float64
	for _, s := range w.samples {
		sum += s.velocity
	}
	v := sum / float64(len(w.samples)) * ReleaseDamping
	v = clampVelocity(v)
	w.velocity = v

	if math.Abs(v) > SpinThreshold {
		w.spinning = true
		w.velocity += (w.randFloat()*2 - 1) * PerturbRange
	}
}

// Launch starts a spin without a gesture, as if a drag had been released at
// the given velocity. Used by server-side simulations. The velocity is clamped
// to the same range as a real release and gets the same random kick.
func (w *Wheel) Launch(velocity float64) error {
	if w.dragging || w.spinning {
		return ErrSpinning
	}
	v := clampVelocity(velocity)
	if math.Abs(v) <= SpinThreshold {
		return ErrTooSlow
	}
	w.velocity = v + (w.randFloat()*2-1)*PerturbRange
	w.spinning = true
	return nil
}

// evictSamples drops samples that fell out of the trailing window.
func (w *Wheel) evictSamples(now time.Time) {
	cutoff := now.Add(-sampleWindow)
	i := 0
	for i < len(w.samples) && !w.samples[i].at.After(cutoff) {
		i++
	}
	if i > 0 {
		w.samples = append(w.samples[:0], w.samples[i:]...)
	}
}

func clampVelocity(v float64) float64 {
	if v > MaxReleaseVelocity {
		return MaxReleaseVelocity
	}
	if v < -MaxReleaseVelocity {
		return -MaxReleaseVelocity
	}
	return v
}

func (w *Wheel) now() time.Time {
	return w.cfg.Now()
}

func (w *Wheel) randFloat() float64 {
	if w.cfg.Rand != nil {
		return w.cfg.Rand.Float64()
	}
	return rand.Float64()
}
