// Package wheel implements the drag-to-spin physics for a lucky-draw wheel:
// gesture tracking, friction-based motion integration, and mapping the settled
// rotation to a winning segment.
//
// A Wheel is a plain value with no goroutines and no locking. All methods must
// be called from a single owner (one UI thread, one simulation loop, one
// request handler). Rotation accumulates without bound across spins and is only
// normalized when resolving a winner, never destructively.
package wheel

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

// Motion and release constants. These are behavioral: changing any of them
// changes spin duration and outcome distribution.
const (
	// Friction is the per-tick velocity multiplier while coasting.
	Friction = 0.985

	// StepSeconds is the fixed integration step. Each Tick advances rotation
	// by velocity*StepSeconds regardless of wall-clock time between calls.
	// Swapping in delta-time integration would change spin duration.
	StepSeconds = 0.016

	// MinVelocity is the settle threshold in rad/s.
	MinVelocity = 0.001

	// ReleaseDamping models energy lost when the finger leaves the wheel.
	ReleaseDamping = 0.8

	// MaxReleaseVelocity clamps the release velocity to ±50 rad/s.
	MaxReleaseVelocity = 50.0

	// SpinThreshold is the minimum release speed (rad/s) that starts a spin.
	// Slower releases let the wheel drift but never produce an outcome.
	SpinThreshold = 3.0

	// PerturbRange is the half-width of the uniform random velocity kick added
	// on release, so identical gestures don't always land on the same segment.
	PerturbRange = 2.5

	// sampleWindow is the trailing window of velocity samples averaged to
	// estimate release velocity.
	sampleWindow = 100 * time.Millisecond

	// pointerAngle is the fixed pointer position: top of the wheel.
	pointerAngle = -math.Pi / 2
)

var (
	// ErrTooFewSegments is returned for prize counts below two. A single
	// segment makes the winner formula degenerate.
	ErrTooFewSegments = errors.New("wheel: need at least 2 segments")

	// ErrSpinning is returned when an operation is rejected because a spin is
	// in flight.
	ErrSpinning = errors.New("wheel: spin in progress")

	// ErrTooSlow is returned by Launch when the requested velocity would not
	// clear the spin threshold.
	ErrTooSlow = errors.New("wheel: release velocity below spin threshold")
)

// Config holds wheel geometry and injectable sources. The zero value is usable:
// unit-radius wheel centered at the origin, wall clock, global rand.
type Config struct {
	// CenterX, CenterY and Radius define the disk used for drag hit-testing.
	// Coordinates passed to Start/Move are in the same space.
	CenterX float64
	CenterY float64
	Radius  float64

	// Now overrides the clock used for velocity sampling. Defaults to time.Now.
	Now func() time.Time

	// Rand overrides the source for the release perturbation. Defaults to the
	// package-level math/rand source.
	Rand *rand.Rand
}

// velocitySample is one instantaneous angular velocity observed during a drag.
type velocitySample struct {
	velocity float64
	at       time.Time
}

// Wheel is the physics state of one spinning wheel.
type Wheel struct {
	cfg      Config
	segments int

	rotation float64 // accumulated angle in radians, unbounded
	velocity float64 // signed rad/s
	dragging bool
	spinning bool

	lastAngle float64
	lastTime  time.Time
	samples   []velocitySample
}

// New creates a wheel with the given number of prize segments.
func New(segments int, cfg Config) (*Wheel, error) {
	if segments < 2 {
		return nil, ErrTooFewSegments
	}
	if cfg.Radius <= 0 {
		cfg.Radius = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Wheel{
		cfg:      cfg,
		segments: segments,
		samples:  make([]velocitySample, 0, 16),
	}, nil
}

// Tick advances the simulation by one fixed 16ms step.
//
// On the step where a spin settles it returns (winner, true); on every other
// step it returns (-1, false). The winner is produced at most once per spin.
func (w *Wheel) Tick() (int, bool) {
	if !w.dragging && math.Abs(w.velocity) > MinVelocity {
		w.velocity *= Friction
		w.rotation += w.velocity * StepSeconds
	} else if w.spinning && math.Abs(w.velocity) <= MinVelocity {
		w.velocity = 0
		w.spinning = false
		return w.Resolve(), true
	}
	return -1, false
}

// Resolve maps the current rotation to the segment index under the pointer.
// It is total for any accumulated rotation, positive or negative.
func (w *Wheel) Resolve() int {
	segment := 2 * math.Pi / float64(w.segments)
	idx := int(math.Floor(normalizeAngle(pointerAngle-w.rotation) / segment))
	if idx >= w.segments {
		// Float rounding at the 2π boundary.
		idx = w.segments - 1
	}
	return idx
}

// SetSegments replaces the segment count. It refuses to change the wheel while
// a spin is in flight so an outcome always refers to the list it started with.
func (w *Wheel) SetSegments(n int) error {
	if n < 2 {
		return ErrTooFewSegments
	}
	if w.spinning {
		return ErrSpinning
	}
	w.segments = n
	return nil
}

// Stop force-stops the wheel: velocity is zeroed and any in-flight spin is
// abandoned without producing a winner.
func (w *Wheel) Stop() {
	w.velocity = 0
	w.spinning = false
	w.dragging = false
}

// Rotation returns the accumulated rotation in radians.
func (w *Wheel) Rotation() float64 { return w.rotation }

// Velocity returns the current angular velocity in rad/s.
func (w *Wheel) Velocity() float64 { return w.velocity }

// Dragging reports whether a drag gesture is active.
func (w *Wheel) Dragging() bool { return w.dragging }

// Spinning reports whether a released spin is still in flight.
func (w *Wheel) Spinning() bool { return w.spinning }

// Segments returns the current segment count.
func (w *Wheel) Segments() int { return w.segments }

// normalizeAngle forces x into [0, 2π). The double mod handles negative input.
func normalizeAngle(x float64) float64 {
	const tau = 2 * math.Pi
	return math.Mod(math.Mod(x, tau)+tau, tau)
}
