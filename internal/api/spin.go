package api

import (
	"fmt"
	"math/rand"

	"github.com/shij-yuan/lucky-draw/internal/store"
	"github.com/shij-yuan/lucky-draw/internal/wheel"
)

// maxSpinTicks bounds a simulation run. Even a clamped release at 52.5 rad/s
// decays below the settle threshold in well under 1000 ticks.
const maxSpinTicks = 10000

// spinResult is the outcome of one simulated spin.
type spinResult struct {
	winner   int
	ticks    int
	rotation float64
}

// durationMs is the simulated wall-clock duration of the spin at the fixed
// 16ms tick cadence.
func (r spinResult) durationMs() int64 {
	return int64(float64(r.ticks) * wheel.StepSeconds * 1000)
}

// runSpin launches a fresh wheel at the given release velocity and ticks it
// to settle. The rand source must be owned by this spin alone.
func (s *Server) runSpin(segments int, velocity float64, rng *rand.Rand) (spinResult, error) {
	w, err := wheel.New(segments, wheel.Config{
		CenterX: s.cfg.WheelCenterX,
		CenterY: s.cfg.WheelCenterY,
		Radius:  s.cfg.WheelRadius,
		Rand:    rng,
	})
	if err != nil {
		return spinResult{}, err
	}
	if err := w.Launch(velocity); err != nil {
		return spinResult{}, err
	}

	for tick := 1; tick <= maxSpinTicks; tick++ {
		if winner, settled := w.Tick(); settled {
			return spinResult{winner: winner, ticks: tick, rotation: w.Rotation()}, nil
		}
	}
	return spinResult{}, fmt.Errorf("spin did not settle within %d ticks", maxSpinTicks)
}

// pickVelocity chooses a release velocity in the natural gesture range with a
// random direction.
func pickVelocity(rng *rand.Rand) float64 {
	v := 10 + rng.Float64()*30 // 10..40 rad/s
	if rng.Float64() < 0.5 {
		v = -v
	}
	return v
}

// recordDraw appends the outcome to the history sink. A storage failure is
// logged but does not fail the spin: the player already saw the result.
func (s *Server) recordDraw(prize store.Prize) store.Draw {
	draw := store.Draw{
		PrizeLabel: prize.Label,
		Color:      prize.Color,
	}
	if err := s.db.AppendDraw(&draw); err != nil {
		s.logger.Printf("draw_record_failed prize=%q error=%q", prize.Label, err)
	}
	return draw
}
