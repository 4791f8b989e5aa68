// Command spin-sim drives the wheel physics from the command line: launch a
// spin at a chosen release velocity and watch it decay to settle. Useful for
// eyeballing friction tuning and outcome spread without a browser.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/shij-yuan/lucky-draw/internal/wheel"
)

func main() {
	var (
		segments = flag.Int("segments", 8, "number of prize segments")
		velocity = flag.Float64("velocity", 15.0, "release velocity in rad/s")
		seed     = flag.Int64("seed", 1, "random seed for the release perturbation")
		every    = flag.Int("every", 25, "print a trace line every N ticks")
	)
	flag.Parse()

	w, err := wheel.New(*segments, wheel.Config{
		Rand: rand.New(rand.NewSource(*seed)),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := w.Launch(*velocity); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("segments=%d release=%.3f rad/s (after kick: %.3f)\n", *segments, *velocity, w.Velocity())

	// Expected settle time from exponential decay: t ≈ ln(ε/v0)/ln(f) · step
	v0 := math.Abs(w.Velocity())
	expected := math.Log(wheel.MinVelocity/v0) / math.Log(wheel.Friction) * wheel.StepSeconds
	fmt.Printf("expected settle in ~%.2fs\n", expected)

	for tick := 1; ; tick++ {
		winner, settled := w.Tick()
		if tick%*every == 0 {
			fmt.Printf("tick=%-5d t=%6.2fs rotation=%9.4f velocity=%8.4f\n",
				tick, float64(tick)*wheel.StepSeconds, w.Rotation(), w.Velocity())
		}
		if settled {
			fmt.Printf("settled tick=%d t=%.2fs rotation=%.4f winner=%d\n",
				tick, float64(tick)*wheel.StepSeconds, w.Rotation(), winner)
			return
		}
		if tick > 100000 {
			fmt.Fprintln(os.Stderr, "error: spin did not settle")
			os.Exit(1)
		}
	}
}
