package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terrapen/go-terrapen/internal/config"
	"github.com/terrapen/go-terrapen/pkg/paths"
	"github.com/terrapen/go-terrapen/pkg/sim"
)

// runDemo builds each built-in pattern and prints its segment timings.
func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := config.SimConfig()
	if err != nil {
		return fmt.Errorf("bad configuration: %w", err)
	}
	gen := paths.NewGenerator(cfg)

	fmt.Println("Robot Motion Demo")
	fmt.Println("=================")

	printPathSummary(cfg, "Square Pattern", gen.Square(50, 400))
	printPathSummary(cfg, "Triangle Pattern", gen.Triangle(60, 400))
	printPathSummary(cfg, "Circle Pattern", gen.Circle(30, 16, 300))
	printPathSummary(cfg, "Spiral Pattern", gen.Spiral(3, 40, 350))

	text, err := gen.Text("HI", 40, 400)
	if err != nil {
		return err
	}
	printPathSummary(cfg, "Text Pattern: HI", text)

	return nil
}

// printPathSummary mirrors the engine's view of a path: segment count,
// total run time, and cumulative per-segment timings.
func printPathSummary(cfg sim.Config, name string, segs []sim.Segment) {
	fmt.Printf("\n=== %s ===\n", name)
	fmt.Printf("Total segments: %d\n", len(segs))
	fmt.Printf("Total execution time: %.1f seconds\n", paths.TotalDuration(segs).Seconds())

	fmt.Println("Segment timings:")
	cumulative := 0.0
	for i, seg := range segs {
		duration := seg.Duration().Seconds()
		cumulative += duration
		pen := "UP"
		if seg.ServoAngle == cfg.PenDownAngle {
			pen = "DOWN"
		}
		fmt.Printf("  %2d: %4.1fs (T+%5.1fs) - Pen %s\n", i+1, duration, cumulative, pen)
	}
}
