package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terrapen/go-terrapen/internal/config"
	"github.com/terrapen/go-terrapen/internal/log"
	"github.com/terrapen/go-terrapen/internal/tui"
	"github.com/terrapen/go-terrapen/pkg/bridge"
	"github.com/terrapen/go-terrapen/pkg/protocol"
	"github.com/terrapen/go-terrapen/pkg/web"
)

var (
	flagAddr    string
	flagRobot   string
	flagConnect string
	flagLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "terrapen",
		Short: "Differential-drive pen plotter simulator and controller",
		Long: `terrapen simulates a two-wheeled drawing robot: it schedules stepper
segments, interpolates the pose between ticks, and records the pen trail.

Run "terrapen tui" for an interactive terminal canvas, "terrapen serve" to
expose the engine over HTTP and websocket, or "terrapen demo" to inspect
the built-in path timings.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Init(flagLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&flagLevel, "log-level", "", "Log level (debug, info, warn, error; defaults to $TERRAPEN_LOG_LEVEL or info)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine behind an HTTP and websocket API",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&flagAddr, "addr", config.ListenAddr(), "Listen address")
	serveCmd.Flags().StringVar(&flagRobot, "robot", config.PlotterIP(""), "Plotter controller host; finished drawings are mirrored to it")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive terminal canvas",
		RunE:  runTUI,
	}
	tuiCmd.Flags().StringVar(&flagConnect, "connect", config.ServerURL(""), "Follow a running server (e.g. http://localhost:8090) instead of simulating locally")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Print the built-in demo paths with per-segment timings",
		RunE:  runDemo,
	}

	rootCmd.AddCommand(serveCmd, tuiCmd, demoCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.SimConfig()
	if err != nil {
		return fmt.Errorf("bad configuration: %w", err)
	}

	srv, err := web.NewServer(cfg, flagAddr)
	if err != nil {
		return err
	}

	if flagRobot != "" {
		ctrl := bridge.NewHTTPBridge(flagRobot)
		srv.OnSequenceDone = func(state protocol.StateData) {
			if err := ctrl.MoveTo(state.X, state.Y, state.PenDown); err != nil {
				log.Warn("failed to mirror pose to hardware", "err", err)
			}
		}
		log.Info("mirroring finished drawings", "robot", flagRobot)
	}

	return srv.Start()
}

func runTUI(cmd *cobra.Command, args []string) error {
	if flagConnect != "" {
		m, err := tui.NewWatch(flagConnect)
		if err != nil {
			return err
		}
		return tui.Run(m)
	}

	cfg, err := config.SimConfig()
	if err != nil {
		return fmt.Errorf("bad configuration: %w", err)
	}
	m, err := tui.NewLocal(cfg)
	if err != nil {
		return err
	}
	return tui.Run(m)
}
