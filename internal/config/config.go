// Package config provides configuration helpers for go-terrapen commands.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/terrapen/go-terrapen/pkg/sim"
)

// DefaultListenAddr is the server's listen address when TERRAPEN_ADDR
// is not set.
const DefaultListenAddr = ":8090"

// ListenAddr returns the HTTP listen address from TERRAPEN_ADDR env var.
// Falls back to the default if not set.
func ListenAddr() string {
	if addr := os.Getenv("TERRAPEN_ADDR"); addr != "" {
		return addr
	}
	return DefaultListenAddr
}

// PlotterIP returns the plotter controller IP from TERRAPEN_PLOTTER_IP
// env var. Falls back to the provided default if not set.
func PlotterIP(defaultIP string) string {
	if ip := os.Getenv("TERRAPEN_PLOTTER_IP"); ip != "" {
		return ip
	}
	return defaultIP
}

// ServerURL returns the simulator server URL from TERRAPEN_SERVER env var.
// Falls back to the provided default if not set.
func ServerURL(defaultURL string) string {
	if url := os.Getenv("TERRAPEN_SERVER"); url != "" {
		return url
	}
	return defaultURL
}

// SimConfig builds the simulator configuration. Defaults are overlaid
// with values from the JSON file named by TERRAPEN_CONFIG (if set) and
// then with individual TERRAPEN_* environment variables.
func SimConfig() (sim.Config, error) {
	cfg := sim.DefaultConfig()

	if path := os.Getenv("TERRAPEN_CONFIG"); path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return sim.Config{}, err
		}
		cfg = loaded
	}

	overlayFloat("TERRAPEN_WHEEL_DIAMETER_MM", &cfg.WheelDiameterMM)
	overlayFloat("TERRAPEN_WHEELBASE_MM", &cfg.WheelbaseMM)
	overlayInt("TERRAPEN_STEPS_PER_REV", &cfg.StepsPerRevolution)
	overlayInt("TERRAPEN_MAX_STEP_HZ", &cfg.MaxStepFrequencyHz)
	overlayInt("TERRAPEN_FPS", &cfg.AnimationFPS)
	overlayFloat("TERRAPEN_TRAIL_INTERVAL", &cfg.TrailInterval)

	if err := cfg.Validate(); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}

// LoadFile reads a simulator configuration from a JSON file. Fields
// absent from the file keep their default values.
func LoadFile(path string) (sim.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sim.Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := sim.DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return sim.Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return sim.Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func overlayFloat(key string, dst *float64) {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			*dst = v
		}
	}
}

func overlayInt(key string, dst *int) {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			*dst = v
		}
	}
}
