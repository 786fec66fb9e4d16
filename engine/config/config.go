package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Carmen-Shannon/oxy-mmd/common"
)

const (
	DefaultFrames    = 300
	DefaultFrameRate = 30
	DefaultTickRate  = 60
)

// ErrNoModel is returned by Validate when no model path was configured.
var ErrNoModel = errors.New("config: no model path")

// Config holds the playback settings for mmdplay.
type Config struct {
	// Paths, relative ones are resolved against the config file's directory.
	ModelPath  string `json:"model_path"`
	MotionPath string `json:"motion_path"`

	// Playback
	Frames    int     `json:"frames"`
	FrameRate float64 `json:"frame_rate"`
	TickRate  float64 `json:"tick_rate"`
	Speed     float64 `json:"speed"`
	Loop      *bool   `json:"loop"`
	IK        *bool   `json:"ik"`

	// Scene
	Instances int `json:"instances"`
	Workers   int `json:"workers"`
	// Stagger delays each instance's motion by this many frames more than the previous one.
	Stagger int `json:"stagger"`

	// Realtime runs the engine tick loop instead of stepping frames back to back.
	Realtime bool `json:"realtime"`
	Profile  bool `json:"profile"`
	Verbose  bool `json:"verbose"`
}

// Flags holds CLI flag values that override config file settings.
// Zero values and nil pointers mean "not set on the command line".
type Flags struct {
	ModelPath  string
	MotionPath string
	Frames     int
	FrameRate  float64
	TickRate   float64
	Speed      float64
	Instances  int
	Workers    int
	Stagger    int
	Loop       *bool
	IK         *bool
	Realtime   bool
	Profile    bool
	Verbose    bool
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values. Relative paths in the file are
// made relative to the file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	cfg.ModelPath = relativeTo(dir, cfg.ModelPath)
	cfg.MotionPath = relativeTo(dir, cfg.MotionPath)
	return cfg, nil
}

// Resolve applies CLI overrides and fills any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	c.ModelPath = common.Coalesce(flags.ModelPath, c.ModelPath)
	c.MotionPath = common.Coalesce(flags.MotionPath, c.MotionPath)
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.FrameRate > 0 {
		c.FrameRate = flags.FrameRate
	}
	if flags.TickRate > 0 {
		c.TickRate = flags.TickRate
	}
	if flags.Speed > 0 {
		c.Speed = flags.Speed
	}
	if flags.Instances > 0 {
		c.Instances = flags.Instances
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Stagger > 0 {
		c.Stagger = flags.Stagger
	}
	c.Loop = common.Coalesce(flags.Loop, c.Loop)
	c.IK = common.Coalesce(flags.IK, c.IK)
	c.Realtime = c.Realtime || flags.Realtime
	c.Profile = c.Profile || flags.Profile
	c.Verbose = c.Verbose || flags.Verbose

	if c.Frames <= 0 {
		c.Frames = DefaultFrames
	}
	if c.FrameRate <= 0 {
		c.FrameRate = DefaultFrameRate
	}
	if c.TickRate <= 0 {
		c.TickRate = DefaultTickRate
	}
	if c.Speed <= 0 {
		c.Speed = 1
	}
	if c.Instances <= 0 {
		c.Instances = 1
	}
	if c.Workers <= 0 {
		c.Workers = max(runtime.NumCPU()-1, 1)
	}
	if c.Stagger < 0 {
		c.Stagger = 0
	}
	if c.Loop == nil {
		c.Loop = boolPtr(true)
	}
	if c.IK == nil {
		c.IK = boolPtr(true)
	}
}

// Validate reports settings Resolve cannot default.
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return ErrNoModel
	}
	return nil
}

func relativeTo(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func boolPtr(v bool) *bool {
	return &v
}
