// Package simulation provides the tuning rules for the movement core.
// Rules are loaded from data files so a level pack can define its own
// handling.
package simulation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all simulation rules
type Config struct {
	// World physics
	Physics PhysicsConfig `json:"physics" yaml:"physics"`

	// Player locomotion and jetpack handling
	Player PlayerConfig `json:"player" yaml:"player"`

	// Logging output
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Window and frame timing
	Window WindowConfig `json:"window" yaml:"window"`
}

// PhysicsConfig defines world-wide physics constants
type PhysicsConfig struct {
	GravityAccel float64 `json:"gravity_accel" yaml:"gravity_accel"` // Downward acceleration at strength 1 (units/s²)
}

// PlayerConfig defines the locomotion state machine constants
type PlayerConfig struct {
	MovementFactor float64 `json:"movement_factor" yaml:"movement_factor"` // Horizontal walk impulse per second
	JumpFactor     float64 `json:"jump_factor" yaml:"jump_factor"`         // One-shot jump impulse (scaled by dt)
	JetpackThrust  float64 `json:"jetpack_thrust" yaml:"jetpack_thrust"`   // Thrust impulse per second
	ThrustVector   float64 `json:"thrust_vector" yaml:"thrust_vector"`     // Thrust direction relative to facing (degrees)
	MaxThrustSpeed float64 `json:"max_thrust_speed" yaml:"max_thrust_speed"`
	TurnRateThrust float64 `json:"turn_rate_thrust" yaml:"turn_rate_thrust"` // deg/s while thrusting
	TurnRateFree   float64 `json:"turn_rate_free" yaml:"turn_rate_free"`     // deg/s while coasting
	TurnGain       float64 `json:"turn_gain" yaml:"turn_gain"`               // Multiplier on turn input
	Friction       float64 `json:"friction" yaml:"friction"`
	Width          float64 `json:"width" yaml:"width"`
	Height         float64 `json:"height" yaml:"height"`

	// Exhaust puffs
	PuffInterval float64 `json:"puff_interval" yaml:"puff_interval"` // Seconds between puffs
	PuffDistance float64 `json:"puff_distance" yaml:"puff_distance"` // Distance moved that forces a puff
	PuffOffsetX  float64 `json:"puff_offset_x" yaml:"puff_offset_x"`
	GasOffsetY   float64 `json:"gas_offset_y" yaml:"gas_offset_y"`

	// Dialog triggers
	UsageDialogAfter   float64 `json:"usage_dialog_after" yaml:"usage_dialog_after"`
	UsageCooldown      float64 `json:"usage_cooldown" yaml:"usage_cooldown"`
	RollingDialogAfter float64 `json:"rolling_dialog_after" yaml:"rolling_dialog_after"`
	RollingCooldown    float64 `json:"rolling_cooldown" yaml:"rolling_cooldown"`
}

// LoggingConfig defines log output
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // console, text, json
}

// WindowConfig defines the presentation window and tick rate
type WindowConfig struct {
	Width  int     `json:"width" yaml:"width"`
	Height int     `json:"height" yaml:"height"`
	TPS    int     `json:"tps" yaml:"tps"`
	Scale  float64 `json:"scale" yaml:"scale"`
}

// DefaultConfig returns the handling of the original jetpack game
func DefaultConfig() *Config {
	return &Config{
		Physics: PhysicsConfig{
			GravityAccel: 400,
		},
		Player: PlayerConfig{
			MovementFactor:     1000,
			JumpFactor:         10000,
			JetpackThrust:      1500,
			ThrustVector:       90,
			MaxThrustSpeed:     100,
			TurnRateThrust:     120,
			TurnRateFree:       360,
			TurnGain:           10,
			Friction:           4,
			Width:              32,
			Height:             32,
			PuffInterval:       1.0 / 15.0,
			PuffDistance:       4,
			PuffOffsetX:        8,
			GasOffsetY:         -13,
			UsageDialogAfter:   2,
			UsageCooldown:      20,
			RollingDialogAfter: 1,
			RollingCooldown:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Window: WindowConfig{
			Width:  960,
			Height: 640,
			TPS:    60,
			Scale:  1,
		},
	}
}

// LoadConfig loads simulation config from a JSON or YAML file on top of the
// defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read simulation config: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config %s: %w", path, err)
	}
	return config, nil
}

// Validate rejects rules the core cannot run with
func (c *Config) Validate() error {
	if c.Physics.GravityAccel < 0 {
		return fmt.Errorf("gravity_accel must not be negative, got %v", c.Physics.GravityAccel)
	}
	if c.Player.Width <= 0 || c.Player.Height <= 0 {
		return fmt.Errorf("player footprint must be positive, got %vx%v", c.Player.Width, c.Player.Height)
	}
	if c.Player.MaxThrustSpeed < 0 {
		return fmt.Errorf("max_thrust_speed must not be negative")
	}
	if c.Window.TPS <= 0 {
		return fmt.Errorf("tps must be positive, got %d", c.Window.TPS)
	}
	return nil
}

// FrameDelta returns the fixed simulation step in seconds
func (c *Config) FrameDelta() float64 {
	return 1.0 / float64(c.Window.TPS)
}
