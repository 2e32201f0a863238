// Package config loads the apparatus description and runtime settings.
// Lengths are given in meters and angles in degrees; conversion to internal
// units happens in the consumers.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Layouts understood by the detector builder.
const (
	LayoutPhantom          = "phantom"
	LayoutShieldedDetector = "shielded-detector"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// validate is the shared validator instance.
var validate = validator.New()

// Config is the top-level configuration.
//
// Thread Safety: safe to read concurrently. Not safe to modify after Load.
type Config struct {
	// Apparatus describes the geometry to construct.
	Apparatus ApparatusConfig `yaml:"apparatus"`

	// Overlap tunes the overlap checker.
	Overlap OverlapConfig `yaml:"overlap"`

	// Log configures the process logger.
	Log LogConfig `yaml:"log"`
}

// ApparatusConfig describes the world and its contents.
type ApparatusConfig struct {
	Layout        string  `yaml:"layout" validate:"oneof=phantom shielded-detector"`
	WorldSize     float64 `yaml:"world_size" validate:"gt=0"` // diameter, m
	WorldMaterial string  `yaml:"world_material" validate:"required"`

	// Phantom layout.
	Radius         float64 `yaml:"radius" validate:"gt=0"`      // m
	HalfHeight     float64 `yaml:"half_height" validate:"gt=0"` // m
	TissueMaterial string  `yaml:"tissue_material" validate:"required"`
	PegAngle       float64 `yaml:"peg_angle" validate:"gte=0,lte=90"` // deg above the X axis

	// Shielded-detector layout.
	Shielding ShieldingConfig `yaml:"shielding"`
	Detector  DetectorConfig  `yaml:"detector"`
}

// ShieldingConfig describes the shielding cylinder.
type ShieldingConfig struct {
	Diameter float64 `yaml:"diameter" validate:"gt=0"` // m
	Height   float64 `yaml:"height" validate:"gt=0"`   // m
	Material string  `yaml:"material" validate:"required"`
}

// DetectorConfig describes the cubic detector inside the shielding.
type DetectorConfig struct {
	Size     float64 `yaml:"size" validate:"gt=0"` // edge length, m
	Material string  `yaml:"material" validate:"required"`
}

// OverlapConfig tunes overlap sampling.
type OverlapConfig struct {
	Resolution int     `yaml:"resolution" validate:"gte=2,lte=256"`
	Tolerance  float64 `yaml:"tolerance" validate:"gte=0"` // mm
	All        bool    `yaml:"all"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the configuration reproducing the reference apparatus.
func Default() Config {
	return Config{
		Apparatus: ApparatusConfig{
			Layout:         LayoutPhantom,
			WorldSize:      25,
			WorldMaterial:  "G4_Galactic",
			Radius:         10,
			HalfHeight:     1,
			TissueMaterial: "G4_WATER",
			PegAngle:       55,
			Shielding: ShieldingConfig{
				Diameter: 10,
				Height:   10,
				Material: "G4_WATER",
			},
			Detector: DetectorConfig{
				Size:     2,
				Material: "ENRICHED_XENON",
			},
		},
		Overlap: OverlapConfig{
			Resolution: 32,
			Tolerance:  0.001,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration with priority: env > file > defaults. An empty
// path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	loadFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("G4BASIC_LAYOUT"); v != "" {
		cfg.Apparatus.Layout = v
	}
	if v := os.Getenv("G4BASIC_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("G4BASIC_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("G4BASIC_OVERLAP_RESOLUTION"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Overlap.Resolution = i
		}
	}
}

// Validate checks field constraints and that the world sphere encloses the
// selected layout.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	a := c.Apparatus
	worldRadius := a.WorldSize / 2
	switch a.Layout {
	case LayoutPhantom:
		if reach := math.Hypot(a.Radius, a.HalfHeight); reach > worldRadius {
			return fmt.Errorf("%w: phantom reaches %.4g m, world radius is %.4g m", ErrInvalidConfig, reach, worldRadius)
		}
	case LayoutShieldedDetector:
		s := a.Shielding
		if reach := math.Hypot(s.Diameter/2, s.Height/2); reach > worldRadius {
			return fmt.Errorf("%w: shielding reaches %.4g m, world radius is %.4g m", ErrInvalidConfig, reach, worldRadius)
		}
		half := a.Detector.Size / 2
		if math.Sqrt2*half > s.Diameter/2 || half > s.Height/2 {
			return fmt.Errorf("%w: %.4g m detector does not fit the shielding", ErrInvalidConfig, a.Detector.Size)
		}
	}
	return nil
}
