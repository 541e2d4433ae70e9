// Package config loads critpath settings from an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// DefaultFile is looked up in the working directory when --config is not given.
const DefaultFile = "critpath.toml"

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

// Config is the full set of tunables. Zero limits mean unlimited.
type Config struct {
	// Lenient turns undefined predecessors into zero-duration phantom tasks.
	Lenient bool `toml:"lenient"`

	Anchors Anchors `toml:"anchors"`
	Limits  Limits  `toml:"limits"`
	Output  Output  `toml:"output"`
	Batch   Batch   `toml:"batch"`
	Narrate Narrate `toml:"narrate"`
}

type Anchors struct {
	Entry string `toml:"entry" validate:"required,nefield=Exit"`
	Exit  string `toml:"exit" validate:"required"`
}

type Limits struct {
	MaxNodes int `toml:"max_nodes" validate:"gte=0"`
	MaxEdges int `toml:"max_edges" validate:"gte=0"`
}

type Output struct {
	Format string `toml:"format" validate:"oneof=dot svg ascii"`
	Dir    string `toml:"dir"` // empty: next to the input file
	Unit   string `toml:"unit" validate:"required"`
}

type Batch struct {
	Parallel int `toml:"parallel" validate:"gte=1,lte=64"`
}

type Narrate struct {
	Model     string `toml:"model"` // empty: the SDK's current Sonnet
	MaxTokens int    `toml:"max_tokens" validate:"gt=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Anchors: Anchors{Entry: "VI", Exit: "VO"},
		Limits:  Limits{MaxNodes: 100000, MaxEdges: 1000000},
		Output:  Output{Format: "svg", Unit: "days"},
		Batch:   Batch{Parallel: 4},
		Narrate: Narrate{MaxTokens: 1024},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML.
func Save(path string, cfg Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks every field constraint and reports the first violation.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q (value %v)", ErrInvalidConfig, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
