package appconfig

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	yaml "sigs.k8s.io/yaml"
)

type ViewerConfig struct {
	Theme string `json:"theme"`
}

// GridConfig tunes virtualization and measurement of the data grid.
type GridConfig struct {
	OverscanRows       int     `json:"overscanRows"`
	OverscanColumns    int     `json:"overscanColumns"`
	VirtualizeRowsFrom int     `json:"virtualizeRowsFrom"`
	EstimatedRowPx     float64 `json:"estimatedRowPx"`

	AutoWidthDebounce    metav1.Duration `json:"autoWidthDebounce"`
	AutoWidthMinInterval metav1.Duration `json:"autoWidthMinInterval"`
}

type MouseConfig struct {
	DoubleClickTimeout metav1.Duration `json:"doubleClickTimeout"`
}

type InputConfig struct {
	Mouse MouseConfig `json:"mouse"`
}

type Config struct {
	Viewer ViewerConfig `json:"viewer"`
	Grid   GridConfig   `json:"grid"`
	Input  InputConfig  `json:"input"`
}

func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{Theme: "native"},
		Grid: GridConfig{
			OverscanRows:         6,
			OverscanColumns:      2,
			VirtualizeRowsFrom:   50,
			EstimatedRowPx:       21,
			AutoWidthDebounce:    metav1.Duration{Duration: 280 * time.Millisecond},
			AutoWidthMinInterval: metav1.Duration{Duration: 200 * time.Millisecond},
		},
		Input: InputConfig{Mouse: MouseConfig{DoubleClickTimeout: metav1.Duration{Duration: 400 * time.Millisecond}}},
	}
}

func path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".kview", "config.yaml"), nil
}

// backfill replaces zero values with defaults so partial files stay valid.
func backfill(cfg *Config) {
	def := Default()
	if cfg.Viewer.Theme == "" {
		cfg.Viewer.Theme = def.Viewer.Theme
	}
	if cfg.Grid.OverscanRows <= 0 {
		cfg.Grid.OverscanRows = def.Grid.OverscanRows
	}
	if cfg.Grid.OverscanColumns <= 0 {
		cfg.Grid.OverscanColumns = def.Grid.OverscanColumns
	}
	if cfg.Grid.VirtualizeRowsFrom <= 0 {
		cfg.Grid.VirtualizeRowsFrom = def.Grid.VirtualizeRowsFrom
	}
	if cfg.Grid.EstimatedRowPx <= 0 {
		cfg.Grid.EstimatedRowPx = def.Grid.EstimatedRowPx
	}
	if cfg.Grid.AutoWidthDebounce.Duration <= 0 {
		cfg.Grid.AutoWidthDebounce = def.Grid.AutoWidthDebounce
	}
	if cfg.Grid.AutoWidthMinInterval.Duration <= 0 {
		cfg.Grid.AutoWidthMinInterval = def.Grid.AutoWidthMinInterval
	}
	if cfg.Input.Mouse.DoubleClickTimeout.Duration <= 0 {
		cfg.Input.Mouse.DoubleClickTimeout = def.Input.Mouse.DoubleClickTimeout
	}
}

// Load reads ~/.kview/config.yaml if present, otherwise returns defaults.
func Load() (*Config, error) {
	cfg := Default()
	p, err := path()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return Default(), err
	}
	backfill(cfg)
	return cfg, nil
}

// Save writes the config to ~/.kview/config.yaml, creating the directory if needed.
func Save(cfg *Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	// Enforce lower-case style names for consistency
	out := *cfg
	out.Viewer.Theme = strings.ToLower(out.Viewer.Theme)
	data, err := yaml.Marshal(&out)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}
