package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/scottvr/phart/pkg/layout"
)

// fileConfig holds user defaults from the config file. Pointer fields
// distinguish "not set" from a zero value, so the file only overrides what
// it mentions.
type fileConfig struct {
	Style        *string  `toml:"style"`
	ASCII        *bool    `toml:"ascii"`
	Arrows       *bool    `toml:"arrows"`
	NodeSpacing  *int     `toml:"node_spacing"`
	LayerSpacing *int     `toml:"layer_spacing"`
	LeftPadding  *int     `toml:"left_padding"`
	RightPadding *int     `toml:"right_padding"`
	Density      *float64 `toml:"density_threshold"`
}

// loadConfig reads the defaults file at path. A missing file is not an
// error: rendering works out of the box and the file only tunes defaults.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// apply overlays the file's settings onto opts. The style name is parsed
// here so a typo in the config fails with the same message a bad flag
// would.
func (c fileConfig) apply(opts *layout.Options) error {
	if c.Style != nil {
		style, err := layout.ParseStyle(*c.Style)
		if err != nil {
			return err
		}
		opts.NodeStyle = style
	}
	if c.ASCII != nil {
		opts.UseASCII = *c.ASCII
	}
	if c.Arrows != nil {
		opts.ShowArrows = *c.Arrows
	}
	if c.NodeSpacing != nil {
		opts.NodeSpacing = *c.NodeSpacing
	}
	if c.LayerSpacing != nil {
		opts.LayerSpacing = *c.LayerSpacing
	}
	if c.LeftPadding != nil {
		opts.LeftPadding = *c.LeftPadding
	}
	if c.RightPadding != nil {
		opts.RightPadding = *c.RightPadding
	}
	if c.Density != nil {
		opts.DensityThreshold = *c.Density
	}
	return nil
}

// defaultOptions resolves the baseline option set: library defaults overlaid
// with the user's config file when one exists.
func defaultOptions() layout.Options {
	opts := layout.Default()
	path, err := configPath()
	if err != nil {
		return opts
	}
	cfg, err := loadConfig(path)
	if err != nil {
		printWarning("ignoring config: %v", err)
		return opts
	}
	if err := cfg.apply(&opts); err != nil {
		printWarning("ignoring config: %v", err)
		return layout.Default()
	}
	return opts
}
