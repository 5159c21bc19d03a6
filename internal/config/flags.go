package config

import (
	"flag"
)

// Flags holds command-line overrides. Zero values mean "not given".
type Flags struct {
	ConfigPath string
	Output     string
	Width      int
	Height     int
	Debug      bool
	Stereo     bool
	Watch      bool
	Help       bool
}

// RegisterFlags defines the command-line flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file (.yaml or .toml)")
	fs.StringVar(&f.Output, "out", "", "Output PNG path")
	fs.IntVar(&f.Width, "width", 0, "Output width in pixels (per eye in stereo)")
	fs.IntVar(&f.Height, "height", 0, "Output height in pixels")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.Stereo, "stereo", false, "Render a side-by-side stereo pair")
	fs.BoolVar(&f.Watch, "watch", false, "Re-render when the config or panorama changes")
	fs.BoolVar(&f.Help, "h", false, "Show help")
	return f
}

// apply copies set flags over cfg.
func (f *Flags) apply(cfg *Config) {
	if f.Output != "" {
		cfg.Output.Path = f.Output
	}
	if f.Width > 0 {
		cfg.Render.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Render.Height = f.Height
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Stereo {
		cfg.Render.Stereo = true
	}
}
