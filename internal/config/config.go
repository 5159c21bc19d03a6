// Package config handles photosphere configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/echoflaresat/photosphere/colors"
	"github.com/echoflaresat/photosphere/imposter"
	"github.com/echoflaresat/photosphere/internal/logger"
	"github.com/echoflaresat/photosphere/lighting"
	"github.com/echoflaresat/photosphere/panorama"
	"github.com/echoflaresat/photosphere/parallax"
	"github.com/echoflaresat/photosphere/render"
	"github.com/echoflaresat/photosphere/vectors"
)

// Config holds all render settings.
type Config struct {
	Panorama PanoramaConfig `yaml:"panorama" toml:"panorama"`
	Ground   GroundConfig   `yaml:"ground" toml:"ground"`
	Camera   CameraConfig   `yaml:"camera" toml:"camera"`
	Render   RenderConfig   `yaml:"render" toml:"render"`
	Capture  CaptureConfig  `yaml:"capture" toml:"capture"`
	Spheres  []SphereConfig `yaml:"spheres,omitempty" toml:"spheres,omitempty"`
	Output   OutputConfig   `yaml:"output" toml:"output"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`

	// path is the file the config was read from, if any.
	path string
}

// PanoramaConfig selects the source image.
type PanoramaConfig struct {
	Path     string `yaml:"path" toml:"path"`
	Layout   string `yaml:"layout" toml:"layout"`       // equirect or cross
	MaxWidth int    `yaml:"max_width" toml:"max_width"` // 0 keeps full resolution
}

// GroundConfig describes the plane n·p + d = 0 the panorama floor is
// projected onto.
type GroundConfig struct {
	Enabled         bool      `yaml:"enabled" toml:"enabled"`
	Normal          []float64 `yaml:"normal" toml:"normal"`
	D               float64   `yaml:"d" toml:"d"`
	ReferenceHeight float64   `yaml:"reference_height" toml:"reference_height"`
}

type CameraConfig struct {
	Position []float64 `yaml:"position" toml:"position"`
	Yaw      float64   `yaml:"yaw" toml:"yaw"`
	Pitch    float64   `yaml:"pitch" toml:"pitch"`
	FOV      float64   `yaml:"fov" toml:"fov"`
}

type RenderConfig struct {
	Width       int     `yaml:"width" toml:"width"`
	Height      int     `yaml:"height" toml:"height"`
	Supersample int     `yaml:"supersample" toml:"supersample"`
	Workers     int     `yaml:"workers" toml:"workers"`
	Stereo      bool    `yaml:"stereo" toml:"stereo"`
	IPD         float64 `yaml:"ipd" toml:"ipd"`
	Filter      string  `yaml:"filter" toml:"filter"`
	Mode        string  `yaml:"mode" toml:"mode"`
	// ImageAmbient lights spheres from the panorama.
	ImageAmbient bool `yaml:"image_ambient" toml:"image_ambient"`
}

// CaptureConfig places the panorama on Earth for sun lighting. Without a
// time a fixed light is used.
type CaptureConfig struct {
	Latitude  float64 `yaml:"latitude" toml:"latitude"`
	Longitude float64 `yaml:"longitude" toml:"longitude"`
	Time      string  `yaml:"time,omitempty" toml:"time,omitempty"` // RFC3339
}

type SphereConfig struct {
	Center []float64 `yaml:"center" toml:"center"`
	Radius float64   `yaml:"radius" toml:"radius"`
	Color  []float64 `yaml:"color,omitempty" toml:"color,omitempty"`
}

type OutputConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file,omitempty" toml:"log_file,omitempty"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Panorama: PanoramaConfig{
			Path:   "panorama.jpg",
			Layout: "equirect",
		},
		Ground: GroundConfig{
			Enabled:         true,
			Normal:          []float64{0, 1, 0},
			D:               0,
			ReferenceHeight: 2.0,
		},
		Camera: CameraConfig{
			Position: []float64{0, 2.0, 0},
			FOV:      90,
		},
		Render: RenderConfig{
			Width:       1280,
			Height:      720,
			Supersample: 2,
			IPD:         0.064,
			Filter:      "bilinear",
			Mode:        "color",
		},
		Output: OutputConfig{
			Path: "photosphere.png",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Panorama.Path == "" {
		add("panorama.path is empty")
	}
	layout, err := panorama.ParseLayout(c.Panorama.Layout)
	if err != nil {
		errs = append(errs, err)
	}
	if mw := c.Panorama.MaxWidth; mw < 0 {
		add("panorama.max_width must not be negative")
	} else if least := panorama.MinWidth(layout); mw > 0 && mw < least {
		add("panorama.max_width %d is below %d, the smallest %v image", mw, least, layout)
	}

	if _, err := c.GroundPlane(); err != nil {
		errs = append(errs, err)
	}

	if len(c.Camera.Position) != 3 {
		add("camera.position needs 3 components, got %d", len(c.Camera.Position))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		add("camera.fov must be in (0, 180), got %v", c.Camera.FOV)
	}

	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		add("render size %dx%d is invalid", c.Render.Width, c.Render.Height)
	}
	if c.Render.Supersample < 1 {
		add("render.supersample must be at least 1")
	}
	if c.Render.Workers < 0 {
		add("render.workers must not be negative")
	}
	if c.Render.Stereo && c.Render.IPD < 0 {
		add("render.ipd must not be negative")
	}
	if _, err := panorama.ParseFilter(c.Render.Filter); err != nil {
		errs = append(errs, err)
	}
	if _, err := render.ParseMode(c.Render.Mode); err != nil {
		errs = append(errs, err)
	}

	if c.Capture.Latitude < -90 || c.Capture.Latitude > 90 {
		add("capture.latitude %v out of range", c.Capture.Latitude)
	}
	if _, err := c.Light(); err != nil {
		errs = append(errs, err)
	}

	for i, s := range c.Spheres {
		if len(s.Center) != 3 {
			add("spheres[%d].center needs 3 components", i)
		}
		if s.Radius <= 0 {
			add("spheres[%d].radius must be positive", i)
		}
		if n := len(s.Color); n != 0 && n != 3 && n != 4 {
			add("spheres[%d].color needs 3 or 4 components", i)
		}
	}

	if c.Output.Path == "" {
		add("output.path is empty")
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// GroundPlane builds the configured plane, nil when disabled.
func (c *Config) GroundPlane() (*parallax.GroundPlane, error) {
	if !c.Ground.Enabled {
		return nil, nil
	}
	if len(c.Ground.Normal) != 3 {
		return nil, fmt.Errorf("ground.normal needs 3 components, got %d", len(c.Ground.Normal))
	}
	return parallax.NewGroundPlane(vectors.FromSlice(c.Ground.Normal), c.Ground.D, c.Ground.ReferenceHeight)
}

// PanoramaOptions converts the panorama and filter settings.
func (c *Config) PanoramaOptions() (panorama.Options, error) {
	layout, err := panorama.ParseLayout(c.Panorama.Layout)
	if err != nil {
		return panorama.Options{}, err
	}
	filter, err := panorama.ParseFilter(c.Render.Filter)
	if err != nil {
		return panorama.Options{}, err
	}
	return panorama.Options{Layout: layout, Filter: filter, MaxWidth: c.Panorama.MaxWidth}, nil
}

// Light is the sun at capture time, or the default light without one.
func (c *Config) Light() (lighting.Light, error) {
	if c.Capture.Time == "" {
		return lighting.Default(), nil
	}
	t, err := time.Parse(time.RFC3339, c.Capture.Time)
	if err != nil {
		return lighting.Light{}, fmt.Errorf("capture.time: %w", err)
	}
	return lighting.Sun(t, c.Capture.Latitude, c.Capture.Longitude), nil
}

// ViewCamera builds the render camera from the camera section.
func (c *Config) ViewCamera() render.Camera {
	return render.NewCamera(vectors.FromSlice(c.Camera.Position), c.Camera.Yaw, c.Camera.Pitch, c.Camera.FOV)
}

// ImposterSpheres converts the sphere list; missing colors get the default.
func (c *Config) ImposterSpheres() []imposter.Sphere {
	spheres := make([]imposter.Sphere, 0, len(c.Spheres))
	for _, s := range c.Spheres {
		color := imposter.DefaultColor
		if len(s.Color) > 0 {
			color = colors.FromSlice(s.Color)
		}
		spheres = append(spheres, imposter.Sphere{
			Center: vectors.FromSlice(s.Center),
			Radius: s.Radius,
			Color:  color,
		})
	}
	return spheres
}

// RenderOptions converts the render settings.
func (c *Config) RenderOptions() (render.Options, error) {
	mode, err := render.ParseMode(c.Render.Mode)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		Width:       c.Render.Width,
		Height:      c.Render.Height,
		Supersample: c.Render.Supersample,
		Workers:     c.Render.Workers,
		Mode:        mode,
	}, nil
}
