package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"

	"castkit/internal/viewmatrix"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	InputDir   string `json:"input_dir" yaml:"input_dir"`
	TextureDir string `json:"texture_dir" yaml:"texture_dir"`
	OutputDir  string `json:"output_dir" yaml:"output_dir"`

	// Camera
	Camera      string  `json:"camera" yaml:"camera"`
	ZUp         bool    `json:"z_up" yaml:"z_up"`
	Perspective bool    `json:"perspective" yaml:"perspective"`
	FOV         float64 `json:"fov" yaml:"fov"`

	// Render settings
	RenderSize      int     `json:"render_size" yaml:"render_size"`
	Supersample     int     `json:"supersample" yaml:"supersample"`
	FillRatio       float64 `json:"fill_ratio" yaml:"fill_ratio"`
	MinClusterRatio float64 `json:"min_cluster_ratio" yaml:"min_cluster_ratio"`
	Workers         int     `json:"workers" yaml:"workers"`

	// Mesh filtering
	ExcludeMeshes     []string `json:"exclude_meshes" yaml:"exclude_meshes"`
	MinComponentVerts int      `json:"min_component_verts" yaml:"min_component_verts"`

	// Strict decoding turns node length mismatches into failures.
	Strict bool `json:"strict" yaml:"strict"`
}

// Load reads a JSON or YAML config file, chosen by extension. Fields not set
// in the file keep their zero values; unknown fields are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case ".yaml", ".yml":
		err = yaml.UnmarshalWithOptions(data, &cfg, yaml.DisallowUnknownField())
	default:
		return Config{}, fmt.Errorf("config: %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	InputDir   string
	TextureDir string
	OutputDir  string
	Camera     string
	Size       int
	Workers    int
	Strict     bool
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.TextureDir != "" {
		c.TextureDir = flags.TextureDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Camera != "" {
		c.Camera = flags.Camera
	}
	if flags.Size > 0 {
		c.RenderSize = flags.Size
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Strict {
		c.Strict = true
	}

	if c.InputDir == "" {
		c.InputDir = "."
	}
	// Textures usually sit next to the exported cast files.
	if c.TextureDir == "" {
		c.TextureDir = c.InputDir
	} else if !filepath.IsAbs(c.TextureDir) {
		c.TextureDir = filepath.Join(c.InputDir, c.TextureDir)
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.InputDir, "renders")
	}

	// Defaults for render settings
	if c.Camera == "" {
		c.Camera = viewmatrix.Iso
	}
	if c.RenderSize <= 0 {
		c.RenderSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.FillRatio <= 0 || c.FillRatio > 1 {
		c.FillRatio = 0.9
	}
	if c.MinClusterRatio < 0 {
		c.MinClusterRatio = 0
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MinComponentVerts < 0 {
		c.MinComponentVerts = 0
	}
}

// CameraSettings returns the camera described by the config.
func (c *Config) CameraSettings() viewmatrix.Camera {
	return viewmatrix.Camera{
		Preset:      c.Camera,
		ZUp:         c.ZUp,
		Perspective: c.Perspective,
		FOV:         c.FOV,
	}
}
