package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"castkit/internal/viewmatrix"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "render.yaml", `
input_dir: /data/models
camera: front
z_up: true
render_size: 512
fill_ratio: 0.75
exclude_meshes:
  - glow
  - "^fx_"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/models", cfg.InputDir)
	assert.Equal(t, viewmatrix.Front, cfg.Camera)
	assert.True(t, cfg.ZUp)
	assert.Equal(t, 512, cfg.RenderSize)
	assert.Equal(t, 0.75, cfg.FillRatio)
	assert.Equal(t, []string{"glow", "^fx_"}, cfg.ExcludeMeshes)
}

func TestLoadJSON(t *testing.T) {
	path := write(t, "render.json", `{"output_dir": "out", "workers": 3, "strict": true}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.Strict)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(write(t, "bad.yaml", "camera: front\nzoom: 3\n"))
	assert.ErrorContains(t, err, "config: parse")

	_, err = Load(write(t, "bad.json", `{"zoom": 3}`))
	assert.ErrorContains(t, err, "config: parse")

	_, err = Load(write(t, "render.toml", "camera = 'front'"))
	assert.ErrorContains(t, err, "unsupported extension")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{InputDir: "models"})

	assert.Equal(t, "models", cfg.InputDir)
	assert.Equal(t, "models", cfg.TextureDir)
	assert.Equal(t, filepath.Join("models", "renders"), cfg.OutputDir)
	assert.Equal(t, viewmatrix.Iso, cfg.Camera)
	assert.Equal(t, 256, cfg.RenderSize)
	assert.Equal(t, 2, cfg.Supersample)
	assert.Equal(t, 0.9, cfg.FillRatio)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
}

func TestResolveFlagsOverrideFile(t *testing.T) {
	cfg := Config{InputDir: "a", TextureDir: "tex", Camera: viewmatrix.Top, RenderSize: 128, Workers: 2}
	cfg.Resolve(Flags{Camera: viewmatrix.Front, Size: 64, Strict: true})

	assert.Equal(t, filepath.Join("a", "tex"), cfg.TextureDir)
	assert.Equal(t, viewmatrix.Front, cfg.Camera)
	assert.Equal(t, 64, cfg.RenderSize)
	assert.Equal(t, 2, cfg.Workers)
	assert.True(t, cfg.Strict)

	cam := cfg.CameraSettings()
	assert.Equal(t, viewmatrix.Front, cam.Preset)
}
