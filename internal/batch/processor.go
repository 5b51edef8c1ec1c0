package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"castkit/internal/cast"
	"castkit/internal/filter"
	"castkit/internal/postprocess"
	"castkit/internal/raster"
	"castkit/internal/texture"
	"castkit/internal/viewmatrix"
)

// Config holds all shared resources for a batch run.
type Config struct {
	InputDir  string
	OutputDir string

	Decoder  *cast.Decoder
	Textures texture.Resolver
	Filter   *filter.MeshFilter
	Camera   viewmatrix.Camera

	RenderSize      int
	Supersample     int
	FillRatio       float64
	MinClusterRatio float64
	Workers         int

	// Progress receives a status line every couple of seconds; nil is quiet.
	Progress io.Writer
	// Logger receives one warning per failed file; nil discards them.
	Logger *slog.Logger
}

// Result holds the outcome of processing one cast file.
type Result struct {
	File    string // relative to InputDir
	Renders []Render
	Success bool
	Error   string
}

// Render describes one image written for a model.
type Render struct {
	Model    string
	Image    string // relative to OutputDir
	Meshes   int
	Vertices int
	Faces    int
	Bones    int
}

// Discover lists the .cast files under dir, relative to dir, sorted.
func Discover(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".cast") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// Run processes all files using a worker pool. Files not yet started when ctx
// is cancelled are reported as failed with the context error.
func Run(ctx context.Context, cfg Config, files []string) []Result {
	total := len(files)
	results := make([]Result, total)
	var processed atomic.Int64

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Decoder == nil {
		cfg.Decoder = &cast.Decoder{Logger: cfg.Logger}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	var reporter sync.WaitGroup
	if cfg.Progress != nil {
		reporter.Add(1)
		go func() {
			defer reporter.Done()
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f files/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	work := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				if err := ctx.Err(); err != nil {
					results[idx] = Result{File: files[idx], Error: err.Error()}
				} else {
					results[idx] = processFile(cfg, files[idx])
				}
				if !results[idx].Success {
					logger.Warn("batch: file failed", "file", files[idx], "err", results[idx].Error)
				}
				processed.Add(1)
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)

	wg.Wait()
	close(done)
	reporter.Wait()

	return results
}

func processFile(cfg Config, rel string) Result {
	res := Result{File: rel}
	fail := func(err error) Result {
		res.Renders = nil
		res.Error = err.Error()
		return res
	}

	doc, err := cfg.Decoder.LoadFile(filepath.Join(cfg.InputDir, rel))
	if err != nil {
		return fail(err)
	}
	models := doc.Models()
	if len(models) == 0 {
		return fail(errors.New("no models in file"))
	}

	base := strings.TrimSuffix(rel, filepath.Ext(rel))
	for i, model := range models {
		out := base + ".webp"
		if len(models) > 1 {
			out = fmt.Sprintf("%s_%d.webp", base, i)
		}

		img, err := raster.RenderModel(model, raster.Options{
			Camera:      cfg.Camera,
			Textures:    cfg.Textures,
			Filter:      cfg.Filter,
			Size:        cfg.RenderSize,
			Supersample: cfg.Supersample,
		})
		if err != nil {
			return fail(fmt.Errorf("model %d: %w", i, err))
		}
		img = finish(cfg, img)

		if err := writeWebP(filepath.Join(cfg.OutputDir, out), img); err != nil {
			return fail(err)
		}
		res.Renders = append(res.Renders, describe(model, filepath.ToSlash(out)))
	}

	res.Success = true
	return res
}

// finish applies the post-processing chain to a raw render.
func finish(cfg Config, img *image.NRGBA) *image.NRGBA {
	if cfg.Supersample > 1 {
		img = postprocess.Downsample(img, cfg.Supersample)
	}
	if cfg.MinClusterRatio > 0 {
		img, _ = postprocess.RemoveSmallClusters(img, cfg.MinClusterRatio)
	}
	if cfg.FillRatio > 0 {
		img = postprocess.CropAndCenter(img, cfg.RenderSize, cfg.FillRatio)
	}
	return img
}

func writeWebP(path string, img image.Image) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("batch: webp encode %s: %w", path, err)
	}
	return nil
}

func describe(model *cast.Model, out string) Render {
	r := Render{Image: out}
	r.Model, _ = model.Name()
	for _, m := range model.Meshes() {
		r.Meshes++
		if n, ok := m.VertexCount(); ok {
			r.Vertices += n
		}
		if n, ok := m.FaceCount(); ok {
			r.Faces += n
		}
	}
	if skel, ok := model.Skeleton(); ok {
		r.Bones = len(skel.Bones())
	}
	return r
}
