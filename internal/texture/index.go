package texture

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// extPriority ranks decodable extensions. When two files share a stem the
// higher rank wins, so formats that carry alpha beat JPEG.
var extPriority = map[string]int{
	".jpg":  1,
	".jpeg": 1,
	".bmp":  2,
	".tif":  3,
	".tiff": 3,
	".webp": 4,
	".tga":  5,
	".png":  6,
}

// Index maps lowercase texture stems to filesystem paths.
type Index struct {
	root    string
	entries map[string]string // lowercase stem to full path
}

// BuildIndex walks dir and its subdirectories for decodable image files. A
// missing directory yields an empty index.
func BuildIndex(dir string) *Index {
	idx := &Index{root: dir, entries: make(map[string]string)}
	if dir == "" {
		return idx
	}

	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		rank, ok := extPriority[ext]
		if !ok {
			return nil
		}
		stem := stemOf(path)
		existing, exists := idx.entries[stem]
		if !exists || rank > extPriority[strings.ToLower(filepath.Ext(existing))] {
			idx.entries[stem] = path
		}
		return nil
	})

	return idx
}

// ResolvePath maps a File node path to a file on disk. The path is tried as
// given, then relative to the index root, then by stem.
func (idx *Index) ResolvePath(texName string) (string, bool) {
	if texName == "" {
		return "", false
	}
	// Exporters on Windows write backslashes.
	texName = strings.ReplaceAll(texName, "\\", "/")

	candidates := []string{texName}
	if idx.root != "" && !filepath.IsAbs(texName) {
		candidates = append(candidates, filepath.Join(idx.root, texName))
	}
	for _, c := range candidates {
		if _, ok := extPriority[strings.ToLower(filepath.Ext(c))]; !ok {
			continue
		}
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}

	path, ok := idx.entries[stemOf(texName)]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}
