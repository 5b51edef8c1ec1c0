package batch

import (
	"encoding/json"
	"fmt"
	"os"
)

// ManifestEntry represents one rendered model in the output manifest.
type ManifestEntry struct {
	File     string `json:"file"`
	Model    string `json:"model,omitempty"`
	Image    string `json:"image"`
	Meshes   int    `json:"meshes"`
	Vertices int    `json:"vertices"`
	Faces    int    `json:"faces"`
	Bones    int    `json:"bones,omitempty"`
}

// WriteManifest writes the successful renders of results to path as JSON.
func WriteManifest(path string, results []Result) error {
	entries := []ManifestEntry{}
	for _, res := range results {
		if !res.Success {
			continue
		}
		for _, r := range res.Renders {
			entries = append(entries, ManifestEntry{
				File:     res.File,
				Model:    r.Model,
				Image:    r.Image,
				Meshes:   r.Meshes,
				Vertices: r.Vertices,
				Faces:    r.Faces,
				Bones:    r.Bones,
			})
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	return nil
}
