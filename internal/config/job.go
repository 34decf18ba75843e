package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// maxJobPhotos mirrors the editor's per-post photo limit.
const maxJobPhotos = 5

// Job describes one batch crop run: a crop frame, an optional resize hint
// and up to five photos with their final transforms.
type Job struct {
	Frame    JobFrame   `yaml:"frame"`
	MaxWidth int        `yaml:"max_width"`
	OutDir   string     `yaml:"out_dir"`
	Photos   []JobPhoto `yaml:"photos"`
}

type JobFrame struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// JobPhoto is one photo slot. A zero scale means untouched (cover-fit).
type JobPhoto struct {
	Path       string  `yaml:"path"`
	Scale      float64 `yaml:"scale"`
	TranslateX float64 `yaml:"translate_x"`
	TranslateY float64 `yaml:"translate_y"`
}

// LoadJob reads and validates a yaml job file.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}

	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parsing job file: %w", err)
	}

	if job.Frame.Width <= 0 || job.Frame.Height <= 0 {
		return nil, fmt.Errorf("job frame must be positive, got %gx%g", job.Frame.Width, job.Frame.Height)
	}
	if len(job.Photos) == 0 {
		return nil, fmt.Errorf("job has no photos")
	}
	if len(job.Photos) > maxJobPhotos {
		return nil, fmt.Errorf("job has %d photos, the limit is %d", len(job.Photos), maxJobPhotos)
	}
	for i := range job.Photos {
		p := &job.Photos[i]
		if p.Path == "" {
			return nil, fmt.Errorf("photo %d has no path", i)
		}
		if p.Scale == 0 {
			p.Scale = 1
		}
		if p.Scale < 0 {
			return nil, fmt.Errorf("photo %d has negative scale %g", i, p.Scale)
		}
	}
	return &job, nil
}
