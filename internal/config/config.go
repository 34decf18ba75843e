// Package config loads runtime configuration from the environment and
// parses crop job files.
package config

import (
	"os"
	"strconv"
)

type Config struct {
	Editor EditorConfig
	Export ExportConfig
	Web    WebConfig
}

// EditorConfig describes the crop window and thumbnail strip geometry, in
// display points.
type EditorConfig struct {
	FrameWidth  float64
	FrameHeight float64
	ItemExtent  float64 // along-axis size of one thumbnail slot
}

type ExportConfig struct {
	OutDir      string
	MaxWidth    int // 0 disables the resize hint
	Quality     int
	Concurrency int
}

type WebConfig struct {
	Host      string
	Port      int
	UploadDir string // session uploads land under here
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envString reads an environment variable with a default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Editor: EditorConfig{
			FrameWidth:  envFloat("PHOTOCROP_FRAME_WIDTH", 390),
			FrameHeight: envFloat("PHOTOCROP_FRAME_HEIGHT", 390),
			ItemExtent:  envFloat("PHOTOCROP_ITEM_EXTENT", 80),
		},
		Export: ExportConfig{
			OutDir:      envString("PHOTOCROP_OUT_DIR", "out"),
			MaxWidth:    envInt("PHOTOCROP_MAX_WIDTH", 2048),
			Quality:     envInt("PHOTOCROP_JPEG_QUALITY", 85),
			Concurrency: envInt("PHOTOCROP_EXPORT_CONCURRENCY", 2),
		},
		Web: WebConfig{
			Host:      envString("WEB_HOST", "127.0.0.1"),
			Port:      envInt("WEB_PORT", 8080),
			UploadDir: envString("PHOTOCROP_UPLOAD_DIR", os.TempDir()),
		},
	}
}
