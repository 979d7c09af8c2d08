// Package config loads and validates the nucleation core's startup
// configuration (§6/§7): the root Configuration object, the Initialize
// file's core tuning parameters, and each web's Grid config. It follows
// the teacher's internal/config/tuning.go shape exactly: every optional
// field is a pointer, a Get*() accessor supplies the documented default
// when the pointer is nil, and Validate() rejects malformed values
// before the rest of the process trusts them.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/usgs/neic-glass3-sub001/internal/glasserr"
	"github.com/usgs/neic-glass3-sub001/internal/security"
)

// maxConfigFileSize bounds how large a config file this process will
// read, matching the teacher's LoadTuningConfig safety check.
const maxConfigFileSize = 1 * 1024 * 1024

// Root is the top-level Configuration JSON object (§6 "Configuration").
type Root struct {
	Configuration  string   `json:"Configuration"`
	LogLevel       *string  `json:"LogLevel,omitempty"`
	InitializeFile string   `json:"InitializeFile,omitempty"`
	StationList    string   `json:"StationList,omitempty"`
	GridFiles      []string `json:"GridFiles,omitempty"`
	InputConfig    string   `json:"InputConfig,omitempty"`
	OutputConfig   string   `json:"OutputConfig,omitempty"`

	// baseDir is the directory the root config file itself lives in;
	// every relative path above is validated against it.
	baseDir string
}

// GetLogLevel returns the configured log level, defaulting to "info".
func (r *Root) GetLogLevel() string {
	if r.LogLevel == nil || *r.LogLevel == "" {
		return "info"
	}
	return *r.LogLevel
}

// Validate checks the root object's required fields and that every
// path it names resolves inside the config file's own directory (no
// traversal via "..").
func (r *Root) Validate() error {
	if r.Configuration != "glass-app" && r.Configuration != "glass-broker-app" {
		return &glasserr.ValidateError{Field: "Configuration", Reason: fmt.Sprintf("must be \"glass-app\" or \"glass-broker-app\", got %q", r.Configuration)}
	}
	for field, path := range map[string]string{
		"InitializeFile": r.InitializeFile,
		"StationList":    r.StationList,
		"InputConfig":    r.InputConfig,
		"OutputConfig":   r.OutputConfig,
	} {
		if path == "" {
			continue
		}
		if err := r.checkPath(field, path); err != nil {
			return err
		}
	}
	for _, path := range r.GridFiles {
		if err := r.checkPath("GridFiles", path); err != nil {
			return err
		}
	}
	return nil
}

func (r *Root) checkPath(field, path string) error {
	if r.baseDir == "" {
		return nil
	}
	if err := security.ValidatePathWithinDirectory(filepath.Join(r.baseDir, path), r.baseDir); err != nil {
		return &glasserr.ValidateError{Field: field, Reason: err.Error()}
	}
	return nil
}

// ResolvePath joins a path named by the config with the config file's
// own directory, after re-checking it does not escape that directory.
func (r *Root) ResolvePath(path string) (string, error) {
	if err := r.checkPath("path", path); err != nil {
		return "", err
	}
	return filepath.Join(r.baseDir, path), nil
}

// LoadRoot reads and validates a root Configuration file.
func LoadRoot(path string) (*Root, error) {
	data, err := readBounded(path)
	if err != nil {
		return nil, err
	}
	var r Root
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &glasserr.ParseError{Source: path, Err: err}
	}
	r.baseDir = filepath.Dir(path)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func readBounded(path string) ([]byte, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, &glasserr.ConfigError{Field: "path", Err: fmt.Errorf("config file must have .json extension, got %q", ext)}
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, &glasserr.ConfigError{Field: "path", Err: err}
	}
	if info.Size() > maxConfigFileSize {
		return nil, &glasserr.ConfigError{Field: "path", Err: fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)}
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, &glasserr.ConfigError{Field: "path", Err: err}
	}
	return data, nil
}
