// Package batch implements the discovery-and-dispatch driver: it walks
// an input tree for recognized archives, drives each through the
// extraction service with a bounded worker pool, and aggregates per-file
// outcomes into a batch report.
package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pkgbatch/pkg/extract"
	"github.com/pkgbatch/pkg/kind"
)

// ConflictPolicy decides what happens when a job's output path already
// holds data from a prior run.
type ConflictPolicy string

const (
	// ConflictOverwrite clears the stale output subtree and re-extracts,
	// so a re-run converges to the same state as a clean run. Default.
	ConflictOverwrite ConflictPolicy = "overwrite"
	// ConflictSkip leaves prior output untouched and does not invoke the
	// extractor for that archive.
	ConflictSkip ConflictPolicy = "skip"
	// ConflictFail records an OutputConflict failure for that archive.
	ConflictFail ConflictPolicy = "fail"
)

// ParseConflictPolicy validates a policy name.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case ConflictOverwrite:
		return ConflictOverwrite, nil
	case ConflictSkip:
		return ConflictSkip, nil
	case ConflictFail:
		return ConflictFail, nil
	default:
		return "", fmt.Errorf("unknown conflict policy: %q (want skip, overwrite or fail)", s)
	}
}

// DefaultWorkers bounds the extraction pool when no explicit worker
// count is configured.
const DefaultWorkers = 4

// Config holds one batch run's settings. Built by DefaultConfig, then
// layered with an optional config file and CLI flags (flags win).
type Config struct {
	InputRoot  string   // source tree to walk (positional arg)
	OutputRoot string   // default: "output"
	Kinds      kind.Set // enabled archive kinds
	Conflict   ConflictPolicy
	Workers    int           // parallel extractions, >= 1
	JobTimeout time.Duration // per-archive deadline; 0 disables
	StripExt   bool          // drop the archive extension from output names
	ByKind     bool          // nest outputs under one directory per kind
	Extractor  string        // extractor executable
	ReportPath string        // optional JSON report destination
	Verbose    bool          // stream extractor stderr
}

// DefaultConfig returns the settings a bare `run` invocation uses.
func DefaultConfig() *Config {
	return &Config{
		OutputRoot: "output",
		Kinds:      kind.DefaultSet(),
		Conflict:   ConflictOverwrite,
		Workers:    DefaultWorkers,
		Extractor:  extract.DefaultBinary,
	}
}

// Validate rejects configurations no run could honor.
func (c *Config) Validate() error {
	if c.InputRoot == "" {
		return fmt.Errorf("input root is required")
	}
	if c.OutputRoot == "" {
		return fmt.Errorf("output root is required")
	}
	if len(c.Kinds) == 0 {
		return fmt.Errorf("no archive kinds enabled")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.JobTimeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if _, err := ParseConflictPolicy(string(c.Conflict)); err != nil {
		return err
	}
	return nil
}

// fileConfig mirrors the subset of Config settable from a config file.
type fileConfig struct {
	Output    string   `yaml:"output" json:"output"`
	Kinds     []string `yaml:"kinds" json:"kinds"`
	Conflict  string   `yaml:"conflict" json:"conflict"`
	Workers   int      `yaml:"workers" json:"workers"`
	Timeout   string   `yaml:"timeout" json:"timeout"`
	Extractor string   `yaml:"extractor" json:"extractor"`
	StripExt  bool     `yaml:"strip_ext" json:"strip_ext"`
	ByKind    bool     `yaml:"by_kind" json:"by_kind"`
}

// ApplyFile layers settings from a YAML or JSON config file onto c.
// Format is detected by extension (.yaml/.yml/.json) or, failing that,
// by content. Zero-valued file fields leave c untouched.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yml" {
		ext = ".yaml"
	}
	switch ext {
	case ".yaml":
		err = yaml.Unmarshal(data, &fc)
	case ".json":
		err = json.Unmarshal(data, &fc)
	default:
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			err = json.Unmarshal(data, &fc)
		} else {
			err = yaml.Unmarshal(data, &fc)
		}
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.Output != "" {
		c.OutputRoot = fc.Output
	}
	if len(fc.Kinds) > 0 {
		set, err := kind.ParseSet(fc.Kinds)
		if err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
		c.Kinds = set
	}
	if fc.Conflict != "" {
		policy, err := ParseConflictPolicy(fc.Conflict)
		if err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
		c.Conflict = policy
	}
	if fc.Workers != 0 {
		c.Workers = fc.Workers
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("config %s: bad timeout: %w", path, err)
		}
		c.JobTimeout = d
	}
	if fc.Extractor != "" {
		c.Extractor = fc.Extractor
	}
	if fc.StripExt {
		c.StripExt = true
	}
	if fc.ByKind {
		c.ByKind = true
	}
	return nil
}
