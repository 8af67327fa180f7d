// Package config holds flashkvtool's on-disk configuration: the medium
// geometry to simulate, the store's open-time flags, and the inspector
// HTTP server's settings. Adapted from the teacher repository's
// utils/config package - same JSON-file-backed sync.Once singleton and
// load-or-create-defaults flow - but with hand-written if-chain
// validation replaced by a reflective walk over `validate` struct tags,
// using github.com/tkrajina/go-reflector (already present in the
// teacher's dependency graph, just never directly exercised there).
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/tkrajina/go-reflector/reflector"
)

// GeometryConfig mirrors medium.Geometry for JSON (de)serialization.
type GeometryConfig struct {
	PageSize   uint32 `json:"page_size" validate:"min=1"`
	SectorSize uint32 `json:"sector_size" validate:"min=1"`
	Base       uint32 `json:"base"`
	Length     uint32 `json:"length" validate:"min=1"`
}

// StoreConfig controls store.Handle's init-time flags and default search
// bound.
type StoreConfig struct {
	PageAlign      bool   `json:"page_align"`
	EmptyPageLimit uint32 `json:"empty_page_limit" validate:"min=1"`
	CacheCapacity  uint32 `json:"cache_capacity" validate:"min=1"`
}

// InspectorConfig controls the flashkvtool inspect HTTP/WebSocket console.
type InspectorConfig struct {
	ListenAddr      string `json:"listen_addr" validate:"nonempty"`
	AutoOpenBrowser bool   `json:"auto_open_browser"`
}

// LogConfig controls internal/flashlog's verbosity.
type LogConfig struct {
	Level string `json:"level" validate:"oneof=debug,info,warn,error"`
}

// Config is the root configuration document.
type Config struct {
	Geometry  GeometryConfig  `json:"geometry"`
	Store     StoreConfig     `json:"store"`
	Inspector InspectorConfig `json:"inspector"`
	Log       LogConfig       `json:"log"`
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the process-wide configuration singleton, loading it from
// disk (or writing defaults) on first use.
func Get() *Config {
	once.Do(func() {
		instance = load(defaultPath())
	})
	return instance
}

func defaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "flashkvtool", "config.json")
}

func load(path string) *Config {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := defaults()
		_ = save(cfg, path)
		return cfg
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return defaults()
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return defaults()
	}
	if err := Validate(&cfg); err != nil {
		return defaults()
	}
	return &cfg
}

func defaults() *Config {
	return &Config{
		Geometry: GeometryConfig{
			PageSize:   256,
			SectorSize: 4096,
			Base:       0,
			Length:     1 << 20,
		},
		Store: StoreConfig{
			PageAlign:      false,
			EmptyPageLimit: 8,
			CacheCapacity:  256,
		},
		Inspector: InspectorConfig{
			ListenAddr:      "127.0.0.1:8642",
			AutoOpenBrowser: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "config: mkdir")
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "config: marshal")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "config: write")
	}
	return nil
}

// Save persists cfg to path and, if it validates, replaces the process
// singleton so subsequent Get calls observe it.
func Save(cfg *Config, path string) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	if err := save(cfg, path); err != nil {
		return err
	}
	instance = cfg
	return nil
}

// Validate walks cfg's fields via reflection, applying the constraint
// named in each field's `validate` tag: "min=N" (numeric fields must be
// >= N), "nonempty" (strings must be non-empty), and "oneof=a,b,c"
// (strings must be one of the listed values). Fields without a
// `validate` tag are left alone.
func Validate(cfg *Config) error {
	obj := reflector.New(cfg)
	fields, err := obj.FieldsFlattened()
	if err != nil {
		return errors.Wrap(err, "config: reflect fields")
	}

	for _, f := range fields {
		tag, _ := f.Tag("validate")
		if tag == "" {
			continue
		}
		if err := checkField(f, tag); err != nil {
			return err
		}
	}
	return nil
}

func checkField(f *reflector.ObjField, tag string) error {
	value, err := f.Get()
	if err != nil {
		return errors.Wrapf(err, "config: read field %s", f.Name())
	}

	switch {
	case tag == "nonempty":
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return errors.Errorf("config: %s must not be empty", f.Name())
		}
	case strings.HasPrefix(tag, "min="):
		min, _ := strconv.ParseUint(strings.TrimPrefix(tag, "min="), 10, 64)
		if asUint64(value) < min {
			return errors.Errorf("config: %s must be >= %d", f.Name(), min)
		}
	case strings.HasPrefix(tag, "oneof="):
		allowed := strings.Split(strings.TrimPrefix(tag, "oneof="), ",")
		s, _ := value.(string)
		ok := false
		for _, a := range allowed {
			if s == a {
				ok = true
				break
			}
		}
		if !ok {
			return errors.Errorf("config: %s must be one of %v", f.Name(), allowed)
		}
	}
	return nil
}

func asUint64(v interface{}) uint64 {
	switch n := v.(type) {
	case uint32:
		return uint64(n)
	case uint64:
		return n
	case int:
		return uint64(n)
	default:
		return 0
	}
}
