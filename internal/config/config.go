// Package config layers run settings from compiled defaults, an
// optional .sidegen.yaml file, a .env file and SIDEGEN_* environment
// variables. Command-line flags are applied on top by the cmd layer,
// giving the precedence flag > env > file > default.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	m "github.com/sidegen/sidegen/internal/model"
)

// FileName is the optional per-directory config file.
const FileName = ".sidegen.yaml"

// Settings holds the layered, non-positional run options.
type Settings struct {
	BaseURL  string
	Filter   string
	Mode     string
	Parallel int
	Report   string
	Debug    bool
}

// Defaults returns the compiled-in settings.
func Defaults() Settings {
	return Settings{
		Filter: m.DefaultFilter,
		Mode:   string(m.ModeSuite),
	}
}

// fileDoc is the yaml shape of .sidegen.yaml.
type fileDoc struct {
	BaseURL  string `yaml:"base_url"`
	Filter   string `yaml:"filter"`
	Mode     string `yaml:"mode"`
	Parallel int    `yaml:"parallel"`
	Report   string `yaml:"report"`
	Debug    bool   `yaml:"debug"`
}

// Load builds the settings for a run started in dir.
func Load(dir string) (Settings, error) {
	s := Defaults()

	if err := applyFile(&s, filepath.Join(dir, FileName)); err != nil {
		return Settings{}, err
	}

	// godotenv never overrides variables already present in the
	// process environment, so real env vars win over .env entries.
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(&s); err != nil {
		return Settings{}, err
	}

	return s, nil
}

func applyFile(s *Settings, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if doc.BaseURL != "" {
		s.BaseURL = doc.BaseURL
	}

	if doc.Filter != "" {
		s.Filter = doc.Filter
	}

	if doc.Mode != "" {
		s.Mode = doc.Mode
	}

	if doc.Parallel != 0 {
		s.Parallel = doc.Parallel
	}

	if doc.Report != "" {
		s.Report = doc.Report
	}

	if doc.Debug {
		s.Debug = true
	}

	return nil
}

func applyEnv(s *Settings) error {
	if v, ok := os.LookupEnv("SIDEGEN_BASE_URL"); ok {
		s.BaseURL = v
	}

	if v, ok := os.LookupEnv("SIDEGEN_FILTER"); ok {
		s.Filter = v
	}

	if v, ok := os.LookupEnv("SIDEGEN_MODE"); ok {
		s.Mode = v
	}

	if v, ok := os.LookupEnv("SIDEGEN_PARALLEL"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SIDEGEN_PARALLEL: %w", err)
		}

		s.Parallel = n
	}

	if v, ok := os.LookupEnv("SIDEGEN_REPORT"); ok {
		s.Report = v
	}

	if v, ok := os.LookupEnv("SIDEGEN_DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SIDEGEN_DEBUG: %w", err)
		}

		s.Debug = b
	}

	return nil
}
