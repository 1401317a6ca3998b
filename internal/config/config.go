package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/chriscorrea/qctx/internal/logger"
	"github.com/chriscorrea/qctx/internal/qerr"
)

//go:embed data/default_config.yaml
var defaultConfigYAML []byte

// FileName is the config file name for both the global and the local scope
const FileName = ".ctx"

// Paths locates the files the Manager reads and writes
type Paths struct {
	Home    string // per-user directory, e.g. ~/.qctx
	WorkDir string // where the local ancestor search starts
}

// GlobalFile is the per-user config file
func (p Paths) GlobalFile() string {
	return filepath.Join(p.Home, FileName)
}

// Manager handles configuration loading and management
type Manager struct {
	paths     Paths
	cfg       *Config
	localPath string
	sources   []string
	logger    *slog.Logger
}

// NewManager creates a new configuration manager
func NewManager(paths Paths) *Manager {
	return &Manager{
		paths:  paths,
		cfg:    NewDefault(),
		logger: logger.Discard(),
	}
}

// WithLogger sets the logger for the configuration manager
func (m *Manager) WithLogger(l *slog.Logger) *Manager {
	m.logger = logger.OrDiscard(l)
	return m
}

// Load merges the built-in defaults, the global file and the local file.
//
// Each layer overwrites the top-level keys it sets. A layer that is empty or
// cannot be parsed as JSON or YAML is skipped with a warning, so a corrupted
// file never makes the tool unusable. A missing global file is created with
// the defaults.
func (m *Manager) Load() error {
	if err := os.MkdirAll(m.paths.Home, 0755); err != nil {
		return qerr.Wrap(qerr.DirCreate, err, fmt.Sprintf("failed to create directory %s", m.paths.Home))
	}

	merged, err := parseLayer(defaultConfigYAML)
	if err != nil {
		return fmt.Errorf("failed to load embedded defaults: %w", err)
	}
	m.sources = nil

	globalPath := m.paths.GlobalFile()
	if _, err := os.Stat(globalPath); errors.Is(err, os.ErrNotExist) {
		m.logger.Info("Global config does not exist, creating it with default settings", "path", globalPath)
		if err := os.WriteFile(globalPath, defaultConfigYAML, 0644); err != nil {
			m.logger.Warn("Failed to create global config", "path", globalPath, "error", err)
		}
	} else if m.mergeFile(merged, globalPath) {
		m.sources = append(m.sources, globalPath)
	}

	m.localPath = FindUp(FileName, m.paths.WorkDir)
	if m.localPath != "" && m.localPath != globalPath && m.mergeFile(merged, m.localPath) {
		m.sources = append(m.sources, m.localPath)
	}

	cfg, err := decode(merged)
	if err != nil {
		m.logger.Warn("Config has unexpected structure, using default config", "error", err)
		cfg = NewDefault()
	}
	m.cfg = cfg

	m.logger.Debug("Configuration loaded", "sources", m.sources, "contexts", len(cfg.Contexts))
	return nil
}

// mergeFile overlays the file's top-level keys onto merged; it reports whether the file was used
func (m *Manager) mergeFile(merged map[string]any, path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		m.logger.Warn("Failed to read config file", "path", path, "error", err)
		return false
	}

	layer, err := parseLayer(data)
	if err != nil {
		m.logger.Warn("Ignoring config file", "path", path, "code", qerr.CodeOf(err), "error", err)
		return false
	}

	for key, value := range layer {
		merged[key] = value
	}
	return true
}

// Config returns the current configuration
func (m *Manager) Config() *Config {
	return m.cfg
}

// SetConfig replaces the in-memory configuration (persisted by Save)
func (m *Manager) SetConfig(cfg *Config) {
	m.cfg = cfg
}

// Sources lists the files that contributed to the loaded configuration
func (m *Manager) Sources() []string {
	return append([]string(nil), m.sources...)
}

// LocalPath is the local file found by ancestor search, or ""
func (m *Manager) LocalPath() string {
	return m.localPath
}

// GlobalPath is the per-user config file
func (m *Manager) GlobalPath() string {
	return m.paths.GlobalFile()
}

// SavePath is where Save writes: the local file if one was found, else the global file
func (m *Manager) SavePath() string {
	if m.localPath != "" {
		return m.localPath
	}
	return m.paths.GlobalFile()
}

// Save writes the current configuration back to SavePath
func (m *Manager) Save() error {
	return m.SaveTo(m.SavePath())
}

// SaveTo writes the current configuration as YAML to path
func (m *Manager) SaveTo(path string) error {
	data, err := Marshal(m.cfg)
	if err != nil {
		return qerr.Wrap(qerr.ConfigSave, err, "failed to encode configuration")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return qerr.Wrap(qerr.DirCreate, err, fmt.Sprintf("failed to create config directory %s", filepath.Dir(path)))
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return qerr.Wrap(qerr.ConfigSave, err, fmt.Sprintf("failed to save configuration to %s", path))
	}

	m.logger.Debug("Configuration saved", "path", path)
	return nil
}

// NewDefault returns the built-in default configuration
func NewDefault() *Config {
	layer, err := parseLayer(defaultConfigYAML)
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	cfg, err := decode(layer)
	if err != nil {
		panic(fmt.Sprintf("failed to decode embedded default config: %v", err))
	}
	return cfg
}

// Parse decodes a single JSON or YAML document into a Config
func Parse(data []byte) (*Config, error) {
	layer, err := parseLayer(data)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(layer)
	if err != nil {
		return nil, qerr.Wrap(qerr.InvalidConfigFormat, err, "invalid configuration structure")
	}
	return cfg, nil
}

// Marshal encodes cfg in the canonical YAML format
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FindUp searches dir and its ancestors for name, stopping before the filesystem root
func FindUp(name, dir string) string {
	if dir == "" {
		return ""
	}
	current, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		parent := filepath.Dir(current)
		if parent == current {
			// reached the filesystem root
			return ""
		}
		candidate := filepath.Join(current, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		current = parent
	}
}

// parseLayer reads a JSON document, falling back to YAML
func parseLayer(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, qerr.New(qerr.EmptyConfig, "config file is empty")
	}

	var layer map[string]any
	if jsonErr := json.Unmarshal(data, &layer); jsonErr != nil {
		layer = nil
		if yamlErr := yaml.Unmarshal(data, &layer); yamlErr != nil {
			return nil, qerr.Wrap(qerr.InvalidConfigFormat, yamlErr, "invalid configuration file format, ensure it's valid JSON or YAML")
		}
	}

	if layer == nil {
		return nil, qerr.New(qerr.InvalidConfigFormat, "configuration must be a JSON or YAML mapping")
	}
	return layer, nil
}

func decode(layer map[string]any) (*Config, error) {
	cfg := &Config{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(layer); err != nil {
		return nil, err
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]Context)
	}
	return cfg, nil
}
