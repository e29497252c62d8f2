// Package config loads the reader configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"mushaf/internal/domain"
	"mushaf/internal/secret"
	"mushaf/internal/storage"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "MUSHAF_CONFIG"

// Config is the on-disk configuration.
type Config struct {
	DataDir        string                `yaml:"data_dir"`
	LogLevel       string                `yaml:"log_level"`
	Storage        Storage               `yaml:"storage"`
	Reading        Reading               `yaml:"reading"`
	Autosave       string                `yaml:"autosave"`
	WatchDocuments bool                  `yaml:"watch_documents"`
	Documents      []domain.DocumentInfo `yaml:"documents"`
	Tool           domain.ToolConfig     `yaml:"tool"`
}

// Storage selects the key-value backend.
type Storage struct {
	Driver      string `yaml:"driver"` // sqlite, postgres, mysql, mongodb
	Path        string `yaml:"path,omitempty"`
	URI         string `yaml:"uri,omitempty"`
	Host        string `yaml:"host,omitempty"`
	Port        int    `yaml:"port,omitempty"`
	Database    string `yaml:"database,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	PasswordKey string `yaml:"password_key,omitempty"` // looked up in the secret store
	SSLMode     string `yaml:"ssl_mode,omitempty"`
}

// Reading holds the layout preferences.
type Reading struct {
	Direction   string `yaml:"direction"`
	Alignment   string `yaml:"alignment"`
	Orientation string `yaml:"orientation"`
}

// Layout is Reading after validation.
type Layout struct {
	Direction   domain.Direction
	Alignment   domain.Alignment
	Orientation domain.Orientation
}

// Default returns the configuration used when no file exists.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:  filepath.Join(home, ".local", "share", "mushaf"),
		LogLevel: "info",
		Storage:  Storage{Driver: "sqlite"},
		Reading: Reading{
			Direction:   string(domain.DirectionRTL),
			Alignment:   string(domain.AlignmentCover),
			Orientation: string(domain.OrientationSingle),
		},
		Autosave:       "@every 30s",
		WatchDocuments: true,
		Documents: []domain.DocumentInfo{
			{ID: "Quran", Title: "Hafs", Path: "Quran.pdf"},
			{ID: "Qaloun", Title: "Qaloun", Path: "Qaloun.pdf"},
		},
		Tool: domain.DefaultTool(),
	}
}

// Path returns the config file to read: $MUSHAF_CONFIG, else
// ~/.config/mushaf/config.yaml.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "mushaf", "config.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if _, err := cfg.Layout(); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Layout validates the reading preferences.
func (c Config) Layout() (Layout, error) {
	d, err := domain.ParseDirection(c.Reading.Direction)
	if err != nil {
		return Layout{}, err
	}
	a, err := domain.ParseAlignment(c.Reading.Alignment)
	if err != nil {
		return Layout{}, err
	}
	o, err := domain.ParseOrientation(c.Reading.Orientation)
	if err != nil {
		return Layout{}, err
	}
	return Layout{Direction: d, Alignment: a, Orientation: o}, nil
}

// Library returns the documents with relative paths resolved against
// the data directory.
func (c Config) Library() []domain.DocumentInfo {
	out := make([]domain.DocumentInfo, len(c.Documents))
	for i, d := range c.Documents {
		if d.Path != "" && !filepath.IsAbs(d.Path) {
			d.Path = filepath.Join(c.DataDir, d.Path)
		}
		if d.Title == "" {
			d.Title = d.ID
		}
		out[i] = d
	}
	return out
}

// Backend resolves the storage settings, fetching the password from
// secrets when PasswordKey is set.
func (c Config) Backend(secrets secret.SecretStore) (storage.Backend, error) {
	s := c.Storage
	b := storage.Backend{
		Driver:   s.Driver,
		Path:     s.Path,
		URI:      s.URI,
		Host:     s.Host,
		Port:     s.Port,
		Database: s.Database,
		Username: s.Username,
		Password: s.Password,
		SSLMode:  s.SSLMode,
	}
	if b.Path == "" {
		b.Path = filepath.Join(c.DataDir, "mushaf.db")
	}
	if s.PasswordKey != "" && secrets != nil {
		pw, err := secrets.Get(s.PasswordKey)
		if err != nil {
			return storage.Backend{}, fmt.Errorf("storage password %q: %w", s.PasswordKey, err)
		}
		if pw != nil {
			b.Password = string(pw)
		}
	}
	return b, nil
}

// WriteExample writes the default configuration to path.
func WriteExample(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	header := "# mushaf configuration\n# storage.driver: sqlite | postgres | mysql | mongodb\n\n"
	return os.WriteFile(path, []byte(header+string(data)), 0644)
}
