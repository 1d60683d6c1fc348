package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Capstone-project-Engventure/EngAgent/chunk"
	"github.com/Capstone-project-Engventure/EngAgent/idgen"
	"github.com/Capstone-project-Engventure/EngAgent/normalize"
	"github.com/Capstone-project-Engventure/EngAgent/sources"
	"github.com/Capstone-project-Engventure/EngAgent/vocab"
)

// Config holds the full ingest configuration.
type Config struct {
	DataDir    string `yaml:"data_dir"`
	Output     string `yaml:"output"`      // default: <data_dir>/chunks.json
	SQLitePath string `yaml:"sqlite_path"` // optional export, empty disables
	Workers    int    `yaml:"workers"`
	MaxFileMB  int    `yaml:"max_file_mb"`

	// DetectColumns routes PDFs through the layout detector. When false
	// every PDF is read as a single column.
	DetectColumns bool `yaml:"detect_columns"`

	Chunk     chunk.Options     `yaml:"chunk"`
	Normalize normalize.Options `yaml:"normalize"`
	Vocab     vocab.Columns     `yaml:"vocab"`
	Sources   []sources.Source  `yaml:"sources"`

	NewID idgen.Generator  `yaml:"-"`
	Now   func() time.Time `yaml:"-"`
}

// DefaultConfig returns the configuration of the bundled data layout.
func DefaultConfig() *Config {
	return &Config{
		DataDir:       "data",
		Workers:       1,
		MaxFileMB:     100,
		DetectColumns: true,
		Chunk:         chunk.DefaultOptions(),
		Normalize: normalize.Options{
			MinLineWords: 3,
			Markers:      []string{"ADVERTISEMENT"},
		},
		Vocab:   vocab.DefaultColumns(),
		Sources: sources.DefaultSources(),
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1")
	}
	if c.MaxFileMB <= 0 {
		return fmt.Errorf("max_file_mb must be > 0")
	}
	if c.Chunk.MaxWords <= 0 {
		return fmt.Errorf("chunk.max_words must be > 0")
	}
	if c.Chunk.MinWords < 0 || c.Chunk.MinWords > c.Chunk.MaxWords {
		return fmt.Errorf("chunk.min_words must be in [0, max_words], got %d", c.Chunk.MinWords)
	}
	if c.Chunk.Overlap < 0 || c.Chunk.Overlap >= 1 {
		return fmt.Errorf("chunk.overlap must be in [0, 1), got %g", c.Chunk.Overlap)
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	if _, err := sources.New(c.Sources); err != nil {
		return err
	}
	return nil
}

// Registry builds the immutable source registry from the configured list.
func (c *Config) Registry() (*sources.Registry, error) {
	return sources.New(c.Sources)
}

// OutputPath returns the JSON output path, defaulting under the data root.
func (c *Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	return filepath.Join(c.DataDir, "chunks.json")
}

// MaxFileBytes returns max file size in bytes.
func (c *Config) MaxFileBytes() int64 { return int64(c.MaxFileMB) * 1024 * 1024 }

func (c *Config) defaults() {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.MaxFileMB <= 0 {
		c.MaxFileMB = 100
	}
	if c.NewID == nil {
		c.NewID = idgen.Default
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}
