// Command engingest builds the retrieval chunk file of the course material bank.
//
// Usage:
//
//	engingest -data data                     # built-in sources, writes data/chunks.json
//	engingest -config ingest.yaml            # run with config file
//	engingest -config ingest.yaml -db out.db # also export to SQLite
//	engingest -inspect data/chunks.json      # summarize a chunk file and exit
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/Capstone-project-Engventure/EngAgent/chunkstore"
	"github.com/Capstone-project-Engventure/EngAgent/corpus"
	"github.com/Capstone-project-Engventure/EngAgent/idgen"
	"github.com/Capstone-project-Engventure/EngAgent/ingest"
)

type options struct {
	configPath string
	dataDir    string
	output     string
	dbPath     string
	workers    int
	inspect    string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to ingest.yaml config file")
	flag.StringVar(&opts.dataDir, "data", "", "data root directory (overrides config)")
	flag.StringVar(&opts.output, "out", "", "chunk JSON output path (default <data>/chunks.json)")
	flag.StringVar(&opts.dbPath, "db", "", "optional SQLite export path")
	flag.IntVar(&opts.workers, "workers", 0, "files processed concurrently (overrides config)")
	flag.StringVar(&opts.inspect, "inspect", "", "summarize a chunk JSON file and exit")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, opts); err != nil {
		logger.Error("engingest: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, opts options) error {
	if opts.inspect != "" {
		return inspect(opts.inspect)
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return fmt.Errorf("sources: %w", err)
	}

	p := ingest.New(cfg, logger)
	res, err := p.Run(ctx, reg)
	if err != nil {
		return err
	}
	return p.Persist(ctx, res)
}

func resolveConfig(opts options) (*ingest.Config, error) {
	cfg := ingest.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = ingest.LoadConfig(opts.configPath); err != nil {
			return nil, err
		}
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.output != "" {
		cfg.Output = opts.output
	}
	if opts.dbPath != "" {
		cfg.SQLitePath = opts.dbPath
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

type summary struct {
	Chunks     int            `json:"chunks"`
	ByType     map[string]int `json:"by_type"`
	BySource   map[string]int `json:"by_source"`
	Exercises  int            `json:"exercises"`
	Unanswered int            `json:"unanswered"`
	Files      []string       `json:"files"`

	// BadIDs counts ids that are not canonical UUIDs.
	BadIDs       int `json:"bad_ids"`
	DuplicateIDs int `json:"duplicate_ids"`
}

func inspect(path string) error {
	chunks, err := chunkstore.Load(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summarize(chunks))
}

func summarize(chunks []corpus.Chunk) summary {
	s := summary{ByType: map[string]int{}, BySource: map[string]int{}}
	files := map[string]bool{}
	ids := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		s.Chunks++
		s.ByType[c.Type]++
		s.BySource[c.Source]++
		file, _, _ := strings.Cut(c.URL, "#")
		files[file] = true
		if c.IsExercise() {
			s.Exercises++
			if c.Answer == nil {
				s.Unanswered++
			}
		}
		if canon, err := idgen.Parse(c.ID); err != nil || canon != c.ID {
			s.BadIDs++
		}
		if ids[c.ID] {
			s.DuplicateIDs++
		}
		ids[c.ID] = true
	}
	for f := range files {
		s.Files = append(s.Files, f)
	}
	sort.Strings(s.Files)
	return s
}
