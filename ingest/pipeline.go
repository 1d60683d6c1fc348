// Package ingest walks the source registry, extracts every matching file and
// reduces the per-file results into one ordered chunk sequence plus a skip log.
//
// A bad file never aborts a run: it is logged and recorded as a FileError.
// Only persistence failures and a registry whose locations are all missing
// fail the run.
//
// Usage:
//
//	p := ingest.New(cfg, logger)
//	res, err := p.Run(ctx, reg)
//	if err == nil {
//		err = p.Persist(ctx, res)
//	}
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Capstone-project-Engventure/EngAgent/chunk"
	"github.com/Capstone-project-Engventure/EngAgent/chunkstore"
	"github.com/Capstone-project-Engventure/EngAgent/corpus"
	"github.com/Capstone-project-Engventure/EngAgent/docpipe"
	"github.com/Capstone-project-Engventure/EngAgent/grammar"
	"github.com/Capstone-project-Engventure/EngAgent/idgen"
	"github.com/Capstone-project-Engventure/EngAgent/normalize"
	"github.com/Capstone-project-Engventure/EngAgent/sources"
	"github.com/Capstone-project-Engventure/EngAgent/vocab"
)

// Pipeline runs ingest passes over a registry. It is safe for concurrent use.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
	docs   *docpipe.Pipeline
}

// FileResult is the outcome of one file: chunks on success, Err otherwise.
// A file may succeed with zero chunks.
type FileResult struct {
	Source string
	Path   string
	Chunks []corpus.Chunk
	Err    *FileError
}

// Result is the reduced outcome of a run.
type Result struct {
	RunID     string
	CrawlDate time.Time
	Chunks    []corpus.Chunk
	Skipped   []*FileError
	Files     []FileResult
}

// New creates a Pipeline. A nil logger means slog.Default().
func New(cfg *Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	c := *cfg
	c.defaults()

	dcfg := docpipe.Config{MaxFileSize: c.MaxFileBytes(), Logger: logger}
	if !c.DetectColumns {
		dcfg.Layout = docpipe.LayoutSingle
	}
	return &Pipeline{
		cfg:    c,
		logger: logger,
		docs:   docpipe.New(dcfg),
	}
}

type task struct {
	src  sources.Source
	path string
}

// Run processes every source of reg. The returned Result is non-nil even
// when err is ErrNoSources, so the skip log can still be reported.
func (p *Pipeline) Run(ctx context.Context, reg *sources.Registry) (*Result, error) {
	start := time.Now()
	res := &Result{
		RunID:     idgen.UUIDv7()(),
		CrawlDate: p.cfg.Now().UTC(),
	}

	var tasks []task
	perSource := make(map[string]int)
	found := 0
	for _, src := range reg.All() {
		paths, ferr := p.enumerate(src)
		if ferr != nil {
			p.logger.Warn("source skipped", "source", src.Name, "path", ferr.Path, "reason", ferr.Kind, "error", ferr.Err)
			res.Skipped = append(res.Skipped, ferr)
			continue
		}
		found++
		perSource[src.Name] = len(paths)
		for _, path := range paths {
			tasks = append(tasks, task{src: src, path: path})
		}
	}
	if found == 0 {
		return res, ErrNoSources
	}

	results := make([]FileResult, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, t := range tasks {
		g.Go(func() error {
			results[i] = p.processFile(gctx, t.src, t.path, res.CrawlDate)
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return res, err
	}

	type tally struct{ files, chunks, skipped int }
	tallies := make(map[string]*tally)
	for _, fr := range results {
		tl := tallies[fr.Source]
		if tl == nil {
			tl = &tally{}
			tallies[fr.Source] = tl
		}
		tl.files++
		if fr.Err != nil {
			tl.skipped++
			res.Skipped = append(res.Skipped, fr.Err)
			continue
		}
		tl.chunks += len(fr.Chunks)
		res.Chunks = append(res.Chunks, fr.Chunks...)
	}
	res.Files = results

	for _, src := range reg.All() {
		n, ok := perSource[src.Name]
		if !ok {
			continue
		}
		tl := tallies[src.Name]
		if tl == nil {
			tl = &tally{}
		}
		p.logger.Info("source processed",
			"source", src.Name, "type", src.Type, "files", n,
			"chunks", tl.chunks, "skipped", tl.skipped)
	}
	p.logger.Info("ingest complete",
		"run_id", res.RunID,
		"sources", found,
		"files", len(tasks),
		"chunks", len(res.Chunks),
		"skipped", len(res.Skipped),
		"duration_ms", time.Since(start).Milliseconds())
	return res, nil
}

// enumerate lists the files a source covers: the single configured file, or
// the directory's regular files matching the extension filter, sorted by name.
// Subdirectories are not descended.
func (p *Pipeline) enumerate(src sources.Source) ([]string, *FileError) {
	loc := p.resolve(src.Path)
	info, err := os.Stat(loc)
	if err != nil {
		return nil, &FileError{Source: src.Name, Path: loc, Kind: KindMissingLocation, Err: err}
	}

	if src.SingleFile() {
		if info.IsDir() {
			return nil, &FileError{Source: src.Name, Path: loc, Kind: KindMissingLocation,
				Err: fmt.Errorf("expected a file, found a directory")}
		}
		return []string{loc}, nil
	}
	if !info.IsDir() {
		return nil, &FileError{Source: src.Name, Path: loc, Kind: KindMissingLocation,
			Err: fmt.Errorf("expected a directory")}
	}

	entries, err := os.ReadDir(loc)
	if err != nil {
		return nil, &FileError{Source: src.Name, Path: loc, Kind: KindMissingLocation, Err: err}
	}
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !src.Accepts(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(loc, e.Name()))
	}
	return paths, nil
}

func (p *Pipeline) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.cfg.DataDir, path)
}

// ProcessFile extracts one file of src. path may be absolute or relative to
// the data root. The crawl date is taken from the configured clock.
func (p *Pipeline) ProcessFile(ctx context.Context, src sources.Source, path string) FileResult {
	return p.processFile(ctx, src, p.resolve(path), p.cfg.Now().UTC())
}

func (p *Pipeline) processFile(ctx context.Context, src sources.Source, path string, crawled time.Time) (fr FileResult) {
	fr = FileResult{Source: src.Name, Path: path}
	log := p.logger.With("source", src.Name, "path", path)

	fail := func(kind Kind, err error) FileResult {
		log.Warn("file skipped", "reason", kind, "error", err)
		fr.Chunks = nil
		fr.Err = &FileError{Source: src.Name, Path: path, Kind: kind, Err: err}
		return fr
	}

	defer func() {
		if r := recover(); r != nil {
			fr = fail(KindExtraction, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return fail(KindExtraction, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fail(KindExtraction, err)
	}
	if info.Size() > p.cfg.MaxFileBytes() {
		return fail(KindExtraction, fmt.Errorf("%w: %d bytes (max %d)", docpipe.ErrTooLarge, info.Size(), p.cfg.MaxFileBytes()))
	}

	var chunks []corpus.Chunk
	switch {
	case src.Type == corpus.TypeGrammar:
		chunks, err = p.grammarChunks(ctx, log, src, path, crawled)
	case strings.EqualFold(filepath.Ext(path), ".csv"):
		chunks, err = p.vocabChunks(src, path, crawled)
	default:
		chunks, err = p.textChunks(ctx, log, src, path, crawled)
	}
	if err != nil {
		if errors.Is(err, docpipe.ErrUnsupportedFormat) {
			return fail(KindUnsupportedFormat, err)
		}
		return fail(KindExtraction, err)
	}

	log.Debug("file processed", "chunks", len(chunks))
	fr.Chunks = chunks
	return fr
}

func (p *Pipeline) extract(ctx context.Context, log *slog.Logger, path string) (*docpipe.Document, error) {
	doc, err := p.docs.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	if q := doc.Quality; q != nil {
		if q.NeedsOCR() {
			log.Warn("document likely needs OCR",
				"pages", q.PageCount,
				"chars_per_page", q.CharsPerPage,
				"printable_ratio", q.PrintableRatio)
		}
		if q.HasVisualGap() {
			log.Warn("text refers to figures only present as images", "visual_refs", q.VisualRefCount)
		}
	}
	if strings.TrimSpace(doc.RawText) == "" {
		return nil, docpipe.ErrNoText
	}
	return doc, nil
}

func (p *Pipeline) grammarChunks(ctx context.Context, log *slog.Logger, src sources.Source, path string, crawled time.Time) ([]corpus.Chunk, error) {
	doc, err := p.extract(ctx, log, path)
	if err != nil {
		return nil, err
	}

	records, stats := grammar.Parse(doc.RawText)
	if !stats.HasKey {
		log.Debug("no answer key, not an exercise document", "layout", doc.Layout)
		return nil, nil
	}
	if n := stats.Mismatched(); n > 0 {
		log.Debug("exercise blocks did not match", "count", n)
	}
	if stats.Unanswered > 0 {
		log.Warn("answer key incomplete", "unanswered", stats.Unanswered, "records", len(records))
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return grammar.Assemble(records, grammar.Origin{
		Name:      name,
		URL:       corpus.FileURL(p.cfg.DataDir, path),
		CrawlDate: crawled,
	}, p.cfg.NewID), nil
}

func (p *Pipeline) vocabChunks(src sources.Source, path string, crawled time.Time) ([]corpus.Chunk, error) {
	entries, err := vocab.Read(path, p.cfg.Vocab)
	if err != nil {
		return nil, err
	}
	chunks := make([]corpus.Chunk, 0, len(entries))
	for _, e := range entries {
		chunks = append(chunks, corpus.Chunk{
			ID:        p.cfg.NewID(),
			Source:    src.Name,
			URL:       corpus.RowURL(p.cfg.DataDir, path, e.Row),
			CrawlDate: crawled,
			Type:      src.Type,
			Text:      e.Text(),
		})
	}
	return chunks, nil
}

func (p *Pipeline) textChunks(ctx context.Context, log *slog.Logger, src sources.Source, path string, crawled time.Time) ([]corpus.Chunk, error) {
	doc, err := p.extract(ctx, log, path)
	if err != nil {
		return nil, err
	}

	clean := normalize.Clean(doc.RawText, p.cfg.Normalize)
	windows := chunk.Split(clean, p.cfg.Chunk)
	if len(windows) == 0 {
		log.Debug("no chunk reached the minimum word count",
			"words", chunk.CountWords(clean), "min_words", p.cfg.Chunk.MinWords)
		return nil, nil
	}

	url := corpus.FileURL(p.cfg.DataDir, path)
	chunks := make([]corpus.Chunk, 0, len(windows))
	for _, w := range windows {
		chunks = append(chunks, corpus.Chunk{
			ID:        p.cfg.NewID(),
			Source:    src.Name,
			URL:       url,
			CrawlDate: crawled,
			Type:      src.Type,
			Text:      w.Text,
		})
	}
	return chunks, nil
}

// Persist writes res to the JSON output and, when sqlite_path is set,
// exports the chunks and the skip log. Every error wraps ErrPersistence.
func (p *Pipeline) Persist(ctx context.Context, res *Result) error {
	out := p.cfg.OutputPath()
	if err := chunkstore.Save(out, res.Chunks); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	p.logger.Info("chunks saved", "path", out, "count", len(res.Chunks))

	if p.cfg.SQLitePath == "" {
		return nil
	}
	st, err := chunkstore.Open(p.cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	defer st.Close()

	if err := st.InsertChunks(ctx, res.Chunks); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := st.RecordSkips(ctx, skipRows(res)); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	p.logger.Info("sqlite export complete", "path", p.cfg.SQLitePath, "chunks", len(res.Chunks), "skipped", len(res.Skipped))
	return nil
}

func skipRows(res *Result) []chunkstore.Skip {
	rows := make([]chunkstore.Skip, 0, len(res.Skipped))
	for _, fe := range res.Skipped {
		reason := ""
		if fe.Err != nil {
			reason = fe.Err.Error()
		}
		rows = append(rows, chunkstore.Skip{
			RunID:     res.RunID,
			Source:    fe.Source,
			Path:      fe.Path,
			Kind:      string(fe.Kind),
			Reason:    reason,
			SkippedAt: res.CrawlDate,
		})
	}
	return rows
}
