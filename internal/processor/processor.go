// Package processor sits between the front ends and the stripping engine.
// It validates input, times each run, derives line statistics and caches
// results.
package processor

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/seanhalberthal/uncomment/internal/config"
	"github.com/seanhalberthal/uncomment/internal/logger"
	"github.com/seanhalberthal/uncomment/internal/metrics"
	"github.com/seanhalberthal/uncomment/internal/rules"
	"github.com/seanhalberthal/uncomment/internal/sourcefile"
	"github.com/seanhalberthal/uncomment/internal/stripper"
	"github.com/seanhalberthal/uncomment/internal/types"
)

// Validation errors surfaced to users before the engine runs.
var (
	ErrEmptyInput         = errors.New("no code provided to process")
	ErrNoLanguageSelected = errors.New("please select a language")
	ErrInputTooLarge      = errors.New("input exceeds the size limit")
)

// cacheKey identifies a snippet by language and content digest.
type cacheKey struct {
	language string
	sum      [sha256.Size]byte
}

// Processor runs snippets and files through the stripping engine.
type Processor struct {
	table         rules.Table
	cache         *lru.Cache[cacheKey, string]
	cacheCapacity int
	maxInputBytes int64
	concurrency   int
}

// Option customises a Processor.
type Option func(*Processor)

// WithTable replaces the default rule table.
func WithTable(t rules.Table) Option {
	return func(p *Processor) {
		p.table = t
	}
}

// New creates a processor from the configuration.
func New(cfg *config.Config, opts ...Option) (*Processor, error) {
	p := &Processor{
		table:         rules.Default,
		cacheCapacity: cfg.Cache.Size,
		maxInputBytes: cfg.Limits.MaxInputBytes,
		concurrency:   cfg.Batch.Concurrency,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.cacheCapacity > 0 {
		cache, err := lru.New[cacheKey, string](p.cacheCapacity)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		p.cache = cache
	}
	if p.concurrency < 1 {
		p.concurrency = 1
	}

	return p, nil
}

// Process strips comments from a single snippet.
func (p *Processor) Process(req types.StripRequest) (*types.StripResult, error) {
	lang := rules.Normalize(req.Language)

	if stripper.IsBlank(req.Code) {
		return nil, ErrEmptyInput
	}
	if lang == "" {
		return nil, ErrNoLanguageSelected
	}
	if p.maxInputBytes > 0 && int64(len(req.Code)) > p.maxInputBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrInputTooLarge, len(req.Code), p.maxInputBytes)
	}

	start := time.Now()
	output, cached := p.strip(req.Code, lang)
	elapsed := time.Since(start)

	metricLang, outcome := lang, "ok"
	if !p.table.Has(lang) {
		metricLang, outcome = "unknown", "passthrough"
	}
	metrics.RecordStrip(metricLang, outcome, len(req.Code), elapsed)

	label := p.table.LabelFor(lang)
	ms := roundMillis(elapsed)
	originalLines := len(stripper.SplitLines(req.Code))
	resultLines := stripper.CountNonBlankLines(output)

	return &types.StripResult{
		Output:        output,
		Language:      lang,
		Label:         label,
		ElapsedMillis: ms,
		OriginalLines: originalLines,
		ResultLines:   resultLines,
		Message: fmt.Sprintf("Processed for %s. Time: %.2fms. Lines: %d -> %d.",
			label, ms, originalLines, resultLines),
		Cached: cached,
	}, nil
}

// strip returns the cleaned code and whether it came from the cache.
func (p *Processor) strip(code, lang string) (string, bool) {
	if p.cache == nil {
		return stripper.StripWith(p.table, code, lang), false
	}

	key := cacheKey{language: lang, sum: sha256.Sum256([]byte(code))}
	if out, ok := p.cache.Get(key); ok {
		metrics.RecordCacheLookup(true)
		return out, true
	}
	metrics.RecordCacheLookup(false)

	out := stripper.StripWith(p.table, code, lang)
	p.cache.Add(key, out)
	return out, false
}

// roundMillis converts a duration to milliseconds with two decimals.
func roundMillis(d time.Duration) float64 {
	return math.Round(float64(d.Microseconds())/10) / 100
}

// Supports reports whether a language id has rules.
func (p *Processor) Supports(language string) bool {
	return p.table.Has(rules.Normalize(language))
}

// IDs lists every accepted language id, aliases included.
func (p *Processor) IDs() []string {
	return p.table.IDs()
}

// Languages returns the selectable language catalog.
func (p *Processor) Languages() []types.Language {
	return p.table.Languages()
}

// Status reports version, catalog size and cache usage.
func (p *Processor) Status() types.StatusResponse {
	status := types.StatusResponse{
		Version:   types.Version,
		Languages: len(p.table.Languages()),
		Aliases:   p.table.Aliases(),
		Cache: types.CacheStatus{
			Enabled:  p.cache != nil,
			Capacity: p.cacheCapacity,
		},
	}
	if p.cache != nil {
		status.Cache.Size = p.cache.Len()
	}
	return status
}

// FileOptions configures a batch run over files.
type FileOptions struct {
	Paths     []string
	Language  string
	Recursive bool
	Exts      []string
	Write     bool
}

// StripFiles strips comments from every file named by opts.Paths,
// descending into directories. Per-file failures are reported in the
// result; the returned error covers setup failures and cancellation.
func (p *Processor) StripFiles(ctx context.Context, opts FileOptions) (*types.BatchResult, error) {
	lang := rules.Normalize(opts.Language)
	if lang == "" {
		return nil, ErrNoLanguageSelected
	}
	if !p.table.Has(lang) {
		return nil, fmt.Errorf("%w: %s", rules.ErrUnknownLanguage, lang)
	}

	paths, err := sourcefile.Expand(opts.Paths, opts.Recursive, opts.Exts)
	if err != nil {
		return nil, err
	}

	result := &types.BatchResult{
		Language: lang,
		Files:    make([]types.FileResult, len(paths)),
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			fr := p.stripFile(path, lang, opts.Write)
			mu.Lock()
			result.Files[i] = fr
			if fr.Error != "" {
				result.Failed++
			} else if fr.Changed {
				result.Changed++
			}
			mu.Unlock()
			return nil // Failures are tracked per file
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// stripFile processes a single file, writing it back when asked.
func (p *Processor) stripFile(path, lang string, write bool) types.FileResult {
	fr := types.FileResult{Path: path}

	content, perm, err := sourcefile.Read(path)
	if err != nil {
		fr.Error = err.Error()
		return fr
	}

	start := time.Now()
	out := stripper.StripWith(p.table, content, lang)
	metrics.RecordStrip(lang, "ok", len(content), time.Since(start))

	fr.OriginalLines = len(stripper.SplitLines(content))
	fr.ResultLines = stripper.CountNonBlankLines(out)
	fr.Changed = out != content

	if !write {
		fr.Output = out
		return fr
	}
	if fr.Changed {
		if err := sourcefile.Write(path, out, perm); err != nil {
			logger.Slog().Error("failed to write file", "path", path, "error", err)
			fr.Error = err.Error()
			return fr
		}
		fr.Written = true
	}
	return fr
}
