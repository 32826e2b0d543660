package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"photodup/config"
	"photodup/dedup"
	"photodup/hasher"
	"photodup/logger"
	"photodup/metadata"
	"photodup/output"
	"photodup/tracing"
	"photodup/utils"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"
)

// Result is everything one scan produced, ready for the report model.
type Result struct {
	Root        string
	Strategy    dedup.Strategy
	Algorithm   string
	Verified    bool
	Records     []dedup.FileRecord
	Groups      []*dedup.Group
	Diagnostics []dedup.Diagnostic
	Census      []dedup.FolderCount
}

// ScanFiles enumerates cfg.RootPath, fingerprints the files the configured
// mode accepts and groups them. Per-file failures end up in the result's
// diagnostics; only an invalid root, a bad configuration or cancellation
// return an error.
func ScanFiles(ctx context.Context, cfg *config.Config, metrics *output.Metrics) (*Result, error) {
	strategy, err := dedup.ParseStrategy(cfg.Mode)
	if err != nil {
		return nil, err
	}
	extractor, algorithm, err := newExtractor(strategy, cfg)
	if err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = &output.Metrics{}
	}
	ctx, endTask := tracing.StartTask(ctx, "scan")
	defer endTask()
	tracing.Log(ctx, "mode", strategy.String())
	root, err := filepath.Abs(cfg.RootPath)
	if err != nil {
		return nil, err
	}

	opts := Options{
		Classifier: dedup.NewClassifier(cfg.RawExtensions, cfg.JPEGExtensions),
		Matcher:    utils.NewPatternMatcher(cfg.IncludePatterns, cfg.ExcludePatterns),
		SkipHidden: cfg.SkipHidden,
		SniffTypes: cfg.SniffTypes,
	}
	if cfg.OutputFileName != "" {
		if out, err := filepath.Abs(cfg.OutputFileName); err == nil && utils.IsPathWithin(out, []string{root}) {
			opts.Skip = append(opts.Skip, out)
		}
	}

	logger.Infof("Enumerating files under %s", root)
	endRegion := tracing.StartRegion(ctx, "enumerate")
	records, diags, err := Enumerate(ctx, root, opts)
	endRegion()
	if err != nil {
		return nil, err
	}
	metrics.FilesScanned = len(records)
	logger.Infof("Total files found: %d", len(records))

	candidates := make([]dedup.FileRecord, 0, len(records))
	for _, rec := range records {
		if strategy.Accepts(rec) {
			candidates = append(candidates, rec)
		}
	}
	metrics.FilesConsidered = len(candidates)
	if strategy == dedup.StrategyContentHash && cfg.SizePrefilter {
		shared := dedup.SharedSizes(candidates)
		metrics.SkippedUniqueSize = len(candidates) - len(shared)
		candidates = shared
		logger.Debugf("Size prefilter skipped %d files", metrics.SkippedUniqueSize)
	}

	adjustConcurrency(cfg)
	endRegion = tracing.StartRegion(ctx, "fingerprint")
	results, err := fingerprint(ctx, cfg, extractor, candidates)
	endRegion()
	if err != nil {
		return nil, err
	}

	entries, extractDiags := dedup.Collect(results)
	diags = append(diags, extractDiags...)
	metrics.FilesFingerprinted = len(entries)

	all := dedup.GroupBy(entries)
	if strategy == dedup.StrategyCrossFormat {
		metrics.SingleCategoryBuckets = dedup.SingleCategory(all)
	}
	groups := dedup.Retained(strategy, all)

	verified := false
	if cfg.VerifyContent && strategy == dedup.StrategyContentHash {
		logger.Infof("Verifying %d groups byte for byte", len(groups))
		var verifyDiags []dedup.Diagnostic
		endRegion = tracing.StartRegion(ctx, "verify")
		groups, verifyDiags = dedup.Verify(strategy, groups, compareContent)
		endRegion()
		diags = append(diags, verifyDiags...)
		verified = true
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, d := range diags {
		logger.WithField("path", d.Path).Warnf("%s: %s", d.Kind, d.Message)
	}

	res := &Result{
		Root:        root,
		Strategy:    strategy,
		Algorithm:   algorithm,
		Verified:    verified,
		Records:     records,
		Groups:      groups,
		Diagnostics: diags,
	}
	if cfg.FolderCensus {
		res.Census = dedup.Census(root, records)
	}
	logger.Infof("Found %d duplicate groups", len(groups))
	return res, nil
}

func newExtractor(strategy dedup.Strategy, cfg *config.Config) (*dedup.Extractor, string, error) {
	ex := &dedup.Extractor{Strategy: strategy, AllowEmptySignature: cfg.AllowEmptySignature}
	switch strategy {
	case dedup.StrategyContentHash:
		h, err := hasher.New(cfg.HashAlgorithm, cfg.HashReadMode, cfg.MmapMinSize)
		if err != nil {
			return nil, "", err
		}
		ex.Digester = h
		return ex, h.Algorithm(), nil
	case dedup.StrategyMetadata, dedup.StrategyNameMetadata:
		ex.Metadata = metadata.Reader{MaxBytes: cfg.MetadataMaxBytes}
	}
	return ex, "", nil
}

// fingerprint runs the extractor over candidates on a bounded worker pool.
// Each worker fills its own buffer; the merged results are unordered.
func fingerprint(ctx context.Context, cfg *config.Config, ex *dedup.Extractor, candidates []dedup.FileRecord) ([]dedup.Result, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	bar := newProgressBar(cfg, len(candidates))

	progressCh := make(chan int, max(cfg.ConcurrencyLevel*4, 64))
	var progressWG sync.WaitGroup
	progressWG.Add(1)
	go func() {
		defer progressWG.Done()
		for delta := range progressCh {
			_ = bar.Add(delta)
		}
	}()

	var ioLimiter *rate.Limiter
	if cfg.MaxIOPerSecond > 0 {
		ioLimiter = rate.NewLimiter(rate.Limit(cfg.MaxIOPerSecond), cfg.MaxIOPerSecond)
	}

	filesChan := make(chan dedup.FileRecord, cfg.ConcurrencyLevel)
	go func() {
		defer close(filesChan)
		for _, rec := range candidates {
			if ioLimiter != nil {
				if err := ioLimiter.Wait(ctx); err != nil {
					return
				}
			}
			select {
			case <-ctx.Done():
				return
			case filesChan <- rec:
			}
		}
	}()

	buffers := make([][]dedup.Result, cfg.ConcurrencyLevel)
	var wg sync.WaitGroup
	for i := range cfg.ConcurrencyLevel {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range filesChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				fp, err := ex.Extract(rec)
				if err != nil {
					logger.Debugf("Skipping %s: %v", rec.Path, err)
				}
				buffers[i] = append(buffers[i], dedup.Result{Record: rec, Fingerprint: fp, Err: err})
				progressCh <- 1
			}
		}()
	}

	wg.Wait()
	close(progressCh)
	progressWG.Wait()
	_ = bar.Finish()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := make([]dedup.Result, 0, len(candidates))
	for _, buf := range buffers {
		results = append(results, buf...)
	}
	return results, nil
}

// compareContent attributes read failures to the file that failed rather
// than the member being placed.
func compareContent(a, b string) (bool, error) {
	same, err := hasher.SameContent(a, b)
	if err != nil {
		var pe *fs.PathError
		if errors.As(err, &pe) {
			return false, &dedup.ExtractionError{Kind: dedup.KindReadError, Path: pe.Path, Err: err}
		}
		return false, err
	}
	return same, nil
}

func newProgressBar(cfg *config.Config, total int) *progressbar.ProgressBar {
	if cfg.SkipCount {
		return progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Fingerprinting files"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetVisibility(progressVisible()),
			progressbar.OptionFullWidth(),
		)
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Fingerprinting files"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetVisibility(progressVisible()),
		progressbar.OptionFullWidth(),
	)
}

func adjustConcurrency(cfg *config.Config) {
	if cfg.ConcurrencySet && cfg.ConcurrencyLevel > 0 {
		return
	}
	numCPU := runtime.NumCPU()
	switch cfg.NiceLevel {
	case "high":
		cfg.ConcurrencyLevel = numCPU
	case "low":
		cfg.ConcurrencyLevel = 1
	default:
		cfg.ConcurrencyLevel = numCPU / 2
	}
	if cfg.ConcurrencyLevel < 1 {
		cfg.ConcurrencyLevel = 1
	}
}

func progressVisible() bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv("PHOTODUP_DISABLE_PROGRESS")))
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
