package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"

	"ilnorm/internal/diag"
	"ilnorm/internal/observ"
	"ilnorm/internal/source"
	"ilnorm/internal/trace"
	"ilnorm/internal/transform"
	"ilnorm/internal/unit"
)

// Options configures NormalizeAll.
type Options struct {
	// Jobs bounds concurrent units; <= 0 means GOMAXPROCS.
	Jobs int
	// Pipeline selects passes. Its Reporter and Timer are replaced per unit.
	Pipeline transform.Config
	// Cache, when set, skips units whose content and config were seen before.
	Cache *DiskCache
	// Sink receives progress events from every worker.
	Sink ProgressSink
	// OutDir, when set, receives each normalized unit under its path
	// relative to the deepest directory shared by all inputs.
	OutDir string
	// Reporter, when set, additionally receives every unit's diagnostics as
	// soon as that unit finishes.
	Reporter       diag.Reporter
	MaxDiagnostics int
	// Timings attaches per-unit phase timings as ObsTimings diagnostics.
	Timings bool
}

// UnitResult is the outcome for one unit file.
type UnitResult struct {
	Path    string
	Unit    *unit.Unit
	Result  transform.Result
	Bag     *diag.Bag
	Digest  Digest
	Cached  bool
	Output  string
	Elapsed time.Duration
	Err     error
}

// Report collects the results of NormalizeAll in input order.
type Report struct {
	Units []UnitResult
	// Timer holds every pass of every unit; nil unless Options.Timings.
	Timer *observ.Timer
}

// Changes counts rewrites over all units.
func (r *Report) Changes() int {
	n := 0
	for i := range r.Units {
		n += r.Units[i].Result.Changes()
	}
	return n
}

// Failed counts units that could not be normalized.
func (r *Report) Failed() int {
	n := 0
	for i := range r.Units {
		if r.Units[i].Err != nil {
			n++
		}
	}
	return n
}

// CacheHits counts units served from the disk cache.
func (r *Report) CacheHits() int {
	n := 0
	for i := range r.Units {
		if r.Units[i].Cached {
			n++
		}
	}
	return n
}

// Diagnostics merges all unit bags, sorted.
func (r *Report) Diagnostics() *diag.Bag {
	out := diag.NewBag(0)
	for i := range r.Units {
		if r.Units[i].Bag != nil {
			out.Merge(r.Units[i].Bag)
		}
	}
	out.Sort()
	return out
}

// ListUnitFiles expands directories into the unit files below them
// (.ilu and .json), sorted; plain file arguments are kept as given.
func ListUnitFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isUnitFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

func isUnitFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".ilu" || ext == ".json"
}

// NormalizeAll normalizes every unit file in paths in parallel, one
// goroutine per unit. Units never share mutable state; a failing unit is
// recorded in its UnitResult and does not stop the others. Only
// cancellation of ctx aborts the run.
func NormalizeAll(ctx context.Context, paths []string, opts Options) (*Report, error) {
	report := &Report{Units: make([]UnitResult, len(paths))}
	if len(paths) == 0 {
		return report, nil
	}
	if opts.Timings {
		report.Timer = observ.NewTimer()
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 1000
	}
	var shared diag.Reporter
	if opts.Reporter != nil {
		shared = diag.NewSyncReporter(opts.Reporter)
	}

	ctx, span := trace.StartSpan(ctx, trace.ScopeDriver, "normalize_all")
	defer span.End(fmt.Sprintf("units=%d", len(paths)))

	configHash := ConfigDigest(opts.Pipeline)
	outputs := planOutputs(paths, opts.OutDir)
	for _, p := range paths {
		emit(opts.Sink, Event{Unit: p, Stage: StageLoad, Status: StatusQueued})
	}

	// Настраиваем параллелизм
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			id, err := safecast.Conv[source.UnitID](i + 1)
			if err != nil {
				return fmt.Errorf("too many units: %w", err)
			}
			w := worker{opts: &opts, configHash: configHash, timer: report.Timer, output: outputs[i]}
			res := w.run(gctx, id, path)
			report.Units[i] = res
			if shared != nil {
				for _, d := range res.Bag.Items() {
					shared.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
				}
			}
			if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
				return res.Err
			}
			return nil
		})
	}

	// Ждём завершения всех горутин
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

type worker struct {
	opts       *Options
	configHash Digest
	timer      *observ.Timer
	output     unitOutput
}

func (w *worker) run(ctx context.Context, id source.UnitID, path string) (res UnitResult) {
	start := time.Now()
	res = UnitResult{Path: path, Bag: diag.NewBag(w.opts.MaxDiagnostics)}
	var unitTimer *observ.Timer
	if w.opts.Timings {
		unitTimer = observ.NewTimer()
	}
	defer func() {
		res.Elapsed = time.Since(start)
		status := StatusDone
		switch {
		case res.Err != nil:
			status = StatusError
		case res.Cached:
			status = StatusCached
		}
		if unitTimer != nil {
			appendTimingDiagnostic(res.Bag, timingsOf("unit", path, unitTimer.Report()))
		}
		emit(w.opts.Sink, Event{Unit: path, Stage: StageWrite, Status: status, Err: res.Err, Elapsed: res.Elapsed})
	}()

	emit(w.opts.Sink, Event{Unit: path, Stage: StageLoad, Status: StatusWorking})
	loadPhase := unitTimer.Begin("load")
	data, err := os.ReadFile(path)
	if err != nil {
		unitTimer.End(loadPhase, "error")
		res.Err = err
		res.Bag.Add(diag.NewError(diag.UnitLoadError, source.Span{Unit: id}, "failed to load unit: "+err.Error()))
		return res
	}
	res.Digest = DigestBytes(data)
	key := combineDigest(res.Digest, w.configHash)

	if w.opts.Cache != nil {
		if ok := w.fromCache(id, key, &res); ok {
			unitTimer.End(loadPhase, "cached")
			w.write(id, &res, unitTimer)
			return res
		}
	}

	format, err := unit.FormatForPath(path)
	if err == nil {
		var f *unit.File
		if f, err = unit.Unmarshal(data, format); err == nil {
			res.Unit, err = unit.Decode(f, id)
		}
	}
	unitTimer.End(loadPhase, "")
	if err != nil {
		res.Err = err
		res.Bag.Add(diag.NewError(diag.UnitDecodeError, source.Span{Unit: id}, "failed to decode unit: "+err.Error()))
		return res
	}

	emit(w.opts.Sink, Event{Unit: path, Stage: StageNormalize, Status: StatusWorking})
	cfg := w.opts.Pipeline
	// passes may revisit a node; each remark is kept once
	cfg.Reporter = diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})
	cfg.Timer = unitTimer
	res.Result, err = transform.New(cfg).Run(ctx, res.Unit)
	if err != nil {
		res.Err = err
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			res.Bag.Add(diag.NewError(diag.UnitInvalidTree, source.Span{Unit: id}, err.Error()))
		}
		return res
	}
	if w.timer != nil {
		for _, p := range res.Result.Passes {
			w.timer.Record(p.Pass, p.Elapsed, res.Unit.Name)
		}
	}

	if w.opts.Cache != nil {
		w.toCache(key, path, &res)
	}
	w.write(id, &res, unitTimer)
	return res
}

// fromCache fills res from a cache entry. Broken entries are reported and
// treated as misses.
func (w *worker) fromCache(id source.UnitID, key Digest, res *UnitResult) bool {
	var payload DiskPayload
	ok, err := w.opts.Cache.Get(key, &payload)
	if err == nil && ok && payload.SourceHash != res.Digest {
		err = fmt.Errorf("source hash %s, want %s", payload.SourceHash, res.Digest)
	}
	if err == nil && ok {
		var f unit.File
		if err = msgpack.Unmarshal(payload.Unit, &f); err == nil {
			res.Unit, err = unit.Decode(&f, id)
		}
	}
	if err != nil {
		res.Bag.Add(diag.NewWarning(diag.UnitCacheMismatch, source.Span{Unit: id}, "ignoring cache entry: "+err.Error()))
		res.Unit = nil
		return false
	}
	if !ok {
		return false
	}
	res.Cached = true
	res.Result = resultFromCache(res.Unit.Name, payload.Passes)
	restoreDiags(res.Bag, id, payload.Diags)
	return true
}

func (w *worker) toCache(key Digest, path string, res *UnitResult) {
	f, err := unit.Encode(res.Unit)
	if err != nil {
		return
	}
	data, err := msgpack.Marshal(f)
	if err != nil {
		return
	}
	payload := &DiskPayload{
		Schema:     diskCacheSchemaVersion,
		Name:       res.Unit.Name,
		Path:       path,
		SourceHash: res.Digest,
		ConfigHash: w.configHash,
		Unit:       data,
		Passes:     cachedPasses(res.Result),
		Diags:      cachedDiags(res.Bag),
	}
	if err := w.opts.Cache.Put(key, payload); err != nil {
		res.Bag.Add(diag.NewWarning(diag.UnitCacheMismatch, source.Span{Unit: res.Unit.ID}, "cache write failed: "+err.Error()))
	}
}

func (w *worker) write(id source.UnitID, res *UnitResult, timer *observ.Timer) {
	if w.opts.OutDir == "" || res.Unit == nil {
		return
	}
	emit(w.opts.Sink, Event{Unit: res.Path, Stage: StageWrite, Status: StatusWorking})
	phase := timer.Begin("write")
	out := w.output.path
	var err error
	if out == "" {
		err = fmt.Errorf("output path already taken by %s", w.output.clash)
	} else {
		err = unit.Save(out, res.Unit)
	}
	if err != nil {
		timer.End(phase, "error")
		res.Err = err
		res.Bag.Add(diag.NewError(diag.UnitWriteError, source.Span{Unit: id}, "failed to write unit: "+err.Error()))
		return
	}
	timer.End(phase, "")
	res.Output = out
}
