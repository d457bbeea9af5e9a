package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"ilnorm/internal/diag"
	"ilnorm/internal/source"
	"ilnorm/internal/transform"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит нормализованные юниты по ключу H(содержимое || конфиг).
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload stores one normalized unit together with what the pipeline
// reported while producing it.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Name string
	Path string

	SourceHash Digest
	ConfigHash Digest

	// Unit is the normalized unit in msgpack unit-file form.
	Unit []byte

	Passes []CachedPass
	Diags  []CachedDiag
}

// CachedPass mirrors transform.PassResult without the timing.
type CachedPass struct {
	Name    string
	Visited int
	Changed int
	Skipped int
}

// CachedDiag is a diagnostic with its span flattened.
type CachedDiag struct {
	Code     uint16
	Severity uint8
	Message  string
	Start    uint32
	End      uint32
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt uses dir as the cache root.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	// все записи лежат в подкаталоге "units"
	return filepath.Join(c.dir, "units", key.String()+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache. A payload with
// another schema version counts as a miss.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

func cachedPasses(res transform.Result) []CachedPass {
	out := make([]CachedPass, len(res.Passes))
	for i, p := range res.Passes {
		out[i] = CachedPass{Name: p.Pass, Visited: p.Stats.Visited, Changed: p.Stats.Changed, Skipped: p.Stats.Skipped}
	}
	return out
}

func resultFromCache(name string, passes []CachedPass) transform.Result {
	res := transform.Result{Unit: name, Passes: make([]transform.PassResult, len(passes))}
	for i, p := range passes {
		res.Passes[i] = transform.PassResult{
			Pass:  p.Name,
			Stats: transform.Stats{Visited: p.Visited, Changed: p.Changed, Skipped: p.Skipped},
		}
	}
	return res
}

func cachedDiags(bag *diag.Bag) []CachedDiag {
	items := bag.Items()
	out := make([]CachedDiag, len(items))
	for i, d := range items {
		out[i] = CachedDiag{
			Code:     uint16(d.Code),
			Severity: uint8(d.Severity),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
	}
	return out
}

func restoreDiags(bag *diag.Bag, id source.UnitID, diags []CachedDiag) {
	for _, d := range diags {
		bag.Add(diag.Diagnostic{
			Severity: diag.Severity(d.Severity),
			Code:     diag.Code(d.Code),
			Message:  d.Message,
			Primary:  source.Span{Unit: id, Start: d.Start, End: d.End},
		})
	}
}
