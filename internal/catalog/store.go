// Package catalog keeps an in-memory index of decoded element sets loaded
// from a bulk TLE source such as CelesTrak. Loading uses a tiered fallback
// strategy: fresh disk cache, network fetch, stale disk cache, and finally a
// small catalog embedded in the binary.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/facebookgo/atomicfile"

	"github.com/large-farva/tle2json/internal/tle"
)

//go:embed sample_tle.txt
var embeddedTLE string

const cacheFile = "catalog_tle.txt"

// Source names reported in Summary.Source.
const (
	SourceCache      = "cache"
	SourceNetwork    = "network"
	SourceStaleCache = "stale_cache"
	SourceEmbedded   = "embedded"
)

// ErrBodyTooLarge is returned when the catalog download exceeds the
// configured byte limit.
var ErrBodyTooLarge = errors.New("catalog response exceeds byte limit")

// Options configures a Store.
type Options struct {
	URL          string
	DataRoot     string
	RefreshHours int
	MaxBodyBytes int64
	Parser       tle.Parser
	CrossCheck   bool
	// FetchRetries is how many times a failed download is retried with
	// exponential backoff before the store falls back to cached data.
	FetchRetries int
	Logger       *log.Logger
	HTTPClient   *http.Client
}

// Store fetches, caches, and indexes a bulk element set catalog. Reads are
// lock-free against the current snapshot; loads are serialized.
type Store struct {
	url      string
	dataRoot string
	maxAge   time.Duration
	maxBody  int64
	parser   tle.Parser
	check    bool
	retries  int
	log      *log.Logger
	client   *http.Client

	// retryWait is the first backoff interval.
	retryWait time.Duration

	loadMu   sync.Mutex
	snapshot atomic.Pointer[Snapshot]
}

// NewStore returns a store for the given options. Nothing is loaded until
// Load or ForceRefresh is called.
func NewStore(opts Options) *Store {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 50 << 20
	}
	return &Store{
		url:       opts.URL,
		dataRoot:  opts.DataRoot,
		maxAge:    time.Duration(opts.RefreshHours) * time.Hour,
		maxBody:   maxBody,
		parser:    opts.Parser,
		check:     opts.CrossCheck,
		retries:   opts.FetchRetries,
		log:       logger,
		client:    client,
		retryWait: 2 * time.Second,
	}
}

// Load walks the fallback chain and replaces the current snapshot with the
// result.
func (s *Store) Load(ctx context.Context) (Summary, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	raw, source, err := s.loadOrFetch(ctx, s.cachePath())
	if err != nil {
		return Summary{}, err
	}
	return s.install(raw, source), nil
}

// ForceRefresh fetches from the network regardless of cache age. Unlike
// Load it does not fall back to cached or embedded data.
func (s *Store) ForceRefresh(ctx context.Context) (Summary, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	body, err := s.fetchFromNetwork(ctx)
	if err != nil {
		return Summary{}, err
	}
	if err := s.writeCache(s.cachePath(), body); err != nil {
		s.log.Printf("catalog: cache write failed: %v", err)
	}
	return s.install(body, SourceNetwork), nil
}

func (s *Store) install(raw, source string) Summary {
	snap, sum := buildSnapshot(raw, source, s.parser, s.check)
	s.snapshot.Store(snap)
	s.log.Printf("catalog: loaded %d element sets from %s (%d rejected)", sum.Accepted, source, sum.Rejected)
	for _, e := range sum.Errors {
		s.log.Printf("catalog: rejected %s", e)
	}
	return sum
}

func (s *Store) cachePath() string {
	return filepath.Join(s.dataRoot, cacheFile)
}

// loadOrFetch walks the four-tier fallback chain to get raw TLE text:
// fresh cache -> network -> stale cache -> embedded data.
func (s *Store) loadOrFetch(ctx context.Context, cachePath string) (string, string, error) {
	// Tier 1: fresh disk cache
	info, err := os.Stat(cachePath)
	if err == nil && time.Since(info.ModTime()) < s.maxAge {
		if b, readErr := os.ReadFile(cachePath); readErr == nil && len(b) > 0 {
			return string(b), SourceCache, nil
		}
	}

	// Tier 2: network fetch
	body, fetchErr := s.fetchFromNetwork(ctx)
	if fetchErr == nil {
		// Cache write failure is non-fatal; we already have the data in memory.
		if err := s.writeCache(cachePath, body); err != nil {
			s.log.Printf("catalog: cache write failed: %v", err)
		}
		return body, SourceNetwork, nil
	}
	s.log.Printf("catalog: fetch failed: %v", fetchErr)

	// Tier 3: stale disk cache
	if b, readErr := os.ReadFile(cachePath); readErr == nil && len(b) > 0 {
		return string(b), SourceStaleCache, nil
	}

	// Tier 4: embedded fallback baked into the binary
	if embeddedTLE != "" {
		return embeddedTLE, SourceEmbedded, nil
	}

	return "", "", fmt.Errorf("all catalog sources exhausted: %w", fetchErr)
}

// fetchFromNetwork downloads the catalog from the configured URL, retrying
// transient failures. Client errors and oversized bodies are not retried.
func (s *Store) fetchFromNetwork(ctx context.Context) (string, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.retryWait
	exp.MaxInterval = 30 * s.retryWait
	var b backoff.BackOff = backoff.WithContext(exp, ctx)
	b = backoff.WithMaxRetries(b, uint64(max(s.retries, 0)))

	return backoff.RetryNotifyWithData(func() (string, error) {
		return s.fetchOnce(ctx)
	}, b, func(err error, wait time.Duration) {
		s.log.Printf("catalog: fetch failed, retrying in %s: %v", wait.Round(time.Millisecond), err)
	})
}

// fetchOnce performs a single download, refusing bodies larger than the byte
// limit.
func (s *Store) fetchOnce(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("catalog fetch returned HTTP %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(b)) > s.maxBody {
		return "", backoff.Permanent(fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, s.maxBody))
	}
	return string(b), nil
}

// writeCache atomically replaces cachePath so readers never see a
// half-written file.
func (s *Store) writeCache(cachePath, data string) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return err
	}

	f, err := atomicfile.New(cachePath, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(data); err != nil {
		_ = f.Abort()
		return err
	}
	return f.Close()
}

// CacheInfo describes the on-disk cache file.
type CacheInfo struct {
	Path      string `json:"path"`
	Exists    bool   `json:"exists"`
	Fresh     bool   `json:"fresh"`
	ModTime   string `json:"mod_time,omitempty"`
	AgeS      int    `json:"age_s"`
	Size      int64  `json:"size"`
	SourceURL string `json:"source_url"`
	MaxAgeH   int    `json:"max_age_hours"`
}

// CacheInfo reports the cache file's presence, age, and freshness.
func (s *Store) CacheInfo() CacheInfo {
	ci := CacheInfo{
		Path:      s.cachePath(),
		SourceURL: s.url,
		MaxAgeH:   int(s.maxAge.Hours()),
	}
	info, err := os.Stat(ci.Path)
	if err != nil {
		return ci
	}
	age := time.Since(info.ModTime())
	ci.Exists = true
	ci.Fresh = age < s.maxAge
	ci.ModTime = info.ModTime().UTC().Format(time.RFC3339)
	ci.AgeS = int(age.Seconds())
	ci.Size = info.Size()
	return ci
}

// Snapshot returns the current snapshot, or nil before the first load.
func (s *Store) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Lookup returns the entry for a catalog number.
func (s *Store) Lookup(catalogNumber int) (Entry, bool) {
	snap := s.snapshot.Load()
	if snap == nil {
		return Entry{}, false
	}
	return snap.Lookup(catalogNumber)
}

// List returns entries whose name contains filter (case-insensitive), in
// catalog order. An empty filter returns everything.
func (s *Store) List(filter string) []Entry {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil
	}
	return snap.List(filter)
}
