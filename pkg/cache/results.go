package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/depdistill/pkg/analyzer"
	"github.com/matzehuels/depdistill/pkg/observability"
)

const resultKeyType = "result"

// Results stores distilled results in a Cache.
type Results struct {
	Cache Cache
	Keyer Keyer         // default: DefaultKeyer
	TTL   time.Duration // default: DefaultTTL
}

// entry carries the result together with its counters, which the document
// encoding of a Result leaves out.
type entry struct {
	Result *analyzer.Result `json:"result"`
	Stats  analyzer.Stats   `json:"stats"`
}

// Key returns the cache key for graphHash and opts.
func (r *Results) Key(graphHash string, opts ResultKeyOpts) string {
	if r.Keyer == nil {
		return NewDefaultKeyer().ResultKey(graphHash, opts)
	}
	return r.Keyer.ResultKey(graphHash, opts)
}

// Get returns the cached result, or false on a miss. Corrupt entries are
// deleted and reported as misses.
func (r *Results) Get(ctx context.Context, graphHash string, opts ResultKeyOpts) (*analyzer.Result, bool, error) {
	key := r.Key(graphHash, opts)
	var (
		data []byte
		hit  bool
	)
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = r.Cache.Get(ctx, key)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, resultKeyType)
		return nil, false, nil
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.Result == nil {
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, resultKeyType)
		return nil, false, nil
	}
	e.Result.Stats = e.Stats
	observability.Cache().OnCacheHit(ctx, resultKeyType)
	return e.Result, true, nil
}

// Put stores res.
func (r *Results) Put(ctx context.Context, graphHash string, opts ResultKeyOpts, res *analyzer.Result) error {
	data, err := json.Marshal(entry{Result: res, Stats: res.Stats})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	ttl := r.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	key := r.Key(graphHash, opts)
	if err := RetryWithBackoff(ctx, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	}); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, resultKeyType, len(data))
	return nil
}
