package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/depdistill/pkg/analyzer"
	"github.com/matzehuels/depdistill/pkg/observability"
	"github.com/matzehuels/depdistill/pkg/semver"
)

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func sampleResult() *analyzer.Result {
	return &analyzer.Result{
		RootPath: "/src/App.sln",
		Projects: analyzer.Some(analyzer.Project{
			Name: "Web",
			TargetFrameworks: analyzer.Some(analyzer.Framework{
				Name: "net8.0",
				Dependencies: analyzer.Some(analyzer.Dependency{
					Name:    "Newtonsoft.Json",
					Version: semver.MustParse("13.0.1"),
				}),
			}),
		}),
		AllDependencies: analyzer.NewSet("Newtonsoft.Json 13.0.1"),
		Stats:           analyzer.Stats{Projects: 2, Kept: 1, Skipped: 1},
	}
}

func TestResultsRoundTrip(t *testing.T) {
	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	for name, backend := range map[string]func(t *testing.T) Cache{
		"file": func(t *testing.T) Cache {
			c, err := NewFileCache(t.TempDir())
			require.NoError(t, err)
			return c
		},
		"redis": func(t *testing.T) Cache {
			mr := miniredis.RunT(t)
			return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "t:")
		},
	} {
		t.Run(name, func(t *testing.T) {
			*hooks = countingCacheHooks{}
			ctx := context.Background()
			r := &Results{Cache: backend(t)}
			defer r.Cache.Close()
			opts := ResultKeyOpts{Search: "json"}

			_, hit, err := r.Get(ctx, "graph", opts)
			require.NoError(t, err)
			assert.False(t, hit)

			want := sampleResult()
			require.NoError(t, r.Put(ctx, "graph", opts, want))

			got, hit, err := r.Get(ctx, "graph", opts)
			require.NoError(t, err)
			require.True(t, hit)
			assert.Equal(t, want.RootPath, got.RootPath)
			assert.Equal(t, want.Stats, got.Stats)
			assert.Equal(t, want.AllDependencies.Sorted(), got.AllDependencies.Sorted())
			require.Equal(t, 1, got.Projects.Len())
			assert.Equal(t, "Web", got.Projects.Items()[0].Name)

			_, hit, _ = r.Get(ctx, "graph", ResultKeyOpts{Search: "xunit"})
			assert.False(t, hit, "different options must miss")

			assert.Equal(t, 1, hooks.hits)
			assert.Equal(t, 2, hooks.misses)
			assert.Equal(t, 1, hooks.sets)
		})
	}
}

func TestResultsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := &Results{Cache: c}

	key := r.Key("graph", ResultKeyOpts{})
	require.NoError(t, c.Set(ctx, key, []byte(`{"result":{"rootPath":`), 0))

	_, hit, err := r.Get(ctx, "graph", ResultKeyOpts{})
	require.NoError(t, err)
	assert.False(t, hit)
	_, hit, _ = c.Get(ctx, key)
	assert.False(t, hit, "corrupt entry should be deleted")
}

func TestResultsNullCache(t *testing.T) {
	ctx := context.Background()
	r := &Results{Cache: NewNullCache()}
	require.NoError(t, r.Put(ctx, "graph", ResultKeyOpts{}, sampleResult()))
	_, hit, err := r.Get(ctx, "graph", ResultKeyOpts{})
	require.NoError(t, err)
	assert.False(t, hit)
}
