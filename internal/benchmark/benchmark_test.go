// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"libris-cli/internal/config"
	"libris-cli/internal/scripts"
	"libris-cli/internal/store"
	"libris-cli/internal/testutil"
	"libris-cli/internal/testutil/storetest"
)

const (
	// sampleConfig is a representative config.cue touching every section.
	sampleConfig = `
redis: {
	addr:         "cache.internal:6379"
	db:           2
	dial_timeout: "2s"
	read_timeout: "500ms"
}
scripts: {
	dir:         "/srv/lua"
	extension:   ".lua"
	library_dir: "lib"
	concurrency: 16
}
log: {
	level:  "debug"
	format: "json"
}
`

	sampleLibrary = `
local function key_for(prefix, id)
	return prefix .. ":" .. id
end

local function clamp(n, lo, hi)
	if n < lo then return lo end
	if n > hi then return hi end
	return n
end
`

	sampleScript = `
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local next = clamp(current + 1, 0, 1000)
redis.call('SET', KEYS[1], next)
return next
`
)

// writeScriptTree creates a script directory with n scripts and two library files.
func writeScriptTree(b *testing.B, n int) string {
	b.Helper()

	files := map[string]string{
		"lib/keys.lua":  sampleLibrary,
		"lib/math.lua":  "local function double(n) return n * 2 end\n",
		"lib/README.md": "library code",
	}
	for i := range n {
		files[fmt.Sprintf("script_%03d.lua", i)] = sampleScript
	}
	return testutil.WriteScriptDir(b, files)
}

func BenchmarkConfigParsing(b *testing.B) {
	dir := b.TempDir()
	testutil.MustWriteFile(b, filepath.Join(dir, "config.cue"), sampleConfig)
	provider := config.NewProvider()
	ctx := context.Background()

	b.ResetTimer()
	for b.Loop() {
		if _, err := provider.Load(ctx, config.LoadOptions{ConfigDirPath: dir}); err != nil {
			b.Fatalf("Load failed: %v", err)
		}
	}
}

func BenchmarkCompose(b *testing.B) {
	for _, n := range []int{10, 100} {
		b.Run(fmt.Sprintf("scripts=%d", n), func(b *testing.B) {
			dir := writeScriptTree(b, n)

			b.ResetTimer()
			for b.Loop() {
				c, err := scripts.Compose(dir)
				if err != nil {
					b.Fatalf("Compose failed: %v", err)
				}
				if len(c.Names) != n {
					b.Fatalf("Compose found %d scripts, want %d", len(c.Names), n)
				}
			}
		})
	}
}

func BenchmarkRegistryNew(b *testing.B) {
	dir := writeScriptTree(b, 50)
	ctx := context.Background()

	b.ResetTimer()
	for b.Loop() {
		if _, err := scripts.New(ctx, storetest.New(), dir); err != nil {
			b.Fatalf("New failed: %v", err)
		}
	}
}

func BenchmarkExecute(b *testing.B) {
	dir := writeScriptTree(b, 10)
	ctx := context.Background()
	reg, err := scripts.New(ctx, storetest.New(storetest.WithEvalResult(int64(1), nil)), dir)
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}

	b.ResetTimer()
	for b.Loop() {
		if _, err := reg.Execute(ctx, "script_005", "counter"); err != nil {
			b.Fatalf("Execute failed: %v", err)
		}
	}
}

func BenchmarkFullPipeline(b *testing.B) {
	mr := miniredis.RunT(b)
	s := store.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	b.Cleanup(testutil.DeferClose(b, s))

	dir := writeScriptTree(b, 10)
	ctx := context.Background()

	b.ResetTimer()
	for b.Loop() {
		reg, err := scripts.New(ctx, s, dir)
		if err != nil {
			b.Fatalf("New failed: %v", err)
		}
		if _, err := reg.Execute(ctx, "script_000", "bench:counter"); err != nil {
			b.Fatalf("Execute failed: %v", err)
		}
	}
}
