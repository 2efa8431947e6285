// SPDX-License-Identifier: MPL-2.0

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"

	"libris-cli/internal/config"
	"libris-cli/internal/scripts"
	"libris-cli/internal/testutil"
)

func newMiniredisStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(testutil.DeferClose(t, s))
	return s, mr
}

func TestRedis_DoScriptLoad(t *testing.T) {
	t.Parallel()

	s, _ := newMiniredisStore(t)
	ctx := context.Background()

	reply, err := s.Do(ctx, "SCRIPT", "LOAD", "return 1")
	if err != nil {
		t.Fatalf("Do(SCRIPT LOAD) error = %v", err)
	}
	sha, ok := reply.(string)
	if !ok || len(sha) != 40 {
		t.Fatalf("Do(SCRIPT LOAD) = %v, want a 40-char SHA1", reply)
	}

	exists, err := s.Client().ScriptExists(ctx, sha).Result()
	if err != nil {
		t.Fatalf("ScriptExists() error = %v", err)
	}
	if len(exists) != 1 || !exists[0] {
		t.Errorf("ScriptExists(%s) = %v, want [true]", sha, exists)
	}
}

func TestRedis_EvalKeys(t *testing.T) {
	t.Parallel()

	s, _ := newMiniredisStore(t)

	got, err := s.Eval(context.Background(), "return KEYS[1] .. ':' .. KEYS[2]", 2, "bar", 7)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if got != "bar:7" {
		t.Errorf("Eval() = %v, want bar:7", got)
	}
}

func TestRedis_EvalArgv(t *testing.T) {
	t.Parallel()

	s, _ := newMiniredisStore(t)

	got, err := s.Eval(context.Background(), "return {KEYS[1], ARGV[1]}", 1, "k", "v")
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if diff := cmp.Diff([]any{"k", "v"}, got); diff != "" {
		t.Errorf("Eval() mismatch (-want +got):\n%s", diff)
	}
}

func TestRedis_EvalWithoutPriorLoad(t *testing.T) {
	t.Parallel()

	s, mr := newMiniredisStore(t)
	mr.Set("greeting", "hello")

	got, err := s.Eval(context.Background(), "return redis.call('GET', KEYS[1])", 1, "greeting")
	if err != nil {
		t.Fatalf("Eval() should fall back to EVAL on NOSCRIPT, got error = %v", err)
	}
	if got != "hello" {
		t.Errorf("Eval() = %v, want hello", got)
	}
}

func TestRedis_EvalScriptErrorPassesThrough(t *testing.T) {
	t.Parallel()

	s, _ := newMiniredisStore(t)

	if _, err := s.Eval(context.Background(), "return redis.call('NOSUCHCOMMAND')", 0); err == nil {
		t.Fatal("Eval() of a failing script should return the server error")
	}
}

func TestRedis_EvalInvalidArgs(t *testing.T) {
	t.Parallel()

	s, _ := newMiniredisStore(t)

	tests := []struct {
		name string
		args []any
	}{
		{"empty", nil},
		{"missing numkeys", []any{"return 1"}},
		{"body not string", []any{42, 0}},
		{"numkeys not integer", []any{"return 1", 1.5}},
		{"numkeys string garbage", []any{"return 1", "two"}},
		{"numkeys too large", []any{"return 1", 2, "only-one"}},
		{"numkeys negative", []any{"return 1", -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := s.Eval(context.Background(), tt.args...)
			if !errors.Is(err, ErrInvalidEvalArgs) {
				t.Errorf("Eval(%v) error = %v, want ErrInvalidEvalArgs", tt.args, err)
			}
		})
	}
}

func TestToKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{"s", "s"},
		{[]byte("b"), "b"},
		{42, "42"},
		{int64(-7), "-7"},
		{uint64(9), "9"},
		{2.5, "2.5"},
		{true, "1"},
		{false, "0"},
		{time.Second, "1s"},
	}

	for _, tt := range tests {
		if got := toKey(tt.in); got != tt.want {
			t.Errorf("toKey(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNew_FromConfig(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	cfg := config.DefaultConfig().Redis
	cfg.Addr = mr.Addr()

	s := New(cfg)
	defer testutil.DeferClose(t, s)()

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestRegistryAgainstMiniredis(t *testing.T) {
	t.Parallel()

	s, mr := newMiniredisStore(t)
	dir := testutil.WriteScriptDir(t, map[string]string{
		"lib/incr.lua": "local function bump(key, by) return redis.call('INCRBY', key, by) end",
		"bump.lua":     "return bump(KEYS[1], tonumber(KEYS[2]))",
		"peek.lua":     "return redis.call('GET', KEYS[1])",
	})

	ctx := context.Background()
	reg, err := scripts.New(ctx, s, dir)
	if err != nil {
		t.Fatalf("scripts.New() error = %v", err)
	}

	for _, name := range reg.Names() {
		script, _ := reg.Lookup(name)
		exists, err := s.Client().ScriptExists(ctx, script.Hash).Result()
		if err != nil {
			t.Fatalf("ScriptExists() error = %v", err)
		}
		if !exists[0] {
			t.Errorf("script %s (%s) should be cached after construction", name, script.Hash)
		}
	}

	got, err := reg.Execute(ctx, "bump", "hits", 5)
	if err != nil {
		t.Fatalf("Execute(bump) error = %v", err)
	}
	if got != int64(5) {
		t.Errorf("Execute(bump) = %#v, want int64(5)", got)
	}

	if v, _ := mr.Get("hits"); v != "5" {
		t.Errorf("hits = %q, want 5", v)
	}

	got, err = reg.Execute(ctx, "peek", "hits")
	if err != nil {
		t.Fatalf("Execute(peek) error = %v", err)
	}
	if got != "5" {
		t.Errorf("Execute(peek) = %#v, want 5", got)
	}
}
