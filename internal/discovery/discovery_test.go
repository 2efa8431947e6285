// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"io/fs"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"libris-cli/internal/testutil"
)

func identifiers(res *Result) []string {
	ids := make([]string, 0, len(res.Sources))
	for _, src := range res.Sources {
		ids = append(ids, src.Identifier)
	}
	return ids
}

func TestDiscover_SelectsOnlyScriptExtension(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteScriptDir(t, map[string]string{
		"a.lua": "return 1",
		"b.lua": "return 2",
		"c.txt": "not a script",
	})

	res, err := Discover(dir, DefaultExtension)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if diff := cmp.Diff([]string{"a", "b"}, identifiers(res)); diff != "" {
		t.Errorf("identifiers mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscover_ReadsContentsAndPaths(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteScriptDir(t, map[string]string{
		"incr_by.lua": "return redis.call('INCRBY', KEYS[1], KEYS[2])",
	})

	res, err := Discover(dir, DefaultExtension)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(res.Sources) != 1 {
		t.Fatalf("len(Sources) = %d, want 1", len(res.Sources))
	}

	want := ScriptSource{
		FileName:   "incr_by.lua",
		Path:       filepath.Join(dir, "incr_by.lua"),
		Identifier: "incr_by",
		Contents:   "return redis.call('INCRBY', KEYS[1], KEYS[2])",
	}
	if diff := cmp.Diff(want, res.Sources[0]); diff != "" {
		t.Errorf("source mismatch (-want +got):\n%s", diff)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", res.Diagnostics)
	}
}

func TestDiscover_LexicographicOrder(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteScriptDir(t, map[string]string{
		"zeta.lua":  "z",
		"alpha.lua": "a",
		"mid.lua":   "m",
	})

	res, err := Discover(dir, DefaultExtension)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, identifiers(res)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscover_IgnoresLibraryDirectory(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteScriptDir(t, map[string]string{
		"main.lua":       "main",
		"lib/helper.lua": "helper",
	})

	res, err := Discover(dir, DefaultExtension)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if diff := cmp.Diff([]string{"main"}, identifiers(res)); diff != "" {
		t.Errorf("identifiers mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscover_EmptyDirectory(t *testing.T) {
	t.Parallel()

	res, err := Discover(t.TempDir(), DefaultExtension)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(res.Sources) != 0 {
		t.Errorf("len(Sources) = %d, want 0", len(res.Sources))
	}
}

func TestDiscover_MissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := Discover(filepath.Join(t.TempDir(), "missing"), DefaultExtension)
	if err == nil {
		t.Fatal("Discover() on a missing directory should fail")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error should wrap fs.ErrNotExist, got: %v", err)
	}
}

func TestDiscover_DirectoryWithScriptExtensionFails(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteScriptDir(t, map[string]string{
		"ok.lua":          "ok",
		"nested.lua/x.md": "a directory that looks like a script",
	})

	if _, err := Discover(dir, DefaultExtension); err == nil {
		t.Fatal("Discover() should fail when a selected entry cannot be read")
	}
}

func TestDiscover_CaseFoldedCollision(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("case-insensitive filesystems cannot hold both files")
	}

	dir := testutil.WriteScriptDir(t, map[string]string{
		"Counter.lua": "a",
		"counter.lua": "b",
	})

	_, err := Discover(dir, DefaultExtension)
	if err == nil {
		t.Fatal("Discover() should reject identifiers that collide under case folding")
	}
	if !errors.Is(err, ErrScriptCollision) {
		t.Errorf("error should wrap ErrScriptCollision, got: %v", err)
	}

	var collision *ScriptCollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("error should be *ScriptCollisionError, got: %T", err)
	}
	if collision.FirstFile != filepath.Join(dir, "Counter.lua") {
		t.Errorf("FirstFile = %q, want Counter.lua", collision.FirstFile)
	}
	if collision.SecondFile != filepath.Join(dir, "counter.lua") {
		t.Errorf("SecondFile = %q, want counter.lua", collision.SecondFile)
	}
}

func TestDiscover_Diagnostics(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteScriptDir(t, map[string]string{
		".lua":           "no identifier",
		"rate-limit.lua": "dashes are not bare identifiers",
		"ok.lua":         "fine",
	})

	res, err := Discover(dir, DefaultExtension)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if diff := cmp.Diff([]string{"ok", "rate-limit"}, identifiers(res)); diff != "" {
		t.Errorf("identifiers mismatch (-want +got):\n%s", diff)
	}

	codes := make(map[DiagnosticCode]Severity)
	for _, d := range res.Diagnostics {
		codes[d.Code] = d.Severity
	}
	if codes[CodeIdentifierEmpty] != SeverityError {
		t.Errorf("expected %s error diagnostic, got %v", CodeIdentifierEmpty, res.Diagnostics)
	}
	if codes[CodeIdentifierInvalid] != SeverityWarning {
		t.Errorf("expected %s warning diagnostic, got %v", CodeIdentifierInvalid, res.Diagnostics)
	}
}

func TestDiscover_CustomExtension(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteScriptDir(t, map[string]string{
		"a.redis.lua": "a",
		"b.lua":       "b",
	})

	res, err := Discover(dir, ".redis.lua")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, identifiers(res)); diff != "" {
		t.Errorf("identifiers mismatch (-want +got):\n%s", diff)
	}
}

func TestIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"foo.lua", "foo", true},
		{"foo.bar.lua", "foo.bar", true},
		{".lua", "", true},
		{"foo.LUA", "", false},
		{"foolua", "", false},
		{"foo.txt", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Identifier(tt.name, DefaultExtension)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Identifier(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
