// SPDX-License-Identifier: MPL-2.0

package scripts

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"libris-cli/internal/discovery"
)

type (
	// Script is a composed script ready for execution.
	Script struct {
		// Name is the logical identifier callers execute by.
		Name string
		// Body is the prelude, a newline, then the script's own contents.
		Body string
		// Hash is the store's cache handle for Body (SHA1 hex).
		Hash string
		// Source is the file the script was read from.
		Source discovery.ScriptSource
	}

	// Registry maps logical names to composed scripts registered with a Store.
	// It is immutable after New returns.
	Registry struct {
		store       Store
		logger      *log.Logger
		dir         string
		prelude     string
		scripts     map[string]Script
		names       []string
		diagnostics []discovery.Diagnostic
	}
)

// Composition is a script directory read and composed without any store
// interaction. Registry.New builds on it; the CLI uses it directly for
// read-only commands.
type Composition struct {
	Dir         string
	Prelude     string
	Scripts     map[string]Script
	Names       []string
	Diagnostics []discovery.Diagnostic
}

// Compose reads the prelude from dir's library subdirectory, discovers the
// scripts in dir and composes each body. Script hashes are computed locally.
func Compose(dir string, opts ...Option) (*Composition, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return compose(dir, o, o.logger.With("dir", dir))
}

func compose(dir string, o options, logger *log.Logger) (*Composition, error) {
	libDir := filepath.Join(dir, o.libraryDir)
	prelude, err := discovery.ReadLibrary(libDir, o.extension)
	if err != nil {
		return nil, err
	}
	logger.Debug("library prelude composed", "path", libDir, "bytes", len(prelude))

	found, err := discovery.Discover(dir, o.extension)
	if err != nil {
		return nil, err
	}
	for _, d := range found.Diagnostics {
		logger.Debug(d.Message, "severity", d.Severity, "code", d.Code, "path", d.Path)
	}

	c := &Composition{
		Dir:         dir,
		Prelude:     prelude,
		Scripts:     make(map[string]Script, len(found.Sources)),
		Names:       make([]string, 0, len(found.Sources)),
		Diagnostics: found.Diagnostics,
	}
	for _, src := range found.Sources {
		body := discovery.Compose(prelude, src.Contents)
		c.Scripts[src.Identifier] = Script{
			Name:   src.Identifier,
			Body:   body,
			Hash:   sha1Hex(body),
			Source: src,
		}
		c.Names = append(c.Names, src.Identifier)
	}
	slices.Sort(c.Names)
	return c, nil
}

// New discovers the scripts in dir, composes each with the prelude read from
// dir's library subdirectory, and registers every composed body with store via
// SCRIPT LOAD. It returns once all registrations have been answered. Any
// filesystem or registration failure aborts construction and no Registry is
// returned.
func New(ctx context.Context, store Store, dir string, opts ...Option) (*Registry, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With("dir", dir)

	c, err := compose(dir, o, logger)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		store:       store,
		logger:      logger,
		dir:         dir,
		prelude:     c.Prelude,
		scripts:     c.Scripts,
		names:       c.Names,
		diagnostics: c.Diagnostics,
	}

	if err := r.register(ctx, o.concurrency); err != nil {
		return nil, err
	}

	logger.Debug("scripts registered", "count", len(r.names))
	return r, nil
}

// register issues one SCRIPT LOAD per composed script and waits for all of them.
func (r *Registry) register(ctx context.Context, limit int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	replies := make([]string, len(r.names))
	for i, name := range r.names {
		body := r.scripts[name].Body
		g.Go(func() error {
			reply, err := r.store.Do(gctx, "SCRIPT", "LOAD", body)
			if err != nil {
				return &RegistrationError{Name: name, Err: err}
			}
			if sha, ok := reply.(string); ok {
				replies[i] = sha
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for i, name := range r.names {
		sha := replies[i]
		if sha == "" {
			continue
		}
		script := r.scripts[name]
		if sha != script.Hash {
			r.logger.Warn("store returned an unexpected script hash",
				"name", name, "local", script.Hash, "store", sha)
		}
		script.Hash = sha
		r.scripts[name] = script
		r.logger.Debug("script loaded", "name", name, "sha", sha)
	}

	return nil
}

// Names returns the registered logical names in sorted order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Len returns the number of registered scripts.
func (r *Registry) Len() int {
	return len(r.names)
}

// Lookup returns the composed script registered under name.
func (r *Registry) Lookup(name string) (Script, bool) {
	s, ok := r.scripts[name]
	return s, ok
}

// Prelude returns the library text prepended to every script.
func (r *Registry) Prelude() string {
	return r.prelude
}

// Dir returns the script directory the registry was built from.
func (r *Registry) Dir() string {
	return r.dir
}

// Diagnostics returns the non-fatal findings from discovery.
func (r *Registry) Diagnostics() []discovery.Diagnostic {
	return slices.Clone(r.diagnostics)
}

// Bodies returns a copy of the name to composed body mapping.
func (r *Registry) Bodies() map[string]string {
	bodies := make(map[string]string, len(r.scripts))
	for name, s := range r.scripts {
		bodies[name] = s.Body
	}
	return bodies
}

// String implements fmt.Stringer for log output.
func (r *Registry) String() string {
	return fmt.Sprintf("scripts.Registry{dir: %s, scripts: %d}", r.dir, len(r.names))
}

func sha1Hex(body string) string {
	sum := sha1.Sum([]byte(body))
	return hex.EncodeToString(sum[:])
}
