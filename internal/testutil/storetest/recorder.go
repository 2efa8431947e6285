// SPDX-License-Identifier: MPL-2.0

package storetest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"sync"
)

type (
	// Option configures a Recorder.
	Option func(*Recorder)

	// Recorder records every Do and Eval call. It mimics SCRIPT LOAD by
	// replying with the SHA1 hex digest of the loaded body. Safe for
	// concurrent use.
	Recorder struct {
		mu        sync.Mutex
		doCalls   [][]any
		evalCalls [][]any

		doFunc   func(args []any) (any, error)
		evalFunc func(args []any) (any, error)
	}
)

// New creates a Recorder with the given options.
func New(opts ...Option) *Recorder {
	r := &Recorder{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithDo overrides the reply to raw commands.
func WithDo(fn func(args []any) (any, error)) Option {
	return func(r *Recorder) { r.doFunc = fn }
}

// WithLoadError makes every SCRIPT LOAD fail with err.
func WithLoadError(err error) Option {
	return WithDo(func(args []any) (any, error) {
		if IsScriptLoad(args) {
			return nil, err
		}
		return "OK", nil
	})
}

// WithEval overrides the reply to Eval calls.
func WithEval(fn func(args []any) (any, error)) Option {
	return func(r *Recorder) { r.evalFunc = fn }
}

// WithEvalResult makes every Eval return v and err.
func WithEvalResult(v any, err error) Option {
	return WithEval(func([]any) (any, error) { return v, err })
}

// Do records a raw command.
func (r *Recorder) Do(_ context.Context, args ...any) (any, error) {
	r.mu.Lock()
	r.doCalls = append(r.doCalls, append([]any(nil), args...))
	fn := r.doFunc
	r.mu.Unlock()

	if fn != nil {
		return fn(args)
	}
	if IsScriptLoad(args) {
		if body, ok := args[2].(string); ok {
			return SHA1(body), nil
		}
	}
	return "OK", nil
}

// Eval records an evaluate call.
func (r *Recorder) Eval(_ context.Context, args ...any) (any, error) {
	r.mu.Lock()
	r.evalCalls = append(r.evalCalls, append([]any(nil), args...))
	fn := r.evalFunc
	r.mu.Unlock()

	if fn != nil {
		return fn(args)
	}
	return nil, nil
}

// DoCalls returns a copy of every raw command received.
func (r *Recorder) DoCalls() [][]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]any(nil), r.doCalls...)
}

// EvalCalls returns a copy of every Eval call received.
func (r *Recorder) EvalCalls() [][]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]any(nil), r.evalCalls...)
}

// LoadedBodies returns the bodies of every SCRIPT LOAD received, in arrival order.
func (r *Recorder) LoadedBodies() []string {
	var bodies []string
	for _, call := range r.DoCalls() {
		if !IsScriptLoad(call) {
			continue
		}
		if body, ok := call[2].(string); ok {
			bodies = append(bodies, body)
		}
	}
	return bodies
}

// IsScriptLoad reports whether args spell SCRIPT LOAD <body>.
func IsScriptLoad(args []any) bool {
	if len(args) != 3 {
		return false
	}
	cmd, ok1 := args[0].(string)
	sub, ok2 := args[1].(string)
	return ok1 && ok2 && strings.EqualFold(cmd, "SCRIPT") && strings.EqualFold(sub, "LOAD")
}

// SHA1 returns the hex digest Redis assigns to body.
func SHA1(body string) string {
	sum := sha1.Sum([]byte(body))
	return hex.EncodeToString(sum[:])
}
