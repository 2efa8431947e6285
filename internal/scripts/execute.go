// SPDX-License-Identifier: MPL-2.0

package scripts

import "context"

// Execute runs the script registered under name with the given positional
// arguments. It issues exactly one Eval call shaped [body, len(args), args...],
// so every argument is passed to the script as a key. Store errors are returned
// unchanged; an unknown name yields a *ScriptNotFoundError without contacting
// the store.
func (r *Registry) Execute(ctx context.Context, name string, args ...any) (any, error) {
	script, ok := r.scripts[name]
	if !ok {
		return nil, &ScriptNotFoundError{Name: name, Available: r.Names()}
	}

	evalArgs := make([]any, 0, len(args)+2)
	evalArgs = append(evalArgs, script.Body, len(args))
	evalArgs = append(evalArgs, args...)

	r.logger.Debug("executing script", "name", name, "args", len(args))
	return r.store.Eval(ctx, evalArgs...)
}

// ExecuteAsync is the callback form of Execute. It returns immediately and
// invokes done exactly once, from another goroutine, with the script result or
// error. Lookup failures are delivered through done as well. No ordering is
// guaranteed between concurrent calls.
func (r *Registry) ExecuteAsync(ctx context.Context, name string, args []any, done func(any, error)) {
	go func() {
		done(r.Execute(ctx, name, args...))
	}()
}
