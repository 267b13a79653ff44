package profiler

import (
	"context"

	"github.com/alexander-akhmetov/timekeeper/internal/funcname"
)

// Do runs fn as one instrumented call named name on p. The result and
// error of fn are returned unchanged and a panic in fn keeps unwinding after
// the frame is popped. A nil p uses Default(); an empty name is resolved
// from fn.
func Do[T any](ctx context.Context, p *Profiler, name string, fn func(context.Context) (T, error)) (T, error) {
	p = resolve(p)
	if p.disabled {
		if ctx == nil {
			ctx = context.Background()
		}
		return fn(ctx)
	}
	if name == "" {
		name = funcname.Of(fn)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, f := p.enter(ctx, name)
	returned := false
	defer func() { f.exit(!returned) }()

	v, err := fn(ctx)
	returned = true
	f.Fail(err)
	return v, err
}

// Call is Do for functions that only return an error.
func Call(ctx context.Context, p *Profiler, name string, fn func(context.Context) error) error {
	if name == "" {
		name = funcname.Of(fn)
	}
	_, err := Do(ctx, p, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Wrap returns a function with fn's signature that instruments every
// invocation under name. The name is fixed when Wrap is called, so all
// instantiations of a generic fn share it.
func Wrap[T any](p *Profiler, name string, fn func(context.Context) (T, error)) func(context.Context) (T, error) {
	if name == "" {
		name = funcname.Of(fn)
	}
	return func(ctx context.Context) (T, error) {
		return Do(ctx, p, name, fn)
	}
}

// WrapErr is Wrap for functions that only return an error.
func WrapErr(p *Profiler, name string, fn func(context.Context) error) func(context.Context) error {
	if name == "" {
		name = funcname.Of(fn)
	}
	return func(ctx context.Context) error {
		return Call(ctx, p, name, fn)
	}
}

// Wrap1 is Wrap for functions taking one argument besides the context.
func Wrap1[A, R any](p *Profiler, name string, fn func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
	if name == "" {
		name = funcname.Of(fn)
	}
	return func(ctx context.Context, arg A) (R, error) {
		return Do(ctx, p, name, func(ctx context.Context) (R, error) {
			return fn(ctx, arg)
		})
	}
}
