// Package sweep evaluates a function over a list of perturbations, optionally
// in parallel, and always returns results in input order.
package sweep

import (
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options controls how a sweep runs.
type Options struct {
	Parallelism int
	Logger      *zap.SugaredLogger
}

// Option mutates Options.
type Option func(*Options)

// WithParallelism bounds the number of concurrent evaluations. Values below 2
// run the sweep serially.
func WithParallelism(n int) Option {
	return func(o *Options) { o.Parallelism = n }
}

// WithLogger attaches a logger; sweeps log each evaluated point at Debug level.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// Apply folds opts over the defaults.
func Apply(opts []Option) Options {
	o := Options{Parallelism: 1, Logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Each calls fn for every perturbation. out[i] always corresponds to
// perturbations[i]. When several evaluations fail, the error of the lowest
// index is returned so a failing sweep fails the same way on every run.
func Each[T any](perturbations []float64, o Options, fn func(p float64) (T, error)) ([]T, error) {
	out := make([]T, len(perturbations))
	if len(perturbations) == 0 {
		return out, nil
	}

	if o.Parallelism < 2 {
		for i, p := range perturbations {
			v, err := fn(p)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	errs := make([]error, len(perturbations))
	var g errgroup.Group
	g.SetLimit(o.Parallelism)
	for i, p := range perturbations {
		i, p := i, p
		g.Go(func() error {
			out[i], errs[i] = fn(p)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
