package grow

import (
	"time"

	"golang.org/x/exp/rand"
)

type options struct {
	samplerFactory SamplerFactory
	seed           uint64
}

// Option customises the accumulators built by NewLeafStats.
type Option func(*options)

// WithSamplerFactory replaces the categorical sampler used by the bootstrap
// finish check.
func WithSamplerFactory(factory SamplerFactory) Option {
	return func(o *options) {
		o.samplerFactory = factory
	}
}

// WithSeed overrides Params.Seed, 0 seeds from the clock.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

func buildOptions(seed uint64, opts []Option) *options {
	o := &options{samplerFactory: CategoricalSampler, seed: seed}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) source() rand.Source {
	seed := o.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.NewSource(seed)
}
