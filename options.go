package mtcomp

import (
	"fmt"

	"github.com/arloliu/mtcomp/codec"
	"github.com/arloliu/mtcomp/errs"
	"github.com/arloliu/mtcomp/internal/options"
	"github.com/arloliu/mtcomp/parallel"
)

// config holds the resolved settings for one compress-or-decompress call.
type config struct {
	codecType    codec.Type
	codec        codec.Codec
	level        int
	windowLen    int
	windowFactor int
	maxWorkers   int
	singleThread bool
	sourceDigest bool
}

// Option represents a functional option for configuring a call.
// This is a type alias for the generic Option interface specialized for the
// call configuration.
type Option = options.Option[*config]

func newConfig(opts ...Option) (*config, error) {
	cfg := &config{
		codecType:    codec.TypeDeflate,
		windowLen:    parallel.DefaultWindowLen,
		windowFactor: parallel.DefaultWindowFactor,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if cfg.codec == nil {
		c, err := codec.Get(cfg.codecType)
		if err != nil {
			return nil, err
		}
		cfg.codec = c
	}

	return cfg, nil
}

// WithCodec selects the codec by type. The default is TypeDeflate, the
// reference codec with whole-stream checksum validation.
func WithCodec(t codec.Type) Option {
	return options.New(func(c *config) error {
		cd, err := codec.Get(t)
		if err != nil {
			return err
		}
		c.codecType = t
		c.codec = cd

		return nil
	})
}

// WithCustomCodec supplies a caller-provided codec implementation.
func WithCustomCodec(cd codec.Codec) Option {
	return options.New(func(c *config) error {
		if cd == nil {
			return fmt.Errorf("custom codec is nil")
		}
		c.codec = cd

		return nil
	})
}

// WithLevel sets the codec compression level. 0 selects the codec default.
func WithLevel(level int) Option {
	return options.NoError(func(c *config) {
		c.level = level
	})
}

// WithWindow sets the partition planner's tuning knobs: windowLen is the
// minimum span a partition boundary may not split, and windowLen*factor is
// the minimum per-worker chunk. Both must be positive.
func WithWindow(windowLen, factor int) Option {
	return options.New(func(c *config) error {
		if windowLen <= 0 || factor <= 0 {
			return errs.ErrInvalidWindow
		}
		c.windowLen = windowLen
		c.windowFactor = factor

		return nil
	})
}

// WithMaxWorkers caps the worker count. A non-positive value (the default)
// means the runtime's available parallelism. Tests use this to simulate
// arbitrary hardware configurations deterministically.
func WithMaxWorkers(n int) Option {
	return options.NoError(func(c *config) {
		c.maxWorkers = n
	})
}

// WithSingleThread forces the single-threaded decode path: the RAP frame is
// skipped and the remainder is decoded with one worker, exactly as a legacy
// decoder would.
func WithSingleThread() Option {
	return options.NoError(func(c *config) {
		c.singleThread = true
	})
}

// WithSourceDigest records an xxHash64 digest of the plaintext in the
// call's Stats, for cheap end-to-end verification of round trips.
func WithSourceDigest() Option {
	return options.NoError(func(c *config) {
		c.sourceDigest = true
	})
}
