package allocator

import "github.com/vela-alloc/binalloc/sizeclass"

type config struct {
	classes        []sizeclass.Class
	useThreadCache bool
}

// Option configures an Allocator built by New.
type Option func(*config)

// WithoutThreadCache builds a single global Bins shared by every caller
// instead of a per-goroutine-hashed Thread Cache. This suits a
// freestanding embedding context — e.g. linking cmd/libbinalloc into a
// host process that never expects the allocator to spin up its own
// bucket array.
func WithoutThreadCache() Option {
	return func(c *config) {
		c.useThreadCache = false
	}
}

// WithSizeClasses overrides the default full {4...65536} size-class
// table, e.g. with sizeclass.Reduced for a {4...4096} profile when the
// target workload never needs the larger classes.
func WithSizeClasses(classes []sizeclass.Class) Option {
	return func(c *config) {
		c.classes = classes
	}
}
