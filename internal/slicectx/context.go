// Package slicectx implements the per-slice, thread-safe key/value scratch
// space methods use as shared state within one slice's execution
// (spec.md §3, §4.4).
//
// A Context is created fresh at slice start and dropped at slice end; it
// never outlives its slice and is never shared across slices. Within a
// single slice the engine itself never touches a Context concurrently —
// layer order is a total order and invocations within a layer run
// sequentially (spec.md §4.4) — but the Context is still built on sync.Map
// rather than a plain map, because user method bodies are free to fan out
// further goroutines of their own and read or write the Context from them.
package slicectx

import (
	"fmt"
	"sync"

	"github.com/vk/fanengine/internal/engineerr"
	"github.com/vk/fanengine/internal/value"
)

// Context is a concurrency-safe mapping from string keys to Values, scoped
// to a single slice's execution.
type Context struct {
	store sync.Map // string -> value.Value
}

// New creates a fresh, empty Context for one slice's execution.
func New() *Context {
	return &Context{}
}

// Get performs a snapshot read, cloning the Value out so the caller cannot
// mutate the Context's internal state through the returned Value.
func (c *Context) Get(key string) (value.Value, bool) {
	v, ok := c.store.Load(key)
	if !ok {
		return value.Null(), false
	}
	return v.(value.Value).Clone(), true
}

// Set upserts a key.
func (c *Context) Set(key string, v value.Value) {
	c.store.Store(key, v.Clone())
}

// GetAs performs a Get followed by a decode into out, failing with
// ContextMissingKey if the key was never set, or ContextTypeMismatch if the
// stored Value doesn't decode into out's type.
func GetAs[T any](c *Context, key string) (T, error) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, &engineerr.ContextMissingKey{Key: key}
	}
	var out T
	if err := v.Decode(&out); err != nil {
		return zero, &engineerr.ContextTypeMismatch{
			Key:      key,
			Expected: fmt.Sprintf("%T", out),
			Cause:    err,
		}
	}
	return out, nil
}
