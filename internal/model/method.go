package model

import (
	"fmt"

	"github.com/vk/fanengine/internal/slicectx"
	"github.com/vk/fanengine/internal/value"
)

// Decoder decodes an effective argument Value into a typed argument record,
// returning an untyped `any` the bound Invoke closure knows how to
// re-assert back to its concrete type. Implementations fail with a plain
// error; the scheduler is responsible for wrapping that into
// engineerr.ArgDeserialization with slice/layer/method coordinates.
type Decoder func(v value.Value) (any, error)

// Invoke is the uniform dispatch signature every Method shares, regardless
// of its declared argument type (spec.md §9: "trait-object methods").
// Heterogeneity lives inside the closure captured at Bind time; storage of
// Methods is homogeneous.
//
// sctx is nil for pure methods.
type Invoke func(sctx *slicectx.Context, args any) (value.Value, error)

// Method is a named, typed unit of work within a Layer.
type Method struct {
	Name     string
	Decode   Decoder
	Default  *value.Value // nil if the method declares no default
	Pure     bool
	TypeName string
	Invoke   Invoke
}

// Bind constructs an impure Method (its Invoke receives a slice Context
// handle) from a generically typed argument record and handler function.
// def may be nil if the method declares no default arguments.
func Bind[T any](name string, def *T, fn func(sctx *slicectx.Context, args T) (value.Value, error)) (*Method, error) {
	m := &Method{
		Name:     name,
		Pure:     false,
		TypeName: fmt.Sprintf("%T", *new(T)),
		Decode: func(v value.Value) (any, error) {
			var t T
			if err := v.Decode(&t); err != nil {
				return nil, err
			}
			return t, nil
		},
		Invoke: func(sctx *slicectx.Context, args any) (value.Value, error) {
			t, ok := args.(T)
			if !ok {
				return value.Null(), fmt.Errorf("method %q: internal type assertion failure, got %T", name, args)
			}
			return fn(sctx, t)
		},
	}
	if def != nil {
		encoded, err := value.Encode(*def)
		if err != nil {
			return nil, fmt.Errorf("method %q: failed to encode default arguments: %w", name, err)
		}
		m.Default = &encoded
	}
	return m, nil
}

// BindPure constructs a pure Method: its Invoke never receives a Context
// handle, matching spec.md §3's purity flag.
func BindPure[T any](name string, def *T, fn func(args T) (value.Value, error)) (*Method, error) {
	m, err := Bind[T](name, def, func(_ *slicectx.Context, args T) (value.Value, error) {
		return fn(args)
	})
	if err != nil {
		return nil, err
	}
	m.Pure = true
	return m, nil
}
