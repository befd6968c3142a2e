package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/fanengine/internal/engine"
	"github.com/vk/fanengine/internal/engineerr"
	"github.com/vk/fanengine/internal/model"
	"github.com/vk/fanengine/internal/observer"
	"github.com/vk/fanengine/internal/results"
	"github.com/vk/fanengine/internal/slicectx"
	"github.com/vk/fanengine/internal/value"
)

var errDivisionByZero = errors.New("Division by zero")

func sliceName(i int) string {
	return []string{"s_0", "s_1", "s_2", "s_3", "s_4"}[i]
}

// TestDoubling is spec.md §8 scenario 1: method M(i) = 2*i across five
// slices s_0..s_4.
func TestDoubling(t *testing.T) {
	b := engine.NewBuilder(nil)
	_, err := b.AddLayer("L")
	require.NoError(t, err)

	type args struct {
		I int `json:"i"`
	}
	m, err := model.BindPure[args]("M", nil, func(a args) (value.Value, error) {
		return value.Int(int64(2 * a.I)), nil
	})
	require.NoError(t, err)
	require.NoError(t, b.AddMethod("L", m))

	for i := 0; i < 5; i++ {
		s := model.NewSlice(sliceName(i))
		override := value.NewMapBuilder().Set("i", value.Int(int64(i))).Build()
		s.Invoke("L", "M", &override)
		require.NoError(t, b.AddSlice(s))
	}

	eng, err := b.Build()
	require.NoError(t, err)

	rr := eng.Run(context.Background())
	require.False(t, rr.HasFailures())

	for i := 0; i < 5; i++ {
		sr := rr.Slice(sliceName(i))
		require.NotNil(t, sr)
		mr := sr.MethodResults[results.MethodKey{Layer: "L", Method: "M", Index: 0}]
		require.Nil(t, mr.Err)
		got, ok := mr.Value.Int()
		require.True(t, ok)
		assert.Equal(t, int64(2*i), got)
	}
}

// TestDefaultMerge is spec.md §8 scenario 2: default {timeout:30, retries:3}
// overridden with {retries:5} merges to {timeout:30, retries:5}. The method
// itself echoes its decoded effective args back as its result, so the test
// observes the merge through the same path the scheduler exercises.
func TestDefaultMerge(t *testing.T) {
	b := engine.NewBuilder(nil)
	_, err := b.AddLayer("L")
	require.NoError(t, err)

	type fetchArgs struct {
		Timeout int `json:"timeout"`
		Retries int `json:"retries"`
	}
	def := fetchArgs{Timeout: 30, Retries: 3}
	m, err := model.BindPure[fetchArgs]("fetch", &def, func(a fetchArgs) (value.Value, error) {
		return value.NewMapBuilder().
			Set("timeout", value.Int(int64(a.Timeout))).
			Set("retries", value.Int(int64(a.Retries))).
			Build(), nil
	})
	require.NoError(t, err)
	require.NoError(t, b.AddMethod("L", m))

	override := value.NewMapBuilder().Set("retries", value.Int(5)).Build()
	s := model.NewSlice("s")
	s.Invoke("L", "fetch", &override)
	require.NoError(t, b.AddSlice(s))

	eng, err := b.Build()
	require.NoError(t, err)

	rr := eng.Run(context.Background())
	require.False(t, rr.HasFailures())

	mr := rr.Slice("s").MethodResults[results.MethodKey{Layer: "L", Method: "fetch", Index: 0}]
	require.Nil(t, mr.Err)
	timeout, _ := mr.Value.Get("timeout")
	retries, _ := mr.Value.Get("retries")
	tv, _ := timeout.Int()
	rv, _ := retries.Int()
	assert.Equal(t, int64(30), tv)
	assert.Equal(t, int64(5), rv)
}

// TestDependencyOrdering is spec.md §8 scenario 3: init sets ctx.x=1, build
// reads x and sets ctx.y=x+1, verify asserts ctx.y=2.
func TestDependencyOrdering(t *testing.T) {
	b := engine.NewBuilder(nil)
	_, err := b.AddLayer("init")
	require.NoError(t, err)
	_, err = b.AddLayer("build")
	require.NoError(t, err)
	_, err = b.AddLayer("verify")
	require.NoError(t, err)

	initM, err := model.Bind[struct{}]("set_x", nil, func(sctx *slicectx.Context, _ struct{}) (value.Value, error) {
		sctx.Set("x", value.Int(1))
		return value.Null(), nil
	})
	require.NoError(t, err)
	require.NoError(t, b.AddMethod("init", initM))

	buildM, err := model.Bind[struct{}]("set_y", nil, func(sctx *slicectx.Context, _ struct{}) (value.Value, error) {
		x, err := slicectx.GetAs[int64](sctx, "x")
		if err != nil {
			return value.Null(), err
		}
		sctx.Set("y", value.Int(x+1))
		return value.Null(), nil
	})
	require.NoError(t, err)
	require.NoError(t, b.AddMethod("build", buildM))

	verifyM, err := model.Bind[struct{}]("check_y", nil, func(sctx *slicectx.Context, _ struct{}) (value.Value, error) {
		y, err := slicectx.GetAs[int64](sctx, "y")
		if err != nil {
			return value.Null(), err
		}
		if y != 2 {
			return value.Null(), errors.New("y was not 2")
		}
		return value.Int(y), nil
	})
	require.NoError(t, err)
	require.NoError(t, b.AddMethod("verify", verifyM))

	require.NoError(t, b.Dependency("build", "init"))
	require.NoError(t, b.Dependency("verify", "build"))

	s := model.NewSlice("s")
	s.Invoke("init", "set_x", nil)
	s.Invoke("build", "set_y", nil)
	s.Invoke("verify", "check_y", nil)
	require.NoError(t, b.AddSlice(s))

	eng, err := b.Build()
	require.NoError(t, err)

	rr := eng.Run(context.Background())
	assert.False(t, rr.HasFailures())
}

// TestPerMethodFailureIsolation is spec.md §8 scenario 4.
func TestPerMethodFailureIsolation(t *testing.T) {
	b := engine.NewBuilder(nil)
	_, err := b.AddLayer("calc")
	require.NoError(t, err)

	type divArgs struct {
		A int `json:"a"`
		B int `json:"b"`
	}
	m, err := model.BindPure[divArgs]("divide", nil, func(a divArgs) (value.Value, error) {
		if a.B == 0 {
			return value.Null(), errDivisionByZero
		}
		return value.Int(int64(a.A / a.B)), nil
	})
	require.NoError(t, err)
	require.NoError(t, b.AddMethod("calc", m))

	inputs := [3][2]int{{6, 2}, {6, 0}, {6, 3}}
	for i, in := range inputs {
		s := model.NewSlice(sliceName(i))
		override := value.NewMapBuilder().Set("a", value.Int(int64(in[0]))).Set("b", value.Int(int64(in[1]))).Build()
		s.Invoke("calc", "divide", &override)
		require.NoError(t, b.AddSlice(s))
	}

	eng, err := b.Build()
	require.NoError(t, err)

	rr := eng.Run(context.Background())
	require.True(t, rr.HasFailures())
	assert.Equal(t, 1, rr.FailedMethods())
	assert.Equal(t, 2, rr.SuccessfulMethods())

	failSlice := rr.Slice(sliceName(1))
	mr := failSlice.MethodResults[results.MethodKey{Layer: "calc", Method: "divide", Index: 0}]
	require.Error(t, mr.Err)
	var execErr *engineerr.MethodExecutionFailed
	require.ErrorAs(t, mr.Err, &execErr)
	assert.Equal(t, errDivisionByZero.Error(), errors.Unwrap(execErr).Error())
}

// TestCycleDetection is spec.md §8 scenario 5.
func TestCycleDetection(t *testing.T) {
	b := engine.NewBuilder(nil)
	_, err := b.AddLayer("a")
	require.NoError(t, err)
	_, err = b.AddLayer("b")
	require.NoError(t, err)

	require.NoError(t, b.Dependency("a", "b"))
	require.NoError(t, b.Dependency("b", "a"))

	_, err = b.Build()
	require.Error(t, err)
	var cycleErr *engineerr.DependencyCycle
	require.ErrorAs(t, err, &cycleErr)
}

// TestObserverFanOut is spec.md §8 scenario 6: with one slice containing
// two methods, the event sequence is slice_start, method_start(m1),
// method_complete(m1), method_start(m2), method_complete(m2), slice_complete.
func TestObserverFanOut(t *testing.T) {
	b := engine.NewBuilder(nil)
	_, err := b.AddLayer("L")
	require.NoError(t, err)

	noop := func(struct{}) (value.Value, error) { return value.Null(), nil }
	m1, err := model.BindPure[struct{}]("m1", nil, noop)
	require.NoError(t, err)
	m2, err := model.BindPure[struct{}]("m2", nil, noop)
	require.NoError(t, err)
	require.NoError(t, b.AddMethod("L", m1))
	require.NoError(t, b.AddMethod("L", m2))

	var events []string
	b.Observer(func(bus *observer.Bus) {
		bus.OnSliceStart(func(string) { events = append(events, "slice_start") })
		bus.OnSliceComplete(func(_ string, _ time.Duration) { events = append(events, "slice_complete") })
		bus.OnMethodStart(func(_, _, method string) { events = append(events, "method_start("+method+")") })
		bus.OnMethodComplete(func(o observer.MethodOutcome) { events = append(events, "method_complete("+o.Method+")") })
	})

	require.NoError(t, b.Config(engine.Config{BatchSize: engine.Unbatched, RunFlag: engine.Tracked}))

	s := model.NewSlice("s")
	s.Invoke("L", "m1", nil)
	s.Invoke("L", "m2", nil)
	require.NoError(t, b.AddSlice(s))

	eng, err := b.Build()
	require.NoError(t, err)

	rr := eng.Run(context.Background())
	require.False(t, rr.HasFailures())

	assert.Equal(t, []string{
		"slice_start",
		"method_start(m1)", "method_complete(m1)",
		"method_start(m2)", "method_complete(m2)",
		"slice_complete",
	}, events)
}
