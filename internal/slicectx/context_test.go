package slicectx_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/fanengine/internal/engineerr"
	"github.com/vk/fanengine/internal/slicectx"
	"github.com/vk/fanengine/internal/value"
)

func TestContext_GetSet(t *testing.T) {
	c := slicectx.New()
	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("x", value.Int(42))
	v, ok := c.Get("x")
	require.True(t, ok)
	i, _ := v.Int()
	assert.Equal(t, int64(42), i)
}

func TestContext_GetAs_MissingKey(t *testing.T) {
	c := slicectx.New()
	_, err := slicectx.GetAs[int64](c, "nope")
	require.Error(t, err)
	var missing *engineerr.ContextMissingKey
	assert.ErrorAs(t, err, &missing)
}

func TestContext_GetAs_TypeMismatch(t *testing.T) {
	c := slicectx.New()
	c.Set("x", value.String("not-a-number"))
	_, err := slicectx.GetAs[int64](c, "x")
	require.Error(t, err)
	var mismatch *engineerr.ContextTypeMismatch
	assert.ErrorAs(t, err, &mismatch)
}

func TestContext_ConcurrentAccess(t *testing.T) {
	c := slicectx.New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Set("k", value.Int(int64(i)))
			c.Get("k")
		}(i)
	}
	wg.Wait()
}
