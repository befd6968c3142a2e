package value_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/fanengine/internal/value"
)

func mapOf(pairs ...any) value.Value {
	b := value.NewMapBuilder()
	for i := 0; i+1 < len(pairs); i += 2 {
		b.Set(pairs[i].(string), pairs[i+1].(value.Value))
	}
	return b.Build()
}

func TestMerge_DeepMergeLaw(t *testing.T) {
	def := mapOf("timeout", value.Int(30), "retries", value.Int(3))
	override := mapOf("retries", value.Int(5))

	got := value.Merge(def, override)

	timeout, _ := got.Get("timeout")
	retries, _ := got.Get("retries")
	assert.Equal(t, int64(30), mustInt(t, timeout))
	assert.Equal(t, int64(5), mustInt(t, retries))
}

func TestMerge_RecursesIntoNestedMaps(t *testing.T) {
	def := mapOf("a", mapOf("x", value.Int(1), "y", value.Int(2)))
	override := mapOf("a", mapOf("y", value.Int(99)))

	got := value.Merge(def, override)
	a, _ := got.Get("a")
	x, _ := a.Get("x")
	y, _ := a.Get("y")
	assert.Equal(t, int64(1), mustInt(t, x))
	assert.Equal(t, int64(99), mustInt(t, y))
}

func TestMerge_NonMappingReplacesWholesale(t *testing.T) {
	def := mapOf("a", value.List(value.Int(1), value.Int(2)))
	override := mapOf("a", value.List(value.Int(9)))

	got := value.Merge(def, override)
	a, _ := got.Get("a")
	items, ok := a.List()
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, int64(9), mustInt(t, items[0]))
}

func TestMerge_OnlyDefault(t *testing.T) {
	def := mapOf("a", value.Int(1))
	got := value.Merge(def, value.EmptyMap())
	a, _ := got.Get("a")
	assert.Equal(t, int64(1), mustInt(t, a))
}

func TestMerge_OnlyOverride(t *testing.T) {
	override := mapOf("a", value.Int(1))
	got := value.Merge(value.EmptyMap(), override)
	a, _ := got.Get("a")
	assert.Equal(t, int64(1), mustInt(t, a))
}

func mustInt(t *testing.T, v value.Value) int64 {
	t.Helper()
	i, ok := v.Int()
	require.True(t, ok, "expected int, got kind %v", v.Kind())
	return i
}

type fetchArgs struct {
	Timeout int `json:"timeout"`
	Retries int `json:"retries"`
}

func TestRoundTrip_DecodeEncode(t *testing.T) {
	original := mapOf("timeout", value.Int(30), "retries", value.Int(3))

	var decoded fetchArgs
	require.NoError(t, original.Decode(&decoded))
	assert.Equal(t, 30, decoded.Timeout)
	assert.Equal(t, 3, decoded.Retries)

	reEncoded, err := value.Encode(decoded)
	require.NoError(t, err)

	merged := value.Merge(reEncoded, value.EmptyMap())
	if diff := cmp.Diff(original.ToNative(), merged.ToNative()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_PreservesKeyOrder(t *testing.T) {
	v := mapOf("z", value.Int(1), "a", value.Int(2), "m", value.Int(3))
	data, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":2,"m":3}`, string(data))

	var parsed value.Value
	require.NoError(t, parsed.UnmarshalJSON(data))
	assert.Equal(t, []string{"z", "a", "m"}, parsed.Keys())
}

func TestMsgpack_RoundTrips(t *testing.T) {
	original := mapOf(
		"name", value.String("alice"),
		"tags", value.List(value.String("a"), value.String("b")),
		"nested", mapOf("ok", value.Bool(true)),
	)

	data, err := value.EncodeMsgpackBytes(original)
	require.NoError(t, err)

	decoded, err := value.DecodeMsgpackBytes(data)
	require.NoError(t, err)

	assert.True(t, value.Equal(original, decoded))
}

func TestEqual_MapOrderSignificant(t *testing.T) {
	a := mapOf("x", value.Int(1), "y", value.Int(2))
	b := mapOf("y", value.Int(2), "x", value.Int(1))
	assert.False(t, value.Equal(a, b))
}
