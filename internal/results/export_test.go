package results_test

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vk/fanengine/internal/results"
	"github.com/vk/fanengine/internal/value"
)

func populatedRunResults() *results.RunResults {
	rr := results.New()

	ok := results.NewSliceResults("s_0")
	ok.Duration = 5 * time.Millisecond
	ok.MethodResults[results.MethodKey{Layer: "L", Method: "M", Index: 0}] = results.MethodResult{
		Value: value.NewMapBuilder().Set("status_code", value.Int(200)).Build(),
	}
	rr.Add(ok)

	failed := results.NewSliceResults("s_1")
	failed.Duration = 3 * time.Millisecond
	failed.MethodResults[results.MethodKey{Layer: "L", Method: "M", Index: 0}] = results.MethodResult{
		Err: errors.New("boom"),
	}
	rr.Add(failed)

	return rr
}

// TestExportMsgpack_RoundTrips mirrors value_test's TestMsgpack_RoundTrips:
// serialize a populated RunResults and decode the wire document back,
// asserting the fields that matter to a consumer survive the trip.
func TestExportMsgpack_RoundTrips(t *testing.T) {
	rr := populatedRunResults()

	data, err := rr.ExportMsgpack()
	require.NoError(t, err)

	var decoded []struct {
		Slice      string `msgpack:"slice"`
		DurationNs int64  `msgpack:"duration_ns"`
		Methods    []struct {
			Layer  string       `msgpack:"layer"`
			Method string       `msgpack:"method"`
			Index  int          `msgpack:"index"`
			Value  *value.Value `msgpack:"value,omitempty"`
			Err    string       `msgpack:"error,omitempty"`
		} `msgpack:"methods"`
	}
	require.NoError(t, msgpack.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)

	bySlice := make(map[string]int)
	for i, ws := range decoded {
		bySlice[ws.Slice] = i
	}

	okSlice := decoded[bySlice["s_0"]]
	require.Equal(t, int64(5*time.Millisecond), okSlice.DurationNs)
	require.Len(t, okSlice.Methods, 1)
	require.Empty(t, okSlice.Methods[0].Err)
	require.NotNil(t, okSlice.Methods[0].Value)
	statusCode, ok := okSlice.Methods[0].Value.Get("status_code")
	require.True(t, ok)
	got, ok := statusCode.Int()
	require.True(t, ok)
	require.Equal(t, int64(200), got)

	failSlice := decoded[bySlice["s_1"]]
	require.Len(t, failSlice.Methods, 1)
	require.Equal(t, "boom", failSlice.Methods[0].Err)
	require.Nil(t, failSlice.Methods[0].Value)
}

// TestExportCompressed_RoundTrips verifies ExportCompressed is exactly a
// gzip wrapper around ExportMsgpack's output: decompressing it reproduces
// the same msgpack bytes ExportMsgpack returns directly.
func TestExportCompressed_RoundTrips(t *testing.T) {
	rr := populatedRunResults()

	raw, err := rr.ExportMsgpack()
	require.NoError(t, err)

	compressed, err := rr.ExportCompressed()
	require.NoError(t, err)
	require.Less(t, 0, len(compressed))

	gr, err := gzip.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	decompressed, err := io.ReadAll(gr)
	require.NoError(t, err)
	require.NoError(t, gr.Close())

	require.Equal(t, raw, decompressed)
}
