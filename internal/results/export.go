package results

import (
	"bytes"

	"github.com/klauspost/compress/gzip"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vk/fanengine/internal/value"
)

// wireMethodResult is the exported shape of one MethodResult: exactly one
// of Value or Err is populated.
type wireMethodResult struct {
	Layer  string       `msgpack:"layer"`
	Method string       `msgpack:"method"`
	Index  int          `msgpack:"index"`
	Value  *value.Value `msgpack:"value,omitempty"`
	Err    string       `msgpack:"error,omitempty"`
}

type wireSliceResults struct {
	Slice      string             `msgpack:"slice"`
	DurationNs int64              `msgpack:"duration_ns"`
	Methods    []wireMethodResult `msgpack:"methods"`
}

// ExportMsgpack serializes every recorded slice's results into a compact
// msgpack document, for external diagnostics or storage (spec.md §4.7's
// analysis surface, extended per the msgpack wiring described in the
// dependency mapping).
func (r *RunResults) ExportMsgpack() ([]byte, error) {
	r.mu.Lock()
	wire := make([]wireSliceResults, 0, len(r.order))
	for _, name := range r.order {
		sr := r.slices[name]
		ws := wireSliceResults{Slice: sr.Slice, DurationNs: int64(sr.Duration)}
		for k, mr := range sr.MethodResults {
			wm := wireMethodResult{Layer: k.Layer, Method: k.Method, Index: k.Index}
			if mr.Err != nil {
				wm.Err = mr.Err.Error()
			} else {
				v := mr.Value
				wm.Value = &v
			}
			ws.Methods = append(ws.Methods, wm)
		}
		wire = append(wire, ws)
	}
	r.mu.Unlock()

	return msgpack.Marshal(wire)
}

// ExportCompressed gzip-compresses the msgpack export, trading a small
// amount of CPU for a meaningfully smaller artifact on large runs.
func (r *RunResults) ExportCompressed() ([]byte, error) {
	raw, err := r.ExportMsgpack()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
