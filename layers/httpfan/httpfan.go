// Package httpfan is a worked example domain layer (spec.md §1: "parallel
// API fans"): an impure method issues requests through a single shared
// *resty.Client and declares a default that per-invocation args merge onto;
// the other method demonstrates the pure side of the pure/impure split.
//
// Grounded on modules/http_client's asset/runner split (a long-lived client
// handed to a stateless request runner), generalized from net/http's
// Client/Request pair to resty.dev/v3's fluent request builder. The shared
// client here is a package-level singleton rather than something stashed in
// the slice Context: Context only holds Values (spec.md §3, §4.4), and
// resty.Client is itself safe for concurrent reuse across slices, so there
// is nothing to gain from threading it through per-slice state.
package httpfan

import (
	"fmt"
	"time"

	"resty.dev/v3"

	"github.com/vk/fanengine/internal/engine"
	"github.com/vk/fanengine/internal/model"
	"github.com/vk/fanengine/internal/slicectx"
	"github.com/vk/fanengine/internal/value"
)

// LayerName is the layer these methods are registered under by Register.
const LayerName = "httpfan"

// Register adds the httpfan layer and its two methods ("fetch", "shape") to
// b. It is an app.RegisterLayersFn, suitable for passing straight to
// app.NewApp.
func Register(b *engine.Builder) error {
	if _, err := b.AddLayer(LayerName); err != nil {
		return err
	}
	fetch, err := NewFetchMethod()
	if err != nil {
		return err
	}
	if err := b.AddMethod(LayerName, fetch); err != nil {
		return err
	}
	shape, err := NewShapeMethod()
	if err != nil {
		return err
	}
	return b.AddMethod(LayerName, shape)
}

var sharedClient = resty.New()

const requestCountKey = "httpfan.request_count"

// FetchArgs is the argument record for the "fetch" method: default
// {"timeout_seconds": 10, "method": "GET"}, overridable per invocation.
type FetchArgs struct {
	URL            string `json:"url"`
	Method         string `json:"method"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// DefaultFetchArgs is the method's declared default (spec.md §4.1's
// effective-argument merge base).
var DefaultFetchArgs = FetchArgs{Method: "GET", TimeoutSeconds: 10}

// NewFetchMethod binds the "fetch" method onto layer httpfan.
func NewFetchMethod() (*model.Method, error) {
	return model.Bind("fetch", &DefaultFetchArgs, func(sctx *slicectx.Context, args FetchArgs) (value.Value, error) {
		count, _ := slicectx.GetAs[int64](sctx, requestCountKey)
		sctx.Set(requestCountKey, value.Int(count+1))

		req := sharedClient.R().SetTimeout(time.Duration(args.TimeoutSeconds) * time.Second)

		var resp *resty.Response
		var err error
		switch args.Method {
		case "GET", "":
			resp, err = req.Get(args.URL)
		case "POST":
			resp, err = req.Post(args.URL)
		case "HEAD":
			resp, err = req.Head(args.URL)
		default:
			return value.Null(), fmt.Errorf("httpfan: unsupported method %q", args.Method)
		}
		if err != nil {
			return value.Null(), fmt.Errorf("httpfan: request failed: %w", err)
		}

		return value.NewMapBuilder().
			Set("status_code", value.Int(int64(resp.StatusCode()))).
			Set("body", value.String(resp.String())).
			Set("slice_request_count", value.Int(count+1)).
			Build(), nil
	})
}

// ShapeArgs is the argument record for the pure "shape" method, which
// reduces a fetch result down to a smaller Value without touching the
// network or the slice Context.
type ShapeArgs struct {
	StatusCode int `json:"status_code"`
}

// NewShapeMethod binds the pure "shape" method onto layer httpfan.
func NewShapeMethod() (*model.Method, error) {
	return model.BindPure[ShapeArgs]("shape", nil, func(args ShapeArgs) (value.Value, error) {
		ok := args.StatusCode >= 200 && args.StatusCode < 300
		return value.NewMapBuilder().Set("ok", value.Bool(ok)).Build(), nil
	})
}
