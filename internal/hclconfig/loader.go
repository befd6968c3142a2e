package hclconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/fanengine/internal/ctxlog"
	"github.com/vk/fanengine/internal/engine"
	"github.com/vk/fanengine/internal/model"
	"github.com/vk/fanengine/internal/value"
)

// Loader parses .hcl files describing slices and dependency edges and
// applies them to an already-layer-populated engine.Builder.
type Loader struct{}

// NewLoader creates a Loader.
func NewLoader() *Loader { return &Loader{} }

// Load parses every path (file or directory, directories are scanned
// non-recursively for *.hcl) and applies the resulting slices and
// dependency edges to b.
func (l *Loader) Load(ctx context.Context, b *engine.Builder, paths ...string) error {
	logger := ctxlog.FromContext(ctx)

	files, err := resolveFiles(paths)
	if err != nil {
		return err
	}
	logger.Debug("hclconfig: resolved files", "count", len(files))

	parser := hclparse.NewParser()
	for _, path := range files {
		hclFile, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return fmt.Errorf("hclconfig: parse %s: %w", path, diags)
		}

		var root file
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return fmt.Errorf("hclconfig: decode %s: %w", path, diags)
		}

		if err := applyFile(&root, b); err != nil {
			return fmt.Errorf("hclconfig: %s: %w", path, err)
		}
	}
	return nil
}

func applyFile(f *file, b *engine.Builder) error {
	if f.InitLayer != nil {
		b.InitLayer(*f.InitLayer)
	}

	for _, dep := range f.Dependencies {
		if err := b.Dependency(dep.Dependent, dep.Prerequisite); err != nil {
			return err
		}
	}

	for _, sb := range f.Slices {
		s := model.NewSlice(sb.Name)
		for _, lb := range sb.Layers {
			for _, ib := range lb.Invocations {
				var override *value.Value
				if ib.Args != nil {
					v, diags := ib.Args.Value(nil)
					if diags.HasErrors() {
						return fmt.Errorf("slice %q layer %q invoke %q: %w", sb.Name, lb.Name, ib.Method, diags)
					}
					// A missing args attribute decodes to a null expression;
					// it keeps the "use default only" sentinel.
					if !v.IsNull() {
						converted, err := ctyToValue(v)
						if err != nil {
							return err
						}
						override = &converted
					}
				}
				s.Invoke(lb.Name, ib.Method, override)
			}
		}
		if err := b.AddSlice(s); err != nil {
			return err
		}
	}
	return nil
}

// resolveFiles expands paths (files or directories) into a flat list of
// .hcl file paths, sorted for deterministic load order.
func resolveFiles(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("hclconfig: %w", err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.hcl"))
		if err != nil {
			return nil, fmt.Errorf("hclconfig: %w", err)
		}
		out = append(out, matches...)
	}
	return out, nil
}
