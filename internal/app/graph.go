// Package app assembles the demo's reactive graph from configuration: a
// source store fed by the data file, a sink store written by bindings, and
// an aggregate the UI renders.
package app

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/Edward-Lombe/besix/internal/aggregate"
	"github.com/Edward-Lombe/besix/internal/binding"
	"github.com/Edward-Lombe/besix/internal/config"
	"github.com/Edward-Lombe/besix/internal/log"
	"github.com/Edward-Lombe/besix/internal/store"
)

// Graph is the assembled reactive graph.
type Graph struct {
	Source   *store.Store
	Sink     *store.Store
	Board    *aggregate.Aggregate
	Bindings []*binding.Binding
}

// Modifiers is the registry of modifier names usable in binding config.
var Modifiers = map[string]binding.Modifier{
	// first unwraps the sampled []any to its first element.
	"first": func(v any) any {
		if vals, ok := v.([]any); ok && len(vals) > 0 {
			return vals[0]
		}
		return nil
	},
	"double": func(v any) any {
		if n, ok := v.(int); ok {
			return n * 2
		}
		return v
	},
	"sum": func(v any) any {
		total := 0
		if vals, ok := v.([]any); ok {
			for _, x := range vals {
				if n, isInt := x.(int); isInt {
					total += n
				}
			}
		}
		return total
	},
	"stringify": func(v any) any {
		return fmt.Sprint(v)
	},
	"upper": func(v any) any {
		if s, ok := v.(string); ok {
			return strings.ToUpper(s)
		}
		return v
	},
	"join": func(v any) any {
		vals, ok := v.([]any)
		if !ok {
			return v
		}
		parts := make([]string, len(vals))
		for i, x := range vals {
			parts[i] = fmt.Sprint(x)
		}
		return strings.Join(parts, " ")
	},
}

// Option configures graph assembly.
type Option func(*options)

type options struct {
	tracer trace.Tracer
}

// WithTracer records a span per binding run.
func WithTracer(tr trace.Tracer) Option {
	return func(o *options) { o.tracer = tr }
}

// BuildGraph constructs the graph declared by cfg. Every configured
// binding triggers on a key event of the source store, samples source
// keys, folds its named modifiers, and assigns to a sink key.
func BuildGraph(cfg config.Config, opts ...Option) (*Graph, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	g := &Graph{
		Source: store.New(map[string]any{"count": 0}, nil),
		Sink:   store.New(nil, nil),
	}
	g.Board = aggregate.New(g.Source, g.Sink)

	for i, bc := range cfg.Bindings {
		// Config bindings are declared in the flat wire form and go
		// through the same parser external descriptors would.
		flat := binding.FlatDescriptor{
			Triggers:     []any{g.Source, bc.Trigger},
			Destinations: []any{g.Sink, bc.Destination},
		}
		for _, key := range bc.Sources {
			flat.Sources = append(flat.Sources, g.Source, key)
		}
		for _, name := range bc.Modifiers {
			m, ok := Modifiers[name]
			if !ok {
				g.Close()
				return nil, fmt.Errorf("bindings[%d]: unknown modifier %q", i, name)
			}
			flat.Modifiers = append(flat.Modifiers, m)
		}

		desc, err := binding.ParseFlat(flat)
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("bindings[%d]: %w", i, err)
		}

		var bopts []binding.Option
		if o.tracer != nil {
			bopts = append(bopts, binding.WithTracer(o.tracer))
		}
		g.Bindings = append(g.Bindings, binding.New(desc, bopts...))
	}

	log.Info(log.CatBind, "graph assembled", "bindings", len(g.Bindings))
	return g, nil
}

// Close unbinds every binding; the graph stops reacting.
func (g *Graph) Close() {
	for _, b := range g.Bindings {
		b.Unbind()
	}
	g.Bindings = nil
}
