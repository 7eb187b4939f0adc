package order

import (
	"context"
	"fmt"

	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/internal/ctxlog"
)

// Provider produces the processing order for a pass.
type Provider interface {
	Order(ctx context.Context, available, requested []string, cat catalog.Catalog) ([]string, error)
}

// Dependency orders nodes by walking their declared dependencies depth first.
type Dependency struct{}

// Order implements Provider. Available names are leaves even when the
// catalog could compute them. A node is kept when at least one of its
// dependencies is kept, mirroring the engine which only rejects a node when
// every dependency is absent.
func (Dependency) Order(ctx context.Context, available, requested []string, cat catalog.Catalog) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	avail := make(map[string]struct{}, len(available))
	for _, name := range available {
		avail[name] = struct{}{}
	}

	g, err := buildGraph(avail, requested, cat)
	if err != nil {
		return nil, err
	}
	if err := g.DetectCycles(); err != nil {
		return nil, fmt.Errorf("failed to order nodes: %w", err)
	}

	active := make(map[string]bool)
	var out []string
	for _, name := range g.PostOrder(requested...) {
		if _, ok := avail[name]; ok {
			active[name] = true
		} else if _, ok := cat.Lookup(name); ok {
			deps, _ := g.Dependencies(name)
			for _, dep := range deps {
				if active[dep] {
					active[name] = true
					break
				}
			}
		}
		if active[name] {
			out = append(out, name)
		}
	}

	var inactive []string
	for _, name := range requested {
		if !active[name] {
			inactive = append(inactive, name)
		}
	}
	if len(inactive) > 0 {
		logger.Warn("Requested parameters cannot be derived from the available data", "count", len(inactive), "names", inactive)
	}
	logger.Debug("Processing order computed.", "available", len(available), "requested", len(requested), "length", len(out))
	return out, nil
}

// buildGraph adds every name reachable from requested through the catalog.
func buildGraph(avail map[string]struct{}, requested []string, cat catalog.Catalog) (*Graph, error) {
	g := NewGraph()
	queue := append([]string(nil), requested...)
	for _, name := range requested {
		g.AddNode(name)
	}

	expanded := make(map[string]bool)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if expanded[name] {
			continue
		}
		expanded[name] = true

		if _, ok := avail[name]; ok {
			continue
		}
		desc, ok := cat.Lookup(name)
		if !ok {
			continue
		}
		for _, dep := range desc.Dependencies {
			if !g.Has(dep) {
				g.AddNode(dep)
			}
			if err := g.AddEdge(dep, name); err != nil {
				return nil, fmt.Errorf("node '%s': %w", name, err)
			}
			queue = append(queue, dep)
		}
	}
	return g, nil
}
