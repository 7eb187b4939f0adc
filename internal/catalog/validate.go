package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/flightderive/internal/ctxlog"
	"github.com/specialistvlad/flightderive/internal/signal"
)

// Validate checks every descriptor for declarations the engine cannot honour.
// All problems are collected and reported together.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.names {
		desc := r.nodes[name]

		if desc.Compute == nil {
			errs = append(errs, fmt.Sprintf("node '%s': no compute function", name))
		}
		if len(desc.Dependencies) == 0 {
			errs = append(errs, fmt.Sprintf("node '%s': declares no dependencies", name))
		}
		seen := make(map[string]struct{}, len(desc.Dependencies))
		for _, dep := range desc.Dependencies {
			if dep == name {
				errs = append(errs, fmt.Sprintf("node '%s': depends on itself", name))
			}
			if _, dup := seen[dep]; dup {
				errs = append(errs, fmt.Sprintf("node '%s': dependency '%s' declared twice", name, dep))
			}
			seen[dep] = struct{}{}
		}

		switch desc.Kind {
		case signal.TimeSeries, signal.PointEvent, signal.InstantEvent, signal.Interval, signal.Attribute, signal.ApproachEvent:
		default:
			// Still registered: the engine reports it when the node is reached.
			logger.Warn("Node declares an unsupported kind", "node", name, "kind", desc.Kind.String())
		}

		if desc.Frequency != nil && *desc.Frequency <= 0 {
			errs = append(errs, fmt.Sprintf("node '%s': frequency must be positive, got %g", name, *desc.Frequency))
		}
		if desc.Offset != nil {
			if *desc.Offset < 0 {
				errs = append(errs, fmt.Sprintf("node '%s': offset must not be negative, got %g", name, *desc.Offset))
			}
			if desc.Frequency != nil && *desc.Frequency > 0 && *desc.Offset >= 1 / *desc.Frequency {
				errs = append(errs, fmt.Sprintf("node '%s': offset %g is not smaller than the sample period", name, *desc.Offset))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Catalog validation passed.", "nodes", len(r.nodes), "modules", len(r.modules))
	return nil
}
