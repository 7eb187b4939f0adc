package derive

import (
	"log/slog"

	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/internal/signal"
)

// AttributeSource looks up flight and aircraft attributes by name.
type AttributeSource interface {
	Attribute(name string) (*signal.Signal, bool)
}

// resolution is the bound input of one node execution.
type resolution struct {
	deps      []*signal.Signal
	frequency float64
	offset    float64
}

// resolve binds desc's dependencies and aligns them to the node's timing.
func resolve(logger *slog.Logger, desc *catalog.NodeDescriptor, results map[string]*signal.Signal, attrs AttributeSource, cache *AlignmentCache) (*resolution, error) {
	deps := make([]*signal.Signal, len(desc.Dependencies))
	found := 0
	for i, name := range desc.Dependencies {
		if s, ok := results[name]; ok {
			deps[i] = s
		} else if s, ok := lookupAttribute(attrs, name); ok {
			deps[i] = s
		} else {
			logger.Debug("Dependency not available", "dependency", name)
			continue
		}
		found++
	}
	if found == 0 {
		return nil, &UnresolvableNodeError{Node: desc.Name, Dependencies: desc.Dependencies}
	}

	frequency, offset, align := timing(desc, deps)
	if align {
		for i, d := range deps {
			if !d.HasTimeAxis() || d.SameTiming(frequency, offset) {
				continue
			}
			aligned, hit := cache.Aligned(d, frequency, offset)
			logger.Debug("Dependency aligned", "dependency", d.Name, "frequency", frequency, "offset", offset, "cached", hit)
			deps[i] = aligned
		}
	}

	return &resolution{deps: deps, frequency: frequency, offset: offset}, nil
}

// timing applies the frequency and offset policy. The boolean reports
// whether dependencies must be aligned at all.
func timing(desc *catalog.NodeDescriptor, deps []*signal.Signal) (float64, float64, bool) {
	var first *signal.Signal
	for _, d := range deps {
		if d.HasTimeAxis() {
			first = d
			break
		}
	}

	if desc.NoAlign || first == nil {
		frequency, offset := 1.0, 0.0
		if desc.Frequency != nil {
			frequency = *desc.Frequency
		}
		if desc.Offset != nil {
			offset = *desc.Offset
		}
		return frequency, offset, false
	}

	switch {
	case desc.Frequency != nil && desc.Offset != nil:
		return *desc.Frequency, *desc.Offset, true
	case desc.Frequency != nil:
		// The inherited offset may exceed the declared rate's period; nodes
		// that care declare both.
		return *desc.Frequency, first.Offset, true
	case desc.Offset != nil:
		return first.Frequency, *desc.Offset, true
	default:
		return first.Frequency, first.Offset, true
	}
}

func lookupAttribute(attrs AttributeSource, name string) (*signal.Signal, bool) {
	if attrs == nil {
		return nil, false
	}
	return attrs.Attribute(name)
}
