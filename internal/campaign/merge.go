package campaign

import (
	"errors"
	"fmt"
)

// DefaultMaxDepth bounds how deeply nested a configuration may be.
const DefaultMaxDepth = 32

// ErrDepthExceeded is returned when a value nests deeper than the merger allows.
var ErrDepthExceeded = errors.New("configuration nesting exceeds maximum depth")

// Merger deep-merges configuration objects.
//
// For every key of the override: when both sides hold an object the two are
// merged recursively; in every other case (scalar, array, null, or no object
// on the base side) the override value replaces the base value. Keys only
// present in the base are carried over. Arrays are opaque and replaced whole.
//
// Neither input is mutated and the result shares no maps or slices with them.
type Merger struct {
	// MaxDepth is the deepest nesting level accepted. The top-level object is
	// level 1. Zero means DefaultMaxDepth.
	MaxDepth int
}

// Merge merges override into base with DefaultMaxDepth.
func Merge(base, override map[string]any) (map[string]any, error) {
	return Merger{}.Merge(base, override)
}

// Merge returns a new object holding override deep-merged into base.
func (m Merger) Merge(base, override map[string]any) (map[string]any, error) {
	return m.merge(base, override, 1)
}

// CheckDepth returns ErrDepthExceeded when v nests deeper than MaxDepth.
func (m Merger) CheckDepth(v any) error {
	_, err := m.copyValue(v, 1)
	return err
}

func (m Merger) maxDepth() int {
	if m.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return m.MaxDepth
}

func (m Merger) merge(base, override map[string]any, depth int) (map[string]any, error) {
	if depth > m.maxDepth() {
		return nil, ErrDepthExceeded
	}

	out := make(map[string]any, len(base)+len(override))

	for k, v := range base {
		if _, overridden := override[k]; overridden {
			continue
		}
		cp, err := m.copyValue(v, depth+1)
		if err != nil {
			return nil, err
		}
		out[k] = cp
	}

	for k, ov := range override {
		if oObj, ok := ov.(map[string]any); ok {
			if bObj, ok := base[k].(map[string]any); ok {
				merged, err := m.merge(bObj, oObj, depth+1)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", k, err)
				}
				out[k] = merged
				continue
			}
		}
		cp, err := m.copyValue(ov, depth+1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = cp
	}

	return out, nil
}

// copyValue deep-copies the container types produced by encoding/json.
// Scalars are immutable and returned as is.
func (m Merger) copyValue(v any, depth int) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		if depth > m.maxDepth() {
			return nil, ErrDepthExceeded
		}
		out := make(map[string]any, len(val))
		for k, inner := range val {
			cp, err := m.copyValue(inner, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = cp
		}
		return out, nil
	case []any:
		if depth > m.maxDepth() {
			return nil, ErrDepthExceeded
		}
		out := make([]any, len(val))
		for i, inner := range val {
			cp, err := m.copyValue(inner, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = cp
		}
		return out, nil
	default:
		return v, nil
	}
}
