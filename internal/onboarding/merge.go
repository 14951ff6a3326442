package onboarding

import (
	"fmt"
	"strings"
)

// MergeFields folds newly extracted topic values into the existing brief
// fields and returns the merged map. The inputs are not mutated.
//
// Rules:
//   - nil and empty values in updates are skipped; they never erase data.
//   - array values merge as an ordered union: existing items first, then new
//     items not already present.
//   - scalar values overwrite when non-empty.
//   - on a kind mismatch between existing and new, the new value wins.
func MergeFields(existing, updates map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(updates))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range updates {
		if isEmptyValue(v) {
			continue
		}
		newArr, newIsArr := asSlice(v)
		oldArr, oldIsArr := asSlice(merged[k])
		if newIsArr && oldIsArr {
			merged[k] = unionSlices(oldArr, newArr)
			continue
		}
		if newIsArr {
			merged[k] = unionSlices(nil, newArr)
			continue
		}
		merged[k] = v
	}
	return merged
}

func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	default:
		return false
	}
}

func asSlice(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// unionSlices keeps existing order, appends unseen new items, and drops
// empty entries. Equality is by rendered string so "AcmeCo" from two turns
// dedups regardless of the decoder's concrete type.
func unionSlices(existing, incoming []any) []any {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]any, 0, len(existing)+len(incoming))
	add := func(item any) {
		if isEmptyValue(item) {
			return
		}
		key := itemKey(item)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	for _, item := range existing {
		add(item)
	}
	for _, item := range incoming {
		add(item)
	}
	return out
}

func itemKey(item any) string {
	if s, ok := item.(string); ok {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return fmt.Sprintf("%v", item)
}
