package content

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Diff lists the top-level sections that differ between two trees, ignoring
// the _lastModified stamp, and a one-line summary for the audit log.
func Diff(before, after Tree) ([]string, string) {
	keys := map[string]bool{}
	for k := range before {
		keys[k] = true
	}
	for k := range after {
		keys[k] = true
	}

	changed := []string{}
	for k := range keys {
		if k == LastModifiedKey {
			continue
		}
		if !reflect.DeepEqual(before[k], after[k]) {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)

	switch len(changed) {
	case 0:
		return changed, "no changes"
	case 1:
		return changed, "updated " + changed[0]
	default:
		return changed, fmt.Sprintf("%d sections changed: %s", len(changed), strings.Join(changed, ", "))
	}
}

// Equal reports whether two trees match, ignoring _lastModified.
func Equal(a, b Tree) bool {
	changed, _ := Diff(a, b)
	return len(changed) == 0
}
