package spec

import "fmt"

// Merge recursively combines two record maps. Where both define the same
// key at the same level, the value from b wins; nested maps are merged
// key-wise rather than clobbered. a is modified and returned.
func Merge(a, b map[string]any) map[string]any {
	if a == nil {
		a = map[string]any{}
	}
	for k, v := range b {
		if vm, ok := v.(map[string]any); ok {
			am, _ := a[k].(map[string]any)
			a[k] = Merge(am, vm)
		} else {
			a[k] = v
		}
	}
	return a
}

func deepCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			out[k] = deepCopy(val)
		case []any:
			list := make([]any, len(val))
			for i, e := range val {
				if em, ok := e.(map[string]any); ok {
					list[i] = deepCopy(em)
				} else {
					list[i] = e
				}
			}
			out[k] = list
		default:
			out[k] = v
		}
	}
	return out
}

// ResolveInheritance expands "inherit" entries in a spec file in place.
// The top-level map acts as a namespace: a record with inherit: <name>
// becomes the named base record deep-merged with its own entries.
// Inheritance chains of any depth are followed; a cycle or an unknown
// base name is an error.
func ResolveInheritance(d map[string]any) error {
	for name, v := range d {
		rec, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := rec["inherit"]; !ok {
			continue
		}
		resolved, err := resolveRecord(d, name, rec, nil)
		if err != nil {
			return err
		}
		d[name] = resolved
	}
	return nil
}

func resolveRecord(d map[string]any, name string, rec map[string]any, seen []string) (map[string]any, error) {
	baseName, ok := rec["inherit"].(string)
	if !ok {
		return nil, fmt.Errorf("%s: inherit entry must be a record name", name)
	}
	for _, s := range seen {
		if s == baseName {
			return nil, fmt.Errorf("%s: inheritance cycle through %q", name, baseName)
		}
	}

	baseVal, ok := d[baseName]
	if !ok {
		return nil, fmt.Errorf("%s: inherits unknown record %q", name, baseName)
	}
	base, ok := baseVal.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: inherited record %q is not a mapping", name, baseName)
	}

	if _, chained := base["inherit"]; chained {
		var err error
		base, err = resolveRecord(d, baseName, base, append(seen, name))
		if err != nil {
			return nil, err
		}
	}

	child := deepCopy(rec)
	delete(child, "inherit")
	return Merge(deepCopy(base), child), nil
}
