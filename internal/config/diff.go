package config

// Diff returns the minimal patch moving observed toward desired: every
// desired key whose value differs (recursively) from observed, with the
// desired value. Keys present only in observed are ignored. An empty
// result means the trees are converged.
func Diff(observed, desired Tree) Tree {
	patch := Tree{}

	for key, want := range desired {
		if want.Kind() == KindTree {
			var current Tree
			if have, ok := observed[key]; ok && have.Kind() == KindTree {
				current = have.Tree()
			}
			if sub := Diff(current, want.Tree()); len(sub) > 0 {
				patch[key] = Sub(sub)
			}
			continue
		}
		if have, ok := observed[key]; !ok || !have.Equal(want) {
			patch[key] = want
		}
	}

	return patch
}

// Merge applies a patch onto a tree in place, creating subtrees as
// needed. Used by task implementations to apply Configure payloads.
func Merge(dst Tree, patch Tree) {
	for key, val := range patch {
		if val.Kind() == KindTree {
			sub, ok := dst[key]
			if !ok || sub.Kind() != KindTree {
				dst[key] = Sub(Tree{})
				sub = dst[key]
			}
			Merge(sub.Tree(), val.Tree())
			continue
		}
		dst[key] = val
	}
}
