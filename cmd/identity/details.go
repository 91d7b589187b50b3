package identity

import "maps"

// Details is the free-form attribute mapping attached to a user.
// Values are JSON scalars (string, number, bool).
type Details map[string]any

// Clone returns an independent copy. A nil Details clones to an empty map.
func (d Details) Clone() Details {
	out := make(Details, len(d))
	maps.Copy(out, d)
	return out
}

// Merge applies patch with merge-patch semantics: every key present in patch
// overwrites the existing value, keys absent from patch are left untouched.
// The receiver is not modified.
func (d Details) Merge(patch Details) Details {
	out := d.Clone()
	maps.Copy(out, patch)
	return out
}
