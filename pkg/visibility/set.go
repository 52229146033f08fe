package visibility

import "github.com/mdressler/bimscope/pkg/ifc"

// Set is a set of entity labels
type Set map[ifc.Label]struct{}

// NewSet creates a set containing the given labels
func NewSet(labels ...ifc.Label) Set {
	s := make(Set, len(labels))
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

// Add inserts a label into the set
func (s Set) Add(label ifc.Label) {
	s[label] = struct{}{}
}

// Has reports whether the label is in the set
func (s Set) Has(label ifc.Label) bool {
	_, ok := s[label]
	return ok
}

// Len returns the number of labels in the set
func (s Set) Len() int {
	return len(s)
}

// Labels returns the set contents as a slice, in no particular order
func (s Set) Labels() []ifc.Label {
	out := make([]ifc.Label, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	return out
}

// ComputeHiddenSet returns all − visible: the labels that must be
// hidden so only the visible ones remain. This is the shape the render
// collaborator consumes (it operates on a hide-list).
func ComputeHiddenSet(all []ifc.Label, visible Set) Set {
	hidden := make(Set)
	for _, l := range all {
		if !visible.Has(l) {
			hidden.Add(l)
		}
	}
	return hidden
}
