// Package unionfind implements a disjoint-set forest over non-negative integer labels.
//
// The forest is used by the connected-component scanner to record which
// provisional labels belong to the same component. Only set membership is
// observable: Find returns a representative shared by every member of a set,
// and which member is chosen depends on internal tree shape.
//
// A Forest is not safe for concurrent use. Each extraction owns its own forest.
package unionfind

import (
	"errors"
	"fmt"
)

// ErrUnknownLabel is returned when an operation references a label that was
// never added to the forest.
var ErrUnknownLabel = errors.New("unknown label")

const absent = -1

// Forest is a disjoint-set forest with union by rank and path halving.
//
// Labels are stored densely, so memory grows with the largest label added.
// This suits the scanner, which allocates labels sequentially from zero.
type Forest struct {
	parent []int
	rank   []uint8
	count  int
}

// New returns an empty forest.
func New() *Forest {
	return &Forest{}
}

// Add creates a singleton set for label. Adding a label that already exists
// is a no-op. Negative labels are ignored.
func (f *Forest) Add(label int) {
	if label < 0 {
		return
	}
	for len(f.parent) <= label {
		f.parent = append(f.parent, absent)
		f.rank = append(f.rank, 0)
	}
	if f.parent[label] != absent {
		return
	}
	f.parent[label] = label
	f.count++
}

// Contains reports whether label has been added.
func (f *Forest) Contains(label int) bool {
	return label >= 0 && label < len(f.parent) && f.parent[label] != absent
}

// Len returns the number of labels added so far.
func (f *Forest) Len() int {
	return f.count
}

// Labels returns every added label in ascending order.
func (f *Forest) Labels() []int {
	labels := make([]int, 0, f.count)
	for l, p := range f.parent {
		if p != absent {
			labels = append(labels, l)
		}
	}
	return labels
}

// Find returns the representative of the set containing label.
func (f *Forest) Find(label int) (int, error) {
	if !f.Contains(label) {
		return 0, fmt.Errorf("find %d: %w", label, ErrUnknownLabel)
	}
	for f.parent[label] != label {
		// path halving
		f.parent[label] = f.parent[f.parent[label]]
		label = f.parent[label]
	}
	return label, nil
}

// Union merges the sets containing a and b.
func (f *Forest) Union(a, b int) error {
	ra, err := f.Find(a)
	if err != nil {
		return fmt.Errorf("union: %w", err)
	}
	rb, err := f.Find(b)
	if err != nil {
		return fmt.Errorf("union: %w", err)
	}
	if ra == rb {
		return nil
	}
	switch {
	case f.rank[ra] < f.rank[rb]:
		f.parent[ra] = rb
	case f.rank[ra] > f.rank[rb]:
		f.parent[rb] = ra
	default:
		f.parent[rb] = ra
		f.rank[ra]++
	}
	return nil
}

// Same reports whether a and b are in the same set.
func (f *Forest) Same(a, b int) (bool, error) {
	ra, err := f.Find(a)
	if err != nil {
		return false, err
	}
	rb, err := f.Find(b)
	if err != nil {
		return false, err
	}
	return ra == rb, nil
}
