package locker

import (
	"cmp"
	"slices"
)

// Lineage indexes a set of lockers by entity id so split ancestry can be walked off-chain.
type Lineage struct {
	byID     map[uint64]*Locker
	children map[uint64][]*Locker
}

func NewLineage(lockers []Locker) *Lineage {
	l := &Lineage{
		byID:     make(map[uint64]*Locker, len(lockers)),
		children: make(map[uint64][]*Locker),
	}
	for i := range lockers {
		locker := &lockers[i]
		l.byID[locker.ID] = locker
		if !locker.IsRoot() {
			l.children[locker.ParentID] = append(l.children[locker.ParentID], locker)
		}
	}
	for _, kids := range l.children {
		slices.SortFunc(kids, func(a, b *Locker) int {
			return cmp.Compare(a.ID, b.ID)
		})
	}
	return l
}

// Get returns the locker with the given entity id, if indexed.
func (l *Lineage) Get(id uint64) (*Locker, bool) {
	locker, ok := l.byID[id]
	return locker, ok
}

// Children returns the lockers split directly off id, ordered by id.
func (l *Lineage) Children(id uint64) []*Locker {
	return l.children[id]
}

// Ancestors returns the chain from id's parent up to its root. The walk stops early at an
// ancestor that is not indexed.
func (l *Lineage) Ancestors(id uint64) []*Locker {
	var out []*Locker
	current, ok := l.byID[id]
	for ok && !current.IsRoot() {
		current, ok = l.byID[current.ParentID]
		if ok {
			out = append(out, current)
		}
	}
	return out
}

// Family returns every indexed locker sharing root, ordered by id.
func (l *Lineage) Family(root uint64) []*Locker {
	var out []*Locker
	for _, locker := range l.byID {
		if locker.Root == root {
			out = append(out, locker)
		}
	}
	slices.SortFunc(out, func(a, b *Locker) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Roots returns the ids of every family present, ascending.
func (l *Lineage) Roots() []uint64 {
	seen := make(map[uint64]struct{})
	for _, locker := range l.byID {
		seen[locker.Root] = struct{}{}
	}
	roots := make([]uint64, 0, len(seen))
	for root := range seen {
		roots = append(roots, root)
	}
	slices.Sort(roots)
	return roots
}
