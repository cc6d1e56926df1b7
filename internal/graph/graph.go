// Package graph maintains a derived parent/child index over task records.
// The index has no independent lifetime: task ParentID/ChildIDs fields are
// authoritative and the graph is rebuilt from them on load, then mutated in
// lockstep with every relationship change.
package graph

import "github.com/alexanderramin/skiff/internal/domain"

// TaskGraph indexes tasks by their parent and children. All operations are
// total over possibly-missing ids: a missing id yields empty results, never
// an error. Existence checks belong to the caller.
type TaskGraph struct {
	parents  map[string]string   // child id -> parent id
	children map[string][]string // parent id -> ordered child ids
	known    map[string]bool     // every indexed id
}

func New() *TaskGraph {
	g := &TaskGraph{}
	g.reset()
	return g
}

func (g *TaskGraph) reset() {
	g.parents = make(map[string]string)
	g.children = make(map[string][]string)
	g.known = make(map[string]bool)
}

// Rebuild clears the index and re-derives it from each task's ParentID and
// ChildIDs. Dangling child references (a child id with no record in the
// input) are simply not indexed.
func (g *TaskGraph) Rebuild(tasks []*domain.Task) {
	g.reset()
	present := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		present[t.ID] = true
	}
	for _, t := range tasks {
		g.known[t.ID] = true
		if t.ParentID != nil && present[*t.ParentID] {
			g.parents[t.ID] = *t.ParentID
		}
		for _, c := range t.ChildIDs {
			if present[c] && !containsID(g.children[t.ID], c) {
				g.children[t.ID] = append(g.children[t.ID], c)
			}
		}
	}
}

// Add registers an id with no relationships (a root until re-parented).
func (g *TaskGraph) Add(id string) {
	g.known[id] = true
}

// Contains reports whether id is indexed.
func (g *TaskGraph) Contains(id string) bool {
	return g.known[id]
}

// RootIDs returns every indexed id without a parent entry.
func (g *TaskGraph) RootIDs() []string {
	var roots []string
	for id := range g.known {
		if _, ok := g.parents[id]; !ok {
			roots = append(roots, id)
		}
	}
	return roots
}

// ParentID returns the parent of id, or "" if id is a root or unknown.
func (g *TaskGraph) ParentID(id string) string {
	return g.parents[id]
}

// ChildrenIDs returns the ordered children of id; empty if none.
func (g *TaskGraph) ChildrenIDs(id string) []string {
	return append([]string(nil), g.children[id]...)
}

// DescendantIDs returns id followed by all transitive descendants,
// depth-first. A visited set keeps the walk terminating even on malformed
// cyclic input.
func (g *TaskGraph) DescendantIDs(id string) []string {
	if !g.known[id] {
		return nil
	}
	visited := make(map[string]bool)
	var out []string
	var walk func(string)
	walk = func(cur string) {
		if visited[cur] {
			return
		}
		visited[cur] = true
		out = append(out, cur)
		for _, c := range g.children[cur] {
			walk(c)
		}
	}
	walk(id)
	return out
}

// IsAncestor walks the parent chain upward from id and reports whether
// candidate appears before the chain ends. A task is not its own ancestor.
func (g *TaskGraph) IsAncestor(candidate, id string) bool {
	seen := make(map[string]bool)
	cur := id
	for {
		parent, ok := g.parents[cur]
		if !ok || seen[parent] {
			return false
		}
		if parent == candidate {
			return true
		}
		seen[parent] = true
		cur = parent
	}
}

// SetParent detaches id from its current parent (if any) and attaches it
// under newParentID. An empty newParentID makes id a root. Re-setting the
// same parent is a no-op for the children list.
func (g *TaskGraph) SetParent(id, newParentID string) {
	g.known[id] = true
	if old, ok := g.parents[id]; ok {
		g.children[old] = removeID(g.children[old], id)
	}
	if newParentID == "" {
		delete(g.parents, id)
		return
	}
	g.known[newParentID] = true
	g.parents[id] = newParentID
	if !containsID(g.children[newParentID], id) {
		g.children[newParentID] = append(g.children[newParentID], id)
	}
}

// RemoveSubtree removes id and all its descendants from the index,
// children first, detaching id from its parent's child list. It returns
// every removed id.
func (g *TaskGraph) RemoveSubtree(id string) []string {
	if !g.known[id] {
		return nil
	}
	all := g.DescendantIDs(id)
	// Detach the subtree root from its parent before dropping entries.
	if parent, ok := g.parents[id]; ok {
		g.children[parent] = removeID(g.children[parent], id)
	}
	// Children first: reverse of the depth-first ordering.
	removed := make([]string, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		cur := all[i]
		delete(g.parents, cur)
		delete(g.children, cur)
		delete(g.known, cur)
		removed = append(removed, cur)
	}
	return removed
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
