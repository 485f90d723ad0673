// Package tree holds the flattened knowledge tree. Nodes live in an arena keyed
// by id; parent/child structure is a separate index, so attaching lazily
// fetched children is a single map update rather than a rewrite of nested
// slices.
package tree

import (
	"sort"
	"sync"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
)

// Flatten walks the forest depth-first (pre-order) and returns every node once,
// without nested children. A node id seen twice keeps its first occurrence.
// Children inherit their parent id from the nesting when the reply omits it.
func Flatten(forest []learning.KnowledgeNode) []learning.KnowledgeNode {
	out := make([]learning.KnowledgeNode, 0, len(forest))
	seen := make(map[int64]struct{}, len(forest))
	var walk func(nodes []learning.KnowledgeNode, parent *int64)
	walk = func(nodes []learning.KnowledgeNode, parent *int64) {
		for i := range nodes {
			n := nodes[i]
			if n.Parent == nil && parent != nil {
				n.Parent = learning.ParentRef(*parent)
			}
			if _, dup := seen[n.ID]; dup {
				continue
			}
			seen[n.ID] = struct{}{}
			n.Expandable = n.HasExpandableContent()
			out = append(out, n.Shallow())
			if len(n.Children) > 0 {
				walk(n.Children, learning.ParentRef(n.ID))
			}
		}
	}
	walk(forest, nil)
	return out
}

// CountNodes counts every node of a nested forest, duplicates included.
func CountNodes(forest []learning.KnowledgeNode) int {
	total := 0
	for i := range forest {
		total += 1 + CountNodes(forest[i].Children)
	}
	return total
}

// Arena is the page-scoped index over one tree fetch. It is safe for
// concurrent use; Attach is the only mutation.
type Arena struct {
	mu       sync.RWMutex
	order    []int64
	nodes    map[int64]learning.KnowledgeNode
	children map[int64][]int64
	// loaded marks nodes whose child list is authoritative.
	loaded map[int64]bool
}

// NewArena flattens the forest and builds the lookup tables once.
func NewArena(forest []learning.KnowledgeNode) *Arena {
	a := &Arena{
		nodes:    map[int64]learning.KnowledgeNode{},
		children: map[int64][]int64{},
		loaded:   map[int64]bool{},
	}
	hasNested := map[int64]bool{}
	var mark func(nodes []learning.KnowledgeNode)
	mark = func(nodes []learning.KnowledgeNode) {
		for i := range nodes {
			if len(nodes[i].Children) > 0 {
				hasNested[nodes[i].ID] = true
				mark(nodes[i].Children)
			}
		}
	}
	mark(forest)

	for _, n := range Flatten(forest) {
		a.order = append(a.order, n.ID)
		a.nodes[n.ID] = n
	}
	for _, id := range a.order {
		n := a.nodes[id]
		if p, ok := n.ParentID(); ok && p != id {
			a.children[p] = append(a.children[p], id)
		}
	}
	for p := range a.children {
		a.sortChildrenLocked(p)
		if hasNested[p] {
			a.loaded[p] = true
		}
	}
	return a
}

// Empty returns an arena with no nodes.
func Empty() *Arena { return NewArena(nil) }

func (a *Arena) sortChildrenLocked(parent int64) {
	ids := a.children[parent]
	sort.SliceStable(ids, func(i, j int) bool {
		return a.nodes[ids[i]].Order < a.nodes[ids[j]].Order
	})
}

func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.order)
}

func (a *Arena) Node(id int64) (learning.KnowledgeNode, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n, ok := a.nodes[id]
	return n, ok
}

// Nodes returns the flat list in ingestion order.
func (a *Arena) Nodes() []learning.KnowledgeNode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]learning.KnowledgeNode, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.nodes[id])
	}
	return out
}

// Roots returns nodes without a parent, or whose parent is unknown, by order.
func (a *Arena) Roots() []learning.KnowledgeNode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := []learning.KnowledgeNode{}
	for _, id := range a.order {
		n := a.nodes[id]
		p, ok := n.ParentID()
		if !ok {
			out = append(out, n)
			continue
		}
		if _, known := a.nodes[p]; !known {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Domains returns the dashboard domains: parentless nodes or DOMAIN nodes.
func (a *Arena) Domains() []learning.KnowledgeNode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := []learning.KnowledgeNode{}
	for _, id := range a.order {
		n := a.nodes[id]
		if n.IsRoot() || n.NodeType.Normalize() == learning.NodeTypeDomain {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (a *Arena) Children(id int64) []learning.KnowledgeNode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ids := a.children[id]
	out := make([]learning.KnowledgeNode, 0, len(ids))
	for _, cid := range ids {
		out = append(out, a.nodes[cid])
	}
	return out
}

// ChildrenLoaded reports whether the child list of id is authoritative.
func (a *Arena) ChildrenLoaded(id int64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loaded[id] || len(a.children[id]) > 0
}

// Attach records fetched children of parent and marks the list authoritative.
// Re-attaching replaces the previous list; ids never appear twice.
func (a *Arena) Attach(parent int64, kids []learning.KnowledgeNode) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ids := make([]int64, 0, len(kids))
	seen := map[int64]struct{}{}
	for _, k := range Flatten(kids) {
		if k.ID == parent {
			continue
		}
		if k.Parent == nil {
			k.Parent = learning.ParentRef(parent)
		}
		if _, known := a.nodes[k.ID]; !known {
			a.order = append(a.order, k.ID)
		}
		a.nodes[k.ID] = k
		if p, _ := k.ParentID(); p == parent {
			if _, dup := seen[k.ID]; !dup {
				seen[k.ID] = struct{}{}
				ids = append(ids, k.ID)
			}
		} else {
			a.appendChildLocked(p, k.ID)
		}
	}
	a.children[parent] = ids
	a.sortChildrenLocked(parent)
	a.loaded[parent] = true

	if n, ok := a.nodes[parent]; ok && len(ids) > 0 && !n.Expandable {
		n.Expandable = true
		a.nodes[parent] = n
	}
}

func (a *Arena) appendChildLocked(parent, child int64) {
	for _, id := range a.children[parent] {
		if id == child {
			return
		}
	}
	a.children[parent] = append(a.children[parent], child)
	a.sortChildrenLocked(parent)
}

// Forest rebuilds nested nodes from the index. The visited guard keeps a
// corrupt parent cycle from recursing forever.
func (a *Arena) Forest() []learning.KnowledgeNode {
	roots := a.Roots()
	a.mu.RLock()
	defer a.mu.RUnlock()
	visited := map[int64]bool{}
	var build func(n learning.KnowledgeNode) learning.KnowledgeNode
	build = func(n learning.KnowledgeNode) learning.KnowledgeNode {
		visited[n.ID] = true
		for _, cid := range a.children[n.ID] {
			if visited[cid] {
				continue
			}
			n.Children = append(n.Children, build(a.nodes[cid]))
		}
		return n
	}
	out := make([]learning.KnowledgeNode, 0, len(roots))
	for _, r := range roots {
		out = append(out, build(r))
	}
	return out
}
