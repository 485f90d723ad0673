package tree

import (
	"sort"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
)

// IsStudyNode reports whether n organizes study content or carries resources.
func IsStudyNode(n learning.KnowledgeNode) bool {
	return n.NodeType.IsStudyUnit() || n.ResourceCount > 0
}

// StudyDescendants collects, breadth-first, every node below subjectID that is
// a study node, sorted by order with ties kept in traversal order. The subject
// itself is never part of the result.
func (a *Arena) StudyDescendants(subjectID int64) []learning.KnowledgeNode {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, ok := a.nodes[subjectID]; !ok {
		return []learning.KnowledgeNode{}
	}
	visited := map[int64]bool{subjectID: true}
	queue := make([]int64, 0, len(a.children[subjectID]))
	for _, cid := range a.children[subjectID] {
		if !visited[cid] {
			visited[cid] = true
			queue = append(queue, cid)
		}
	}

	out := []learning.KnowledgeNode{}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := a.nodes[id]
		if IsStudyNode(n) {
			out = append(out, n)
		}
		for _, cid := range a.children[id] {
			if visited[cid] {
				continue
			}
			visited[cid] = true
			queue = append(queue, cid)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
