package tree

import "github.com/yungbote/qubitgyan-student/internal/domain/learning"

// AncestorChain returns the path root → id, inclusive. The walk stops at a
// parentless node, at a parent missing from the arena, or when a node repeats.
// Unknown ids yield nil.
func (a *Arena) AncestorChain(id int64) []learning.KnowledgeNode {
	a.mu.RLock()
	defer a.mu.RUnlock()

	n, ok := a.nodes[id]
	if !ok {
		return nil
	}
	rev := []learning.KnowledgeNode{n}
	visited := map[int64]bool{id: true}
	for {
		p, ok := n.ParentID()
		if !ok || visited[p] {
			break
		}
		parent, known := a.nodes[p]
		if !known {
			break
		}
		visited[p] = true
		rev = append(rev, parent)
		n = parent
	}
	out := make([]learning.KnowledgeNode, len(rev))
	for i := range rev {
		out[len(rev)-1-i] = rev[i]
	}
	return out
}

// Classify picks the first DOMAIN and the first SUBJECT out of a chain.
func Classify(chain []learning.KnowledgeNode) (domain *learning.KnowledgeNode, subject *learning.KnowledgeNode) {
	for i := range chain {
		switch chain[i].NodeType.Normalize() {
		case learning.NodeTypeDomain:
			if domain == nil {
				domain = &chain[i]
			}
		case learning.NodeTypeSubject:
			if subject == nil {
				subject = &chain[i]
			}
		}
	}
	return domain, subject
}
