// Package search builds the global search index from the knowledge tree.
package search

import (
	"fmt"
	"strings"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
	"github.com/yungbote/qubitgyan-student/internal/learning/tree"
)

const (
	Separator    = " / "
	DefaultLimit = 7
)

// Build emits one SearchNode per reachable node. Nodes with no DOMAIN
// ancestor (other than DOMAINs themselves) are dropped. The index is rebuilt
// in full on every call.
func Build(a *tree.Arena) []learning.SearchNode {
	if a == nil {
		return []learning.SearchNode{}
	}
	nodes := a.Nodes()
	out := make([]learning.SearchNode, 0, len(nodes))
	for _, n := range nodes {
		typ := n.NodeType.Normalize()
		if typ == learning.NodeTypeDomain {
			out = append(out, learning.SearchNode{
				ID:   n.ID,
				Name: n.Name,
				Href: fmt.Sprintf("/courses/%d", n.ID),
				Type: typ,
			})
			continue
		}
		chain := a.AncestorChain(n.ID)
		domain, subject := tree.Classify(chain)
		switch {
		case domain != nil && subject != nil:
			names := make([]string, 0, len(chain))
			for _, c := range chain {
				names = append(names, c.Name)
			}
			out = append(out, learning.SearchNode{
				ID:   n.ID,
				Name: strings.Join(names, Separator),
				Href: fmt.Sprintf("/courses/%d/%d?unit=%d", domain.ID, subject.ID, n.ID),
				Type: typ,
			})
		case domain != nil:
			out = append(out, learning.SearchNode{
				ID:   n.ID,
				Name: n.Name,
				Href: fmt.Sprintf("/courses/%d", domain.ID),
				Type: typ,
			})
		}
	}
	return out
}

// Query returns up to limit entries whose name contains q, case-insensitively.
// An empty query matches nothing.
func Query(index []learning.SearchNode, q string, limit int) []learning.SearchNode {
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return []learning.SearchNode{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := []learning.SearchNode{}
	for _, e := range index {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
