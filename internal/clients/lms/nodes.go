package lms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
)

// ListNodes fetches the whole node collection. The reply may be a nested
// forest or a flat (possibly paginated) list.
func (c *Client) ListNodes(ctx context.Context) ([]learning.KnowledgeNode, error) {
	raw, err := c.getRaw(ctx, "/nodes/")
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	return ExtractList[learning.KnowledgeNode](raw), nil
}

func (c *Client) GetNode(ctx context.Context, id int64) (*learning.KnowledgeNode, error) {
	var n learning.KnowledgeNode
	if err := c.doJSON(ctx, http.MethodGet, "/nodes/"+strconv.FormatInt(id, 10)+"/", nil, &n); err != nil {
		return nil, fmt.Errorf("get node %d: %w", id, err)
	}
	return &n, nil
}

// ListChildren returns the direct children of parentID ordered by Order. The
// filter endpoint has been observed returning unrelated rows, so the parent
// link is checked again here.
func (c *Client) ListChildren(ctx context.Context, parentID int64) ([]learning.KnowledgeNode, error) {
	q := url.Values{}
	q.Set("parent", strconv.FormatInt(parentID, 10))
	raw, err := c.getRaw(ctx, "/nodes/?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("list children of %d: %w", parentID, err)
	}
	all := ExtractList[learning.KnowledgeNode](raw)
	out := make([]learning.KnowledgeNode, 0, len(all))
	for _, n := range all {
		if p, ok := n.ParentID(); ok && p == parentID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// ListResources returns the resources attached to a node, sorted by order.
func (c *Client) ListResources(ctx context.Context, nodeID int64) ([]learning.Resource, error) {
	q := url.Values{}
	q.Set("node", strconv.FormatInt(nodeID, 10))
	raw, err := c.getRaw(ctx, "/resources/?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("list resources of %d: %w", nodeID, err)
	}
	out := ExtractList[learning.Resource](raw)
	learning.SortResources(out)
	return out, nil
}

func (c *Client) ListProgress(ctx context.Context) ([]learning.StudentProgress, error) {
	raw, err := c.getRaw(ctx, "/progress/")
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return ExtractList[learning.StudentProgress](raw), nil
}

func (c *Client) RecordProgress(ctx context.Context, in learning.ProgressInput) (*learning.StudentProgress, error) {
	var out learning.StudentProgress
	if err := c.doJSON(ctx, http.MethodPost, "/progress/", in, &out); err != nil {
		return nil, fmt.Errorf("record progress for resource %d: %w", in.Resource, err)
	}
	return &out, nil
}
