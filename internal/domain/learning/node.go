package learning

import "strings"

type NodeType string

const (
	NodeTypeDomain   NodeType = "DOMAIN"
	NodeTypeSubject  NodeType = "SUBJECT"
	NodeTypeSection  NodeType = "SECTION"
	NodeTypeTopic    NodeType = "TOPIC"
	NodeTypeSubtopic NodeType = "SUBTOPIC"
)

// Normalize upper-cases and trims the wire value so "topic " and "TOPIC" compare equal.
func (t NodeType) Normalize() NodeType {
	return NodeType(strings.ToUpper(strings.TrimSpace(string(t))))
}

// IsStudyUnit reports whether the type organizes study content below a subject.
func (t NodeType) IsStudyUnit() bool {
	switch t.Normalize() {
	case NodeTypeSection, NodeTypeTopic, NodeTypeSubtopic:
		return true
	default:
		return false
	}
}

// IsContainer reports whether the sidebar renders the node as a folder. Folders
// are expandable even when the server sent no count hints.
func (t NodeType) IsContainer() bool {
	switch t.Normalize() {
	case NodeTypeDomain, NodeTypeSubject, NodeTypeTopic:
		return true
	default:
		return false
	}
}

// KnowledgeNode is one entry of the domain → subject → topic → subtopic tree as
// served by GET /nodes/. Children is only populated by nested replies.
type KnowledgeNode struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	NodeType      NodeType        `json:"node_type"`
	Parent        *int64          `json:"parent"`
	Order         int             `json:"order"`
	ThumbnailURL  string          `json:"thumbnail_url,omitempty"`
	IsActive      bool            `json:"is_active"`
	Children      []KnowledgeNode `json:"children,omitempty"`
	ResourceCount int             `json:"resource_count,omitempty"`
	ItemsCount    int             `json:"items_count,omitempty"`

	// Expandable is derived once at ingestion; see tree.NewArena.
	Expandable bool `json:"has_expandable_content"`
}

func (n KnowledgeNode) IsRoot() bool { return n.Parent == nil }

func (n KnowledgeNode) ParentID() (int64, bool) {
	if n.Parent == nil {
		return 0, false
	}
	return *n.Parent, true
}

// HasExpandableContent folds the two server count hints and any nested children
// into one answer.
func (n KnowledgeNode) HasExpandableContent() bool {
	return n.ResourceCount > 0 || n.ItemsCount > 0 || len(n.Children) > 0
}

// Shallow returns a copy without nested children.
func (n KnowledgeNode) Shallow() KnowledgeNode {
	n.Children = nil
	return n
}

func ParentRef(id int64) *int64 { return &id }
