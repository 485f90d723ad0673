package learning

import (
	"sort"
	"strings"
	"time"
)

type ResourceType string

const (
	ResourceVideo   ResourceType = "VIDEO"
	ResourcePDF     ResourceType = "PDF"
	ResourceArticle ResourceType = "ARTICLE"
	ResourceLink    ResourceType = "LINK"
	ResourceQuiz    ResourceType = "QUIZ"
)

type Resource struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	ResourceType  ResourceType `json:"resource_type"`
	Node          int64        `json:"node"`
	NodeName      string       `json:"node_name,omitempty"`
	GoogleDriveID string       `json:"google_drive_id,omitempty"`
	ExternalURL   string       `json:"external_url,omitempty"`
	PreviewLink   string       `json:"preview_link,omitempty"`
	ContentText   string       `json:"content_text,omitempty"`
	ContextIDs    []int64      `json:"context_ids,omitempty"`
	Order         *int         `json:"order,omitempty"`

	// IsCompleted is merged from progress records for display only.
	IsCompleted bool `json:"is_completed"`
}

func (r Resource) SortOrder() int {
	if r.Order == nil {
		return 0
	}
	return *r.Order
}

// EmbedURL prefers the preview link and falls back to the external url.
func (r Resource) EmbedURL() string {
	if s := strings.TrimSpace(r.PreviewLink); s != "" {
		return s
	}
	return strings.TrimSpace(r.ExternalURL)
}

// SortResources orders by Order ascending; equal orders keep server sequence.
func SortResources(rs []Resource) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].SortOrder() < rs[j].SortOrder() })
}

// StudentProgress is a completion record from GET /progress/.
type StudentProgress struct {
	ID           int64  `json:"id"`
	Resource     int64  `json:"resource"`
	IsCompleted  bool   `json:"is_completed"`
	LastAccessed string `json:"last_accessed"`
}

var lastAccessedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// AccessedAt parses LastAccessed. The API has been seen emitting timestamps
// with and without an offset.
func (p StudentProgress) AccessedAt() (time.Time, bool) {
	raw := strings.TrimSpace(p.LastAccessed)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range lastAccessedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ProgressInput is the POST /progress/ body.
type ProgressInput struct {
	Resource    int64  `json:"resource"`
	IsCompleted bool   `json:"is_completed"`
	Node        *int64 `json:"node,omitempty"`
}
