package learning

import "time"

// SearchNode is a read-only projection of a KnowledgeNode for global search.
type SearchNode struct {
	ID   int64    `json:"id"`
	Name string   `json:"name"`
	Href string   `json:"href"`
	Type NodeType `json:"type"`
}

type CourseProgress struct {
	Total      int    `json:"total"`
	Completed  int    `json:"completed"`
	Percent    int    `json:"percent"`
	RootNodeID *int64 `json:"root_node_id,omitempty"`
}

type RecentCompletion struct {
	Resource     int64     `json:"resource"`
	LastAccessed time.Time `json:"last_accessed"`
}

// ProgressSummary backs the sidebar streak badge and the header activity count.
// StreakDays counts distinct calendar days with at least one completion; it
// does not require the days to be consecutive.
type ProgressSummary struct {
	CompletedResourceIDs []int64            `json:"completed_resource_ids"`
	StreakDays           int                `json:"streak_days"`
	Recent               []RecentCompletion `json:"recent"`
}

type Course struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	RootNode     *int64 `json:"root_node"`
	IsEnrolled   bool   `json:"is_enrolled"`
}

type EnrollResult struct {
	Status string `json:"status"`
}

// DomainCard is one dashboard tile.
type DomainCard struct {
	Domain       KnowledgeNode `json:"domain"`
	SubjectCount int           `json:"subject_count"`
}
