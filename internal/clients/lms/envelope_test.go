package lms

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
)

func TestExtractList(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		ids  []int64
	}{
		{"bare array", `[{"id":1,"name":"Physics"}]`, []int64{1}},
		{"results envelope", `{"count":1,"next":null,"results":[{"id":1,"name":"Physics"}]}`, []int64{1}},
		{"results not array", `{"results":{"id":1}}`, nil},
		{"no results key", `{"detail":"nope"}`, nil},
		{"scalar", `42`, nil},
		{"null", `null`, nil},
		{"empty", ``, nil},
		{"malformed", `[{"id":`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractList[learning.KnowledgeNode]([]byte(tc.raw))
			require.NotNil(t, got)
			ids := make([]int64, 0, len(got))
			for _, n := range got {
				ids = append(ids, n.ID)
			}
			if tc.ids == nil {
				require.Empty(t, ids)
				return
			}
			require.Equal(t, tc.ids, ids)
		})
	}
}

func TestExtractListEnvelopesAreEquivalent(t *testing.T) {
	bare := ExtractList[learning.KnowledgeNode]([]byte(`[{"id":1,"name":"A","node_type":"DOMAIN","parent":null}]`))
	wrapped := ExtractList[learning.KnowledgeNode]([]byte(`{"results":[{"id":1,"name":"A","node_type":"DOMAIN","parent":null}]}`))
	require.Len(t, bare, 1)
	require.Equal(t, bare, wrapped)
}
