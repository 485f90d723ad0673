package tree

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
)

func node(id int64, parent int64, typ learning.NodeType, order int) learning.KnowledgeNode {
	n := learning.KnowledgeNode{ID: id, Name: string(typ) + "-" + strconv.FormatInt(id, 10), NodeType: typ, Order: order}
	if parent != 0 {
		n.Parent = learning.ParentRef(parent)
	}
	return n
}

func ids(nodes []learning.KnowledgeNode) []int64 {
	out := make([]int64, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

// Physics(1) → Mechanics(2) → {Vectors(3), Newton(4) → Laws(5)}; Maths(6) → Calculus(7)
func nestedFixture() []learning.KnowledgeNode {
	vectors := node(3, 2, learning.NodeTypeTopic, 2)
	vectors.ResourceCount = 2
	laws := node(5, 4, learning.NodeTypeSubtopic, 1)
	newton := node(4, 2, learning.NodeTypeTopic, 1)
	newton.Children = []learning.KnowledgeNode{laws}
	mech := node(2, 1, learning.NodeTypeSubject, 1)
	mech.Children = []learning.KnowledgeNode{vectors, newton}
	phys := node(1, 0, learning.NodeTypeDomain, 1)
	phys.Children = []learning.KnowledgeNode{mech}
	calc := node(7, 6, learning.NodeTypeSubject, 1)
	maths := node(6, 0, learning.NodeTypeDomain, 2)
	maths.Children = []learning.KnowledgeNode{calc}
	return []learning.KnowledgeNode{phys, maths}
}

func randomForest(r *rand.Rand, next *int64, depth int, parent int64) []learning.KnowledgeNode {
	if depth == 0 {
		return nil
	}
	width := r.Intn(4)
	out := make([]learning.KnowledgeNode, 0, width)
	for i := 0; i < width; i++ {
		*next++
		n := node(*next, parent, learning.NodeTypeTopic, r.Intn(3))
		n.Children = randomForest(r, next, depth-1, n.ID)
		out = append(out, n)
	}
	return out
}

func TestFlattenVisitsEveryNodeOnce(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		var next int64
		forest := randomForest(r, &next, 5, 0)
		flat := Flatten(forest)
		require.Len(t, flat, CountNodes(forest))
		seen := map[int64]bool{}
		for _, n := range flat {
			require.False(t, seen[n.ID], "node %d flattened twice", n.ID)
			require.Nil(t, n.Children)
			seen[n.ID] = true
		}
	}
}

func TestFlattenPreOrderAndParentFill(t *testing.T) {
	forest := nestedFixture()
	forest[0].Children[0].Parent = nil // nesting still implies parent 1
	flat := Flatten(forest)
	require.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7}, ids(flat))
	p, ok := flat[1].ParentID()
	require.True(t, ok)
	require.Equal(t, int64(1), p)
	require.True(t, flat[0].Expandable)
	require.True(t, flat[2].Expandable, "resource_count hint makes a node expandable")
	require.False(t, flat[4].Expandable)
}

func TestFlattenLeafContributesItself(t *testing.T) {
	flat := Flatten([]learning.KnowledgeNode{node(9, 0, learning.NodeTypeDomain, 0)})
	require.Equal(t, []int64{9}, ids(flat))
}

func TestArenaFromFlatList(t *testing.T) {
	a := NewArena([]learning.KnowledgeNode{
		node(1, 0, learning.NodeTypeDomain, 0),
		node(3, 2, learning.NodeTypeTopic, 2),
		node(2, 1, learning.NodeTypeSubject, 0),
		node(4, 2, learning.NodeTypeTopic, 1),
	})
	require.Equal(t, 4, a.Len())
	require.Equal(t, []int64{4, 3}, ids(a.Children(2)))
	require.True(t, a.ChildrenLoaded(2))
	require.False(t, a.ChildrenLoaded(3))
	require.Equal(t, []int64{1}, ids(a.Roots()))

	forest := a.Forest()
	require.Len(t, forest, 1)
	require.Equal(t, 4, CountNodes(forest))
}

func TestAncestorChain(t *testing.T) {
	a := NewArena(nestedFixture())
	for _, n := range a.Nodes() {
		chain := a.AncestorChain(n.ID)
		require.NotEmpty(t, chain)
		require.Equal(t, n.ID, chain[len(chain)-1].ID)
		require.True(t, chain[0].IsRoot())
		for i := 1; i < len(chain); i++ {
			p, ok := chain[i].ParentID()
			require.True(t, ok)
			require.Equal(t, chain[i-1].ID, p)
		}
	}
	require.Equal(t, []int64{1, 2, 4, 5}, ids(a.AncestorChain(5)))
	require.Nil(t, a.AncestorChain(404))

	domain, subject := Classify(a.AncestorChain(5))
	require.Equal(t, int64(1), domain.ID)
	require.Equal(t, int64(2), subject.ID)
}

func TestAncestorChainTerminatesOnCycle(t *testing.T) {
	a := NewArena([]learning.KnowledgeNode{
		node(1, 3, learning.NodeTypeDomain, 0),
		node(2, 1, learning.NodeTypeSubject, 0),
		node(3, 2, learning.NodeTypeTopic, 0),
		node(4, 4, learning.NodeTypeTopic, 0),
	})
	require.Equal(t, []int64{1, 2, 3}, ids(a.AncestorChain(3)))
	require.Equal(t, []int64{4}, ids(a.AncestorChain(4)))
	require.Empty(t, a.StudyDescendants(4))
}

func TestAncestorChainStopsAtDanglingParent(t *testing.T) {
	a := NewArena([]learning.KnowledgeNode{node(8, 77, learning.NodeTypeTopic, 0)})
	require.Equal(t, []int64{8}, ids(a.AncestorChain(8)))
	require.Equal(t, []int64{8}, ids(a.Roots()))
}

func TestStudyDescendants(t *testing.T) {
	a := NewArena(nestedFixture())
	got := a.StudyDescendants(2)
	require.Equal(t, []int64{4, 5, 3}, ids(got))
	for _, n := range got {
		require.NotEqual(t, int64(2), n.ID)
		chainIDs := ids(a.AncestorChain(n.ID))
		require.Contains(t, chainIDs, int64(2))
	}
	require.Empty(t, a.StudyDescendants(7))
	require.Empty(t, a.StudyDescendants(404))
}

func TestStudyDescendantsLieBelowTheSubject(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 30; i++ {
		var next int64
		a := NewArena(randomForest(r, &next, 5, 0))
		for _, s := range a.Nodes() {
			for _, d := range a.StudyDescendants(s.ID) {
				chain := ids(a.AncestorChain(d.ID))
				require.NotEqual(t, s.ID, d.ID)
				require.Equal(t, d.ID, chain[len(chain)-1])
				require.Contains(t, chain[:len(chain)-1], s.ID, "node %d not below %d", d.ID, s.ID)
			}
		}
	}
}

func TestStudyDescendantsIncludesResourceCarriers(t *testing.T) {
	holder := node(3, 2, learning.NodeTypeSubject, 0)
	holder.ResourceCount = 1
	a := NewArena([]learning.KnowledgeNode{
		node(1, 0, learning.NodeTypeDomain, 0),
		node(2, 1, learning.NodeTypeSubject, 0),
		holder,
		node(4, 2, learning.NodeTypeSubject, 0),
	})
	require.Equal(t, []int64{3}, ids(a.StudyDescendants(2)))
}

func TestAttachIsIdempotent(t *testing.T) {
	a := NewArena([]learning.KnowledgeNode{node(1, 0, learning.NodeTypeDomain, 0)})
	require.False(t, a.ChildrenLoaded(1))

	kids := []learning.KnowledgeNode{
		node(11, 1, learning.NodeTypeSubject, 2),
		node(10, 0, learning.NodeTypeSubject, 1),
	}
	a.Attach(1, kids)
	a.Attach(1, kids)

	require.True(t, a.ChildrenLoaded(1))
	require.Equal(t, []int64{10, 11}, ids(a.Children(1)))
	require.Equal(t, 3, a.Len())
	n, _ := a.Node(1)
	require.True(t, n.Expandable)

	a.Attach(10, nil)
	require.True(t, a.ChildrenLoaded(10))
	require.Empty(t, a.Children(10))
}
