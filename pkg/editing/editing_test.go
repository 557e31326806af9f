package editing

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroMachineIsIdle(t *testing.T) {
	var m Machine
	assert.Equal(t, Idle{}, m.State())
	assert.False(t, m.Active())
}

func TestNodeSessionAccept(t *testing.T) {
	var m Machine
	m.BeginNode("1", "q0")
	assert.Equal(t, EditingNode{ID: "1", Draft: "q0"}, m.State())

	require.NoError(t, m.SetNameDraft(" start "))
	c, err := m.Accept()
	require.NoError(t, err)
	assert.Equal(t, Commit{Kind: KindNode, ID: "1", Text: " start "}, c)
	assert.Equal(t, Idle{}, m.State())
}

func TestNodeSessionRejectsBlank(t *testing.T) {
	for _, draft := range []string{"", " ", "  ", "\t\n"} {
		var m Machine
		m.BeginNode("1", "q0")
		require.NoError(t, m.SetNameDraft(draft))

		_, err := m.Accept()
		assert.ErrorIs(t, err, ErrEmptyName)
		assert.Equal(t, EditingNode{ID: "1", Draft: draft}, m.State(), "session stays open")
	}
}

func TestNodeSessionCancel(t *testing.T) {
	var m Machine
	m.BeginNode("1", "q0")
	require.NoError(t, m.SetNameDraft("changed"))
	require.NoError(t, m.Cancel())
	assert.Equal(t, Idle{}, m.State())

	assert.ErrorIs(t, m.Cancel(), ErrNotEditing)
}

func TestNodeNameIsClamped(t *testing.T) {
	var m Machine
	m.BeginNode("1", strings.Repeat("x", 40))
	d, _ := Draft(m.State())
	assert.Len(t, []rune(d), MaxNameLength)

	require.NoError(t, m.SetNameDraft(strings.Repeat("é", 50)))
	d, _ = Draft(m.State())
	assert.Equal(t, MaxNameLength, len([]rune(d)))
}

func TestEdgeSessionBlurCommitsEmpty(t *testing.T) {
	var m Machine
	_, committed := m.BeginEdge("e1-2", "a")
	assert.False(t, committed)

	require.NoError(t, m.SetLabelDraft(""))
	c, err := m.Blur()
	require.NoError(t, err)
	assert.Equal(t, Commit{Kind: KindEdge, ID: "e1-2", Text: ""}, c)
	assert.Equal(t, Idle{}, m.State())
}

func TestEdgeSessionIgnoresNodeTriggers(t *testing.T) {
	var m Machine
	m.BeginEdge("e1", "")
	_, err := m.Accept()
	assert.ErrorIs(t, err, ErrNotEditing)
	assert.ErrorIs(t, m.Cancel(), ErrNotEditing)
	assert.True(t, IsEditingEdge(m.State(), "e1"))
}

func TestNodeSessionIgnoresBlur(t *testing.T) {
	var m Machine
	m.BeginNode("1", "q0")
	_, err := m.Blur()
	assert.ErrorIs(t, err, ErrNotEditing)
	assert.True(t, IsEditingNode(m.State(), "1"))
}

func TestSwitchingTargets(t *testing.T) {
	t.Run("node entry abandons edge draft", func(t *testing.T) {
		var m Machine
		m.BeginEdge("e1", "")
		require.NoError(t, m.SetLabelDraft("b"))
		prev := m.BeginNode("1", "q0")
		assert.Equal(t, EditingEdge{ID: "e1", Draft: "b"}, prev)
		assert.True(t, IsEditingNode(m.State(), "1"))
	})
	t.Run("node entry abandons node draft", func(t *testing.T) {
		var m Machine
		m.BeginNode("1", "q0")
		require.NoError(t, m.SetNameDraft("unsaved"))
		m.BeginNode("2", "q1")
		assert.Equal(t, EditingNode{ID: "2", Draft: "q1"}, m.State())
	})
	t.Run("edge entry commits previous edge", func(t *testing.T) {
		var m Machine
		m.BeginEdge("e1", "")
		require.NoError(t, m.SetLabelDraft("a"))
		c, ok := m.BeginEdge("e2", "x")
		require.True(t, ok)
		assert.Equal(t, Commit{Kind: KindEdge, ID: "e1", Text: "a"}, c)
		assert.Equal(t, EditingEdge{ID: "e2", Draft: "x"}, m.State())
	})
	t.Run("edge entry abandons node session", func(t *testing.T) {
		var m Machine
		m.BeginNode("1", "q0")
		_, ok := m.BeginEdge("e2", "")
		assert.False(t, ok)
		assert.True(t, IsEditingEdge(m.State(), "e2"))
	})
	t.Run("same edge keeps draft", func(t *testing.T) {
		var m Machine
		m.BeginEdge("e1", "")
		require.NoError(t, m.SetLabelDraft("typed"))
		_, ok := m.BeginEdge("e1", "")
		assert.False(t, ok)
		assert.Equal(t, EditingEdge{ID: "e1", Draft: "typed"}, m.State())
	})
}

func TestDrop(t *testing.T) {
	var m Machine
	m.BeginEdge("e1", "")
	assert.False(t, m.Drop(KindNode, "e1"))
	assert.False(t, m.Drop(KindEdge, "e2"))
	assert.True(t, m.Drop(KindEdge, "e1"))
	assert.False(t, m.Active())
	assert.False(t, m.Drop(KindEdge, "e1"))
}

func TestSetDraftWhileIdle(t *testing.T) {
	var m Machine
	assert.ErrorIs(t, m.SetNameDraft("x"), ErrNotEditing)
	assert.ErrorIs(t, m.SetLabelDraft("x"), ErrNotEditing)
}

func TestDraftsOnlyReachTheirOwnSession(t *testing.T) {
	t.Run("label keystroke during rename", func(t *testing.T) {
		var m Machine
		m.BeginNode("1", "q0")
		assert.ErrorIs(t, m.SetLabelDraft("typed"), ErrNotEditing)
		assert.Equal(t, EditingNode{ID: "1", Draft: "q0"}, m.State())
	})
	t.Run("name keystroke during label edit", func(t *testing.T) {
		var m Machine
		m.BeginEdge("e1", "a")
		assert.ErrorIs(t, m.SetNameDraft("typed"), ErrNotEditing)
		assert.Equal(t, EditingEdge{ID: "e1", Draft: "a"}, m.State())
	})
}

// At most one session exists after any sequence of triggers, and the
// state is always one of the three variants.
func TestSingleSessionUnderRandomTriggers(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var m Machine
	for i := 0; i < 2000; i++ {
		switch rng.Intn(7) {
		case 0:
			m.BeginNode([]string{"1", "2", "3"}[rng.Intn(3)], "q")
		case 1:
			m.BeginEdge([]string{"e1", "e2"}[rng.Intn(2)], "")
		case 2:
			text := []string{"", " ", "a"}[rng.Intn(3)]
			if rng.Intn(2) == 0 {
				_ = m.SetNameDraft(text)
			} else {
				_ = m.SetLabelDraft(text)
			}
		case 3:
			_, _ = m.Accept()
		case 4:
			_ = m.Cancel()
		case 5:
			_, _ = m.Blur()
		case 6:
			m.Drop(KindEdge, "e1")
		}
		switch m.State().(type) {
		case Idle, EditingNode, EditingEdge:
		default:
			t.Fatalf("unexpected state %T", m.State())
		}
	}
}

func TestTargetAndKindString(t *testing.T) {
	k, id := Target(EditingEdge{ID: "e"})
	assert.Equal(t, KindEdge, k)
	assert.Equal(t, "e", id)
	assert.Equal(t, "edge", k.String())

	k, id = Target(Idle{})
	assert.Equal(t, Kind(0), k)
	assert.Empty(t, id)
	assert.Equal(t, "none", k.String())
}
