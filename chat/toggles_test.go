package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleRAGWithoutKnowledgeBaseIsNoop(t *testing.T) {
	notifier := &recordingNotifier{}
	c := NewToggleController(notifier, testLogger())

	assert.False(t, c.ToggleRAG())
	assert.False(t, c.Snapshot().RAGEnabled)
	assert.Equal(t, []string{SelectKnowledgeBaseFirst}, notifier.infos)

	assert.False(t, c.SetRAG(true))
	assert.False(t, c.Snapshot().RAGEnabled)
}

func TestSelectKnowledgeBaseTransitions(t *testing.T) {
	c := NewToggleController(nil, testLogger())

	c.SelectKnowledgeBase("docs")
	assert.True(t, c.Snapshot().RAGEnabled, "none to some enables RAG")

	c.ToggleRAG()
	assert.False(t, c.Snapshot().RAGEnabled)

	c.SelectKnowledgeBase("papers")
	assert.False(t, c.Snapshot().RAGEnabled, "switching between names keeps RAG off")
	assert.Equal(t, "papers", c.Snapshot().KnowledgeBase)

	c.ToggleRAG()
	require.True(t, c.Snapshot().RAGEnabled)

	c.SelectKnowledgeBase("")
	st := c.Snapshot()
	assert.False(t, st.RAGEnabled, "none always disables RAG")
	assert.False(t, st.HasKnowledgeBase())
	assert.Nil(t, st.KnowledgeBaseName())
}

func TestDeselectAlwaysForcesRAGOff(t *testing.T) {
	for _, ragBefore := range []bool{true, false} {
		c := NewToggleController(nil, testLogger())
		c.SelectKnowledgeBase("docs")
		c.SetRAG(ragBefore)

		c.SelectKnowledgeBase("")
		assert.False(t, c.Snapshot().RAGEnabled)
	}
}

func TestToggleWebSearchFlips(t *testing.T) {
	c := NewToggleController(nil, testLogger())

	c.ToggleWebSearch()
	assert.True(t, c.Snapshot().WebSearchEnabled)
	c.ToggleWebSearch()
	assert.False(t, c.Snapshot().WebSearchEnabled)
}

func TestSubscribersSeeEveryMutationBeforeReturn(t *testing.T) {
	c := NewToggleController(nil, testLogger())

	var quick, panel []ToggleState
	c.Subscribe(func(s ToggleState) { quick = append(quick, s) })
	unsubscribe := c.Subscribe(func(s ToggleState) { panel = append(panel, s) })

	require.Len(t, quick, 1, "subscribe delivers the current state")

	c.SelectKnowledgeBase("docs")
	assert.Equal(t, c.Snapshot(), quick[len(quick)-1])
	assert.Equal(t, c.Snapshot(), panel[len(panel)-1])

	c.ToggleWebSearch()
	assert.Equal(t, quick, panel)

	unsubscribe()
	c.ToggleWebSearch()
	assert.Len(t, panel, len(quick)-1)
}

func TestSubscriberMayReadController(t *testing.T) {
	c := NewToggleController(nil, testLogger())
	var seen []bool
	c.Subscribe(func(ToggleState) { seen = append(seen, c.Snapshot().WebSearchEnabled) })

	c.SetWebSearch(true)
	assert.Equal(t, []bool{false, true}, seen)
}

func TestRefusedEnableRenotifiesSurfaces(t *testing.T) {
	c := NewToggleController(nil, testLogger())
	var calls int
	c.Subscribe(func(ToggleState) { calls++ })

	c.SetRAG(true)
	assert.Equal(t, 2, calls)
}

func TestUnavailableFeaturesAreSwitchedOff(t *testing.T) {
	c := NewToggleController(nil, testLogger())
	c.SelectKnowledgeBase("docs")
	c.SetWebSearch(true)

	c.SetAvailability(false, false)
	st := c.Snapshot()
	assert.False(t, st.RAGEnabled)
	assert.False(t, st.WebSearchEnabled)

	assert.False(t, c.SetRAG(true))
}

func TestSyncKnowledgeBasesDropsDeletedSelection(t *testing.T) {
	c := NewToggleController(nil, testLogger())
	c.SelectKnowledgeBase("docs")

	c.SyncKnowledgeBases([]string{"docs", "papers"})
	assert.Equal(t, "docs", c.Snapshot().KnowledgeBase)

	c.SyncKnowledgeBases([]string{"papers"})
	st := c.Snapshot()
	assert.Equal(t, "", st.KnowledgeBase)
	assert.False(t, st.RAGEnabled)
}

func TestConcurrentMutationsNotifyInOrder(t *testing.T) {
	c := NewToggleController(nil, testLogger())

	entered := make(chan struct{})
	release := make(chan struct{})
	var hold sync.Once
	var mu sync.Mutex
	var rendered ToggleState
	c.Subscribe(func(s ToggleState) {
		if s.WebSearchEnabled && !s.HasKnowledgeBase() {
			hold.Do(func() {
				close(entered)
				<-release
			})
		}
		mu.Lock()
		rendered = s
		mu.Unlock()
	})

	webDone := make(chan struct{})
	go func() {
		defer close(webDone)
		c.SetWebSearch(true)
	}()
	<-entered

	selectDone := make(chan struct{})
	go func() {
		defer close(selectDone)
		c.SelectKnowledgeBase("docs")
	}()

	select {
	case <-selectDone:
		t.Fatal("second mutation finished while the first was still notifying")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-webDone
	<-selectDone

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, c.Snapshot(), rendered, "surface shows the current state")
	assert.True(t, rendered.RAGEnabled)
	assert.Equal(t, "docs", rendered.KnowledgeBase)
}

func TestSyncKnowledgeBasesKeepsExistingSelectionSilently(t *testing.T) {
	c := NewToggleController(nil, testLogger())
	var calls int
	c.Subscribe(func(ToggleState) { calls++ })

	c.SyncKnowledgeBases([]string{"docs"})
	assert.Equal(t, 1, calls, "nothing selected, nothing to notify")

	c.SelectKnowledgeBase("papers")
	c.SyncKnowledgeBases([]string{"docs", "papers"})
	assert.Equal(t, 2, calls)
	assert.Equal(t, "papers", c.Snapshot().KnowledgeBase)
	assert.True(t, c.Snapshot().RAGEnabled)
}
