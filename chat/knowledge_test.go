package chat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chat-client/api"
)

func TestCreateKnowledgeBase(t *testing.T) {
	fb, client := newFakeBackend(t)
	m := NewKnowledgeBaseManager(client, nil, testLogger())
	ctx := context.Background()

	err := m.Create(ctx, "  ")
	assert.True(t, IsValidation(err))
	assert.Zero(t, fb.count("POST /knowledge-bases"))

	require.NoError(t, m.Create(ctx, "docs"))
	assert.Equal(t, []string{"docs"}, m.Names())

	err = m.Create(ctx, "docs")
	require.Error(t, err)
	assert.False(t, IsValidation(err))
	assert.Equal(t, "Failed to create knowledge base: Failed to create knowledge base", UserMessage("create knowledge base", err))
}

func TestUploadFilesAggregatesSuccesses(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.kbs = []api.KnowledgeBase{{Name: "docs"}}
	m := NewKnowledgeBaseManager(client, nil, testLogger())

	dir := t.TempDir()
	good1 := filepath.Join(dir, "a.md")
	good2 := filepath.Join(dir, "b.txt")
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(good1, []byte("# a"), 0644))
	require.NoError(t, os.WriteFile(good2, []byte("b"), 0644))
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	missing := filepath.Join(dir, "missing.pdf")

	report, err := m.UploadFiles(context.Background(), "docs", []string{good1, empty, missing, good2})
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Succeeded)
	assert.Len(t, report.Failures, 2)
	assert.Equal(t, "Uploaded 2 of 4 files", report.String())
	assert.Equal(t, []string{"a.md", "b.txt"}, fb.uploads["docs"])

	kbs := m.KnowledgeBases()
	require.Len(t, kbs, 1)
	assert.Equal(t, 6, kbs[0].VectorsCount)
	assert.Equal(t, "docs (6 chunks)", KnowledgeBaseLabel(kbs[0]))
}

func TestUploadFilesNeedsTarget(t *testing.T) {
	_, client := newFakeBackend(t)
	m := NewKnowledgeBaseManager(client, nil, testLogger())

	_, err := m.UploadFiles(context.Background(), "", []string{"x"})
	assert.True(t, IsValidation(err))
	_, err = m.UploadFiles(context.Background(), "docs", nil)
	assert.True(t, IsValidation(err))
}

func TestDeleteKnowledgeBaseRefreshesEveryView(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.kbs = []api.KnowledgeBase{{Name: "docs"}, {Name: "papers"}}
	confirm := &stubConfirmer{answer: true}
	m := NewKnowledgeBaseManager(client, confirm, testLogger())
	toggles := NewToggleController(nil, testLogger())

	var panelNames, quickNames []string
	m.Subscribe(func(kbs []api.KnowledgeBase) {
		panelNames = panelNames[:0]
		for _, kb := range kbs {
			panelNames = append(panelNames, kb.Name)
		}
	})
	m.Subscribe(func(kbs []api.KnowledgeBase) {
		quickNames = quickNames[:0]
		for _, kb := range kbs {
			quickNames = append(quickNames, kb.Name)
		}
		toggles.SyncKnowledgeBases(quickNames)
	})

	ctx := context.Background()
	_, err := m.List(ctx)
	require.NoError(t, err)
	toggles.SelectKnowledgeBase("docs")
	require.True(t, toggles.Snapshot().RAGEnabled)

	deleted, err := m.Delete(ctx, "docs")
	require.NoError(t, err)
	assert.True(t, deleted)

	assert.Equal(t, []string{"papers"}, panelNames)
	assert.Equal(t, []string{"papers"}, quickNames)
	assert.Equal(t, "", toggles.Snapshot().KnowledgeBase)
	assert.False(t, toggles.Snapshot().RAGEnabled)
}

func TestDeleteKnowledgeBaseDeclined(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.kbs = []api.KnowledgeBase{{Name: "docs"}}
	m := NewKnowledgeBaseManager(client, &stubConfirmer{answer: false}, testLogger())

	deleted, err := m.Delete(context.Background(), "docs")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Zero(t, fb.count("DELETE /knowledge-bases/{name}"))
}

func TestDeleteMissingKnowledgeBaseRefreshesStaleList(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.kbs = []api.KnowledgeBase{{Name: "docs"}}
	m := NewKnowledgeBaseManager(client, &stubConfirmer{answer: true}, testLogger())
	ctx := context.Background()
	_, err := m.List(ctx)
	require.NoError(t, err)

	fb.mu.Lock()
	fb.kbs = nil
	fb.mu.Unlock()

	deleted, err := m.Delete(ctx, "docs")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, m.Names())
}
