package registry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestRegistry(t *testing.T, root string, opts Options) *Registry {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = testLogger()
	}
	reg, err := New(root, opts)
	require.NoError(t, err)
	return reg
}

func TestNewMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), Options{Logger: testLogger()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRoot)
}

func TestNewRootIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "root.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))

	_, err := New(file, Options{Logger: testLogger()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRoot)
}

func TestEmptyRoot(t *testing.T) {
	reg := newTestRegistry(t, t.TempDir(), Options{})

	assert.Equal(t, 0, reg.Len())

	docs, err := reg.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)

	_, err = reg.Resolve(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveAndList(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "chat/assistant.json", `{"name": "assistant"}`)
	writeDoc(t, root, "tasks/reminder.json", `{"name": "reminder"}`)
	writeDoc(t, root, "deep/nested/doc.json", `{"n": 1}`)

	reg := newTestRegistry(t, root, Options{})
	assert.Equal(t, 3, reg.Len())

	doc, err := reg.Resolve(context.Background(), "chat/assistant")
	require.NoError(t, err)
	assert.Equal(t, "chat/assistant", doc.Path)
	assert.Equal(t, "chat/assistant.json", doc.File)
	assert.Equal(t, map[string]any{"name": "assistant"}, doc.Value)
	assert.Greater(t, doc.Size, int64(0))
	assert.False(t, doc.ModTime.IsZero())

	// slashes around the query are ignored
	doc, err = reg.Resolve(context.Background(), "/tasks/reminder/")
	require.NoError(t, err)
	assert.Equal(t, "tasks/reminder", doc.Path)

	docs, err := reg.List(context.Background())
	require.NoError(t, err)
	paths := make([]string, 0, len(docs))
	for _, d := range docs {
		paths = append(paths, d.Path)
	}
	assert.Equal(t, []string{"chat/assistant", "deep/nested/doc", "tasks/reminder"}, paths)
}

func TestResolveNotFound(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "chat/assistant.json", `{"name": "assistant"}`)

	reg := newTestRegistry(t, root, Options{})

	_, err := reg.Resolve(context.Background(), "chat/missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// partial directory paths are not documents
	_, err = reg.Resolve(context.Background(), "chat")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogicalPathPreservesCase(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "Chat/MyAssistant.json", `{}`)

	reg := newTestRegistry(t, root, Options{})

	_, err := reg.Resolve(context.Background(), "Chat/MyAssistant")
	require.NoError(t, err)

	_, err = reg.Resolve(context.Background(), "chat/myassistant")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOtherExtensionsIgnored(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "doc.json", `{}`)
	writeDoc(t, root, "notes.txt", "plain text")
	writeDoc(t, root, "config.yaml", "a: 1")

	reg := newTestRegistry(t, root, Options{})

	assert.Equal(t, 1, reg.Len())
	assert.Empty(t, reg.Skipped(), "non-document files are ignored, not skipped")
}

func TestCustomExtension(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "agent.doc", `{"kind": "custom"}`)
	writeDoc(t, root, "agent.json", `{"kind": "json"}`)

	reg := newTestRegistry(t, root, Options{Extension: ".doc"})

	doc, err := reg.Resolve(context.Background(), "agent")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"kind": "custom"}, doc.Value)
	assert.Equal(t, 1, reg.Len())
}

func TestAutoReloadSeesChanges(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.json", `{"v": 1}`)

	reg := newTestRegistry(t, root, Options{AutoReload: true})

	writeDoc(t, root, "b.json", `{"v": 2}`)
	doc, err := reg.Resolve(context.Background(), "b")
	require.NoError(t, err, "new files must be visible without an explicit scan")
	assert.Equal(t, map[string]any{"v": float64(2)}, doc.Value)

	require.NoError(t, os.Remove(filepath.Join(root, "a.json")))
	_, err = reg.Resolve(context.Background(), "a")
	assert.ErrorIs(t, err, ErrNotFound, "removed files must disappear")
}

func TestWithoutAutoReloadStaysStale(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.json", `{"v": 1}`)

	reg := newTestRegistry(t, root, Options{})

	writeDoc(t, root, "b.json", `{"v": 2}`)
	_, err := reg.Resolve(context.Background(), "b")
	assert.ErrorIs(t, err, ErrNotFound, "index reflects the last scan only")

	require.NoError(t, reg.Scan(context.Background()))
	_, err = reg.Resolve(context.Background(), "b")
	require.NoError(t, err)
}

func TestDeferInitialScan(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.json", `{}`)

	reg := newTestRegistry(t, root, Options{DeferInitialScan: true})
	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, reg.Generation())

	_, err := reg.Resolve(context.Background(), "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, reg.Scan(context.Background()))
	assert.Equal(t, 1, reg.Len())
	assert.NotEmpty(t, reg.Generation())
}

func TestGenerationChangesPerScan(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.json", `{}`)

	reg := newTestRegistry(t, root, Options{})
	first := reg.Generation()
	require.NotEmpty(t, first)

	require.NoError(t, reg.Scan(context.Background()))
	assert.NotEqual(t, first, reg.Generation())
}

func TestRootRemovedAfterConstruction(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(root, 0o755))
	writeDoc(t, root, "a.json", `{}`)

	reg := newTestRegistry(t, root, Options{AutoReload: true})
	require.NoError(t, os.RemoveAll(root))

	_, err := reg.Resolve(context.Background(), "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRoot)
}
