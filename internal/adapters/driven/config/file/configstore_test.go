package file

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".novelcheck", "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("embedding.model", "all-minilm"))

	val, ok := store.Get("embedding.model")
	assert.True(t, ok)
	assert.Equal(t, "all-minilm", val)
	assert.Equal(t, "all-minilm", store.GetString("embedding.model"))

	_, ok = store.Get("embedding.missing")
	assert.False(t, ok)
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("novelty.top_k", 7))
	require.NoError(t, store.Set("novelty.similarity_threshold", 0.5))
	require.NoError(t, store.Set("embedding.provider", "ollama"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "[novelty]")
	assert.Contains(t, text, "[embedding]")
	assert.NotContains(t, text, "'novelty.top_k'")
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("novelty.top_k", 7))
	require.NoError(t, store.Set("novelty.similarity_threshold", 0.45))
	require.NoError(t, store.Set("plagiarism.exact_threshold", 1))
	require.NoError(t, store.Set("embedding.api_key", "sk-test"))
	require.NoError(t, store.Set("debug", true))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 7, reloaded.GetInt("novelty.top_k"))
	assert.InDelta(t, 0.45, reloaded.GetFloat("novelty.similarity_threshold"), 1e-9)
	assert.InDelta(t, 1.0, reloaded.GetFloat("plagiarism.exact_threshold"), 1e-9)
	assert.Equal(t, "sk-test", reloaded.GetString("embedding.api_key"))
	assert.True(t, reloaded.GetBool("debug"))
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[embedding]
provider = "openai"
model = "text-embedding-3-small"
batch_size = 16

[plagiarism]
paraphrase_threshold = 0.7
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "openai", store.GetString("embedding.provider"))
	assert.Equal(t, 16, store.GetInt("embedding.batch_size"))
	assert.InDelta(t, 0.7, store.GetFloat("plagiarism.paraphrase_threshold"), 1e-9)
}

func TestConfigStore_TypeMismatchReturnsZero(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("s", "text"))

	assert.Equal(t, 0, store.GetInt("s"))
	assert.Zero(t, store.GetFloat("s"))
	assert.False(t, store.GetBool("s"))
	assert.Nil(t, store.GetStringSlice("s"))
	assert.Equal(t, "", store.GetString("missing"))
}

func TestConfigStore_GetStringSlice(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("paths", []string{"a", "b"}))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, reloaded.GetStringSlice("paths"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("k", "v"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not valid {{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("novelty.top_k", n)
			_ = store.GetInt("novelty.top_k")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("novelty.top_k")
	assert.True(t, ok)
}

func TestFlattenMap(t *testing.T) {
	nested := map[string]any{
		"a": map[string]any{"b": int64(1), "c": map[string]any{"d": "x"}},
		"e": true,
	}

	flat := flattenMap(nested, "")

	assert.Equal(t, map[string]any{"a.b": int64(1), "a.c.d": "x", "e": true}, flat)
}

func TestNestMap(t *testing.T) {
	flat := map[string]any{"a.b": 1, "a.c.d": "x", "e": true}

	nested := nestMap(flat)

	assert.Equal(t, map[string]any{
		"a": map[string]any{"b": 1, "c": map[string]any{"d": "x"}},
		"e": true,
	}, nested)
	assert.Equal(t, flat, flattenMap(nested, ""))
}

func TestNestMap_ScalarPrefixKeepsDottedKey(t *testing.T) {
	nested := nestMap(map[string]any{"a": 1, "a.b": 2})

	assert.Equal(t, 1, nested["a"])
	assert.Equal(t, 2, nested["a.b"])

	data, err := tomlRoundTrip(nested)
	require.NoError(t, err)
	assert.True(t, strings.Contains(data, "a.b"))
}

func tomlRoundTrip(m map[string]any) (string, error) {
	dir, err := os.MkdirTemp("", "novelcheck-config-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	store, err := NewConfigStore(dir)
	if err != nil {
		return "", err
	}
	store.data = flattenMap(m, "")
	if err := store.Save(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(store.Path())
	return string(data), err
}
