package skipset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readKeys reads the durable copy back as a set
func readKeys(t *testing.T, path string) map[string]struct{} {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var keys []string
	require.NoError(t, json.Unmarshal(data, &keys))
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func TestLoadSeedsDefaultsWhenFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skip_list.json")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, len(defaultKeys), s.Len())
	assert.True(t, s.Contains("Socket Head Screws"))
	assert.True(t, s.Contains(""))

	// The default list must also be durable immediately.
	onDisk := readKeys(t, path)
	assert.Len(t, onDisk, len(defaultKeys))
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skip_list.json")

	s, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, s.Add("Fastening and Joining/Screws and Bolts"))
	require.NoError(t, s.Add("Cup Point Set Screws"))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.Keys(), reloaded.Keys())
	assert.True(t, reloaded.Contains("Fastening and Joining/Screws and Bolts"))
	assert.True(t, reloaded.Contains("Cup Point Set Screws"))
}

func TestAddIsWriteThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skip_list.json")

	s, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, s.Add("first"))
	_, onDisk := readKeys(t, path)["first"]
	assert.True(t, onDisk, "key must be durable right after Add")

	require.NoError(t, s.Add("second"))
	disk := readKeys(t, path)
	assert.Contains(t, disk, "first")
	assert.Contains(t, disk, "second")
}

func TestAddExistingKeyIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skip_list.json")

	s, err := Load(path)
	require.NoError(t, err)

	before := s.Len()
	require.NoError(t, s.Add("repeated"))
	require.NoError(t, s.Add("repeated"))
	assert.Equal(t, before+1, s.Len())
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skip_list.json")
	require.NoError(t, os.WriteFile(path, []byte(`["a","b"]`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("Socket Head Screws"), "defaults must not leak into an existing file")
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skip_list.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
