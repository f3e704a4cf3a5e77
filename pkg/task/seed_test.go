package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeed_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- title: Initial Setup
  description: This is the initial task
  persona: Intern
  group: 1
- id: 7
  title: Deploy
  persona: Ops
  group: 2
  completed: true
`), 0644))

	tasks, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, Task{Title: "Initial Setup", Description: "This is the initial task", Persona: "Intern", Group: 1}, tasks[0])
	assert.Equal(t, Task{ID: 7, Title: "Deploy", Persona: "Ops", Group: 2, Completed: true}, tasks[1])
}

func TestLoadSeed_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title":"A","group":1},{"title":"B","group":2}]`), 0644))

	tasks, err := LoadSeed(path)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, "B", tasks[1].Title)
}

func TestLoadSeed_Errors(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: not a list"), 0644))
	_, err = LoadSeed(path)
	assert.Error(t, err)
}
