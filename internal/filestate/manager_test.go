package filestate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrferreira1003/Bug-Finder/internal/filestate"
)

func TestManager_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan_state.json")
	mgr := filestate.NewManager(path)

	state, err := mgr.LoadState()
	require.NoError(t, err)
	assert.Empty(t, state, "missing state file starts fresh")

	state["/logs/application_1/container.log"] = 2048
	state["/logs/application_2/container.log"] = 512
	require.NoError(t, mgr.SaveState(state))

	loaded, err := mgr.LoadState()
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestManager_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan_state.json")
	mgr := filestate.NewManager(path)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := mgr.LoadState()
	assert.Error(t, err)
}
