package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/KeyIP-Substructure/internal/testutil"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

const testConfigYAML = `
log:
  level: error
matcher:
  algorithm: frontier
  screen_algorithm: depthfirst
  max_library_size: 50
  max_mappings: 100
  screen_workers: 2
`

func writeFile(t *testing.T, dir, name string, v interface{}) string {
	t.Helper()
	var data []byte
	switch x := v.(type) {
	case string:
		data = []byte(x)
	default:
		var err error
		if strings.HasSuffix(name, ".json") {
			data, err = json.Marshal(v)
		} else {
			data, err = yaml.Marshal(v)
		}
		require.NoError(t, err)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// runCLI executes the root command with a private config file and returns
// stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cfgPath := writeFile(t, t.TempDir(), "keyip.yaml", testConfigYAML)
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfgPath, "--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Flags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"config", "log-level", "output", "no-color", "timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"match", "anchors", "screen", "version"} {
		assert.True(t, names[name], name)
	}
}

func TestRootCommand_UnknownOutput(t *testing.T) {
	_, err := runCLI(t, "", "-o", "xml", "version")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestRootCommand_BadConfig(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "version"})
	assert.Error(t, cmd.Execute())
}

func TestVersionCmd(t *testing.T) {
	out, err := runCLI(t, "", "-o", "json", "version")
	require.NoError(t, err)
	var v versionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, Version, v.Version)

	out, err = runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "keyip "+Version)
}

func TestGetCLIContext_Missing(t *testing.T) {
	_, err := GetCLIContext(&cobra.Command{})
	assert.Error(t, err)
}

func TestPrintError(t *testing.T) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetErr(&buf)
	PrintError(cmd, nil)
	assert.Empty(t, buf.String())
	PrintError(cmd, errors.InvalidParam("bad input"))
	assert.Contains(t, buf.String(), "bad input")
}

func TestReadLibrary(t *testing.T) {
	dir := t.TempDir()
	lib := []mtypes.MoleculeGraphDTO{testutil.Ethanol(), testutil.Methanol()}
	cmd := &cobra.Command{}

	got, err := readLibrary(cmd, writeFile(t, dir, "list.json", lib))
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "mol-ethanol", got[0].ID)

	got, err = readLibrary(cmd, writeFile(t, dir, "wrapped.yaml", map[string]interface{}{"molecules": lib}))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = readLibrary(cmd, writeFile(t, dir, "scalar.yaml", "just a string\n"))
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, err = readLibrary(cmd, filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)

	_, err = readLibrary(cmd, writeFile(t, dir, "broken.yaml", "[unclosed"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
}

func TestFormatMap(t *testing.T) {
	assert.Equal(t, "0>2 1>1", formatMap(map[int]int{1: 1, 0: 2}))
	assert.Equal(t, "", formatMap(nil))
	assert.Equal(t, "3 4", formatInts([]int{3, 4}))
}
