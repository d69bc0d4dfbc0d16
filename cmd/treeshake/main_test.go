package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/evanw/treeshake/pkg/api"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, contents := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
	}
	return dir
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	err := newApp(&stdout).Run(append([]string{"treeshake", "--log-level=silent"}, args...))
	return stdout.String(), err
}

var project = map[string]string{
	"entry.js": "import { used } from './lib.js'\nconsole.log(used)\n",
	"lib.js":   "export const used = 1\nexport const unused = 2\n",
}

func TestTextReport(t *testing.T) {
	dir := writeProject(t, project)

	out, err := runApp(t, "--code", filepath.Join(dir, "entry.js"))
	require.NoError(t, err)
	assert.Contains(t, out, "lib.js")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "Included 2 of 2 modules")
	assert.Contains(t, out, "const used = 1\n")
	assert.NotContains(t, out, "unused = 2")
}

func TestJSONReport(t *testing.T) {
	dir := writeProject(t, project)

	out, err := runApp(t, "--format=json", filepath.Join(dir, "entry.js"))
	require.NoError(t, err)

	var result api.ShakeResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Modules, 2)
	assert.Equal(t, []string{"used"}, result.Modules[0].IncludedExports)
	assert.True(t, result.Modules[1].IsEntry)
}

func TestYAMLReport(t *testing.T) {
	dir := writeProject(t, project)

	out, err := runApp(t, "-f", "yaml", "--no-treeshake", filepath.Join(dir, "entry.js"))
	require.NoError(t, err)

	var result api.ShakeResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &result))
	require.Len(t, result.Modules, 2)
	assert.Equal(t, 2, result.Modules[0].IncludedStatements)
}

func TestExternalFlag(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"entry.js": "import { a } from 'ext'\nconsole.log(a)\n",
	})

	out, err := runApp(t, "--external", "ext", filepath.Join(dir, "entry.js"))
	require.NoError(t, err)
	assert.Contains(t, out, "external ext: a")
}

func TestConfigFlag(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"entry.js":       "import { a } from 'ext'\nconsole.log(a)\n",
		"treeshake.json": `{"external": ["ext"], "treeshake": {"enabled": false}}`,
	})

	out, err := runApp(t, "--config", filepath.Join(dir, "treeshake.json"), "--format=json", filepath.Join(dir, "entry.js"))
	require.NoError(t, err)

	var result api.ShakeResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Externals, 1)
	assert.Equal(t, "ext", result.Externals[0].ID)
}

func TestBuildErrorsExitWithCode(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"entry.js": "import { nope } from './lib.js'\nconsole.log(nope)\n",
		"lib.js":   "export const yes = 1\n",
	})

	_, err := runApp(t, filepath.Join(dir, "entry.js"))
	require.Error(t, err)
	exit, ok := err.(cli.ExitCoder)
	require.True(t, ok)
	assert.Equal(t, 1, exit.ExitCode())
	assert.Equal(t, "1 error(s)", exit.Error())
}

func TestUsageErrors(t *testing.T) {
	_, err := runApp(t)
	assert.EqualError(t, err, "no entry points given")

	_, err = runApp(t, "--format=xml", "entry.js")
	assert.EqualError(t, err, `invalid format "xml" (valid: text, json, yaml)`)

	_, err = runApp(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "entry.js")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		text     string
		expected api.LogLevel
		ok       bool
	}{
		{"", api.LogLevelWarning, true},
		{"silent", api.LogLevelSilent, true},
		{"verbose", api.LogLevelVerbose, true},
		{"error", api.LogLevelError, true},
		{"loud", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			level, err := parseLogLevel(tt.text)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestParseColor(t *testing.T) {
	value, err := parseColor("")
	require.NoError(t, err)
	assert.Equal(t, api.ColorIfTerminal, value)

	value, err = parseColor("true")
	require.NoError(t, err)
	assert.Equal(t, api.ColorAlways, value)

	value, err = parseColor("false")
	require.NoError(t, err)
	assert.Equal(t, api.ColorNever, value)

	_, err = parseColor("maybe")
	assert.Error(t, err)
}
