package internal

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	require.Nil(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.Nil(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	writeFile(t, path, `
[build]
workers = 3
keep_going = true

[output]
dir = "build"
extension = "vmc"
tokens_xml = true

[log]
verbosity = 2
`)
	conf, err := LoadConfig(path)
	require.Nil(t, err)
	assert.Equal(t, path, conf.Path)
	assert.Equal(t, 3, conf.Build.Workers)
	assert.True(t, conf.Build.KeepGoing)
	assert.Equal(t, filepath.Join(dir, "build"), conf.Output.Dir)
	assert.Equal(t, ".vmc", conf.Output.Extension)
	assert.True(t, conf.Output.TokensXML)
	// Unset keys keep their defaults.
	assert.True(t, conf.Output.Verify)
	assert.False(t, conf.Output.Print)
	assert.Equal(t, 2, conf.Log.Verbosity)
	assert.Equal(t, "", conf.Log.File)
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	writeFile(t, path, "[build]\nworkers = 0\n")
	conf, err := LoadConfig(path)
	require.Nil(t, err)
	assert.Equal(t, 1, conf.Build.Workers)
	assert.Equal(t, ".vm", conf.Output.Extension)
	assert.Equal(t, "", conf.Output.Dir)
	assert.True(t, conf.Output.Verify)

	defaults := DefaultConfig()
	assert.Equal(t, runtime.NumCPU(), defaults.Build.Workers)
	assert.Equal(t, 1, defaults.Log.Verbosity)
}

func TestLoadConfig_Error(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.NotNil(t, err)

	path := filepath.Join(dir, ConfigFileName)
	writeFile(t, path, "[build\nworkers = 1\n")
	_, err = LoadConfig(path)
	assert.NotNil(t, err)

	writeFile(t, path, "[build]\nworkers = \"many\"\n")
	_, err = LoadConfig(path)
	assert.NotNil(t, err)
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), "[output]\ndir = \"out\"\n")
	source := filepath.Join(root, "src", "game", "Main.jack")
	writeFile(t, source, "class Main { }")

	conf, err := FindConfig(source)
	require.Nil(t, err)
	assert.Equal(t, filepath.Join(root, ConfigFileName), conf.Path)
	assert.Equal(t, filepath.Join(root, "out"), conf.Output.Dir)

	conf, err = FindConfig(filepath.Dir(source))
	require.Nil(t, err)
	assert.Equal(t, filepath.Join(root, ConfigFileName), conf.Path)

	// The nearest file wins.
	writeFile(t, filepath.Join(root, "src", ConfigFileName), "[build]\nkeep_going = true\n")
	conf, err = FindConfig(source)
	require.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "src", ConfigFileName), conf.Path)
	assert.True(t, conf.Build.KeepGoing)
	assert.Equal(t, "", conf.Output.Dir)
}
