package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mainSource = `class Main {
		function void main() {
			var Point p;
			let p = Point.new(1, 2);
			do p.print();
			return;
		}
	}`
	pointSource = `class Point {
		field int x, y;
		constructor Point new(int ax, int ay) { let x = ax; let y = ay; return this; }
		method void print() { do Output.printInt(x); do Output.printInt(y); return; }
	}`
	badSource = `class Bad { function void f() { let missing = 1; return; } }`
)

func testConfig() *Config {
	conf := DefaultConfig()
	conf.Build.Workers = 2
	return conf
}

func TestCompile_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Main.jack"), mainSource)
	writeFile(t, filepath.Join(dir, "Point.jack"), pointSource)
	writeFile(t, filepath.Join(dir, "README.txt"), "not a jack file")
	writeFile(t, filepath.Join(dir, "sub", "Nested.jack"), badSource)

	units, err := Compile(context.Background(), dir, testConfig())
	require.Nil(t, err)
	require.Len(t, units, 2)
	for i, source := range []string{mainSource, pointSource} {
		unit := units[i]
		assert.Nil(t, unit.Err)
		expected, err := CompileSource(source)
		require.Nil(t, err)
		assert.Equal(t, expected, unit.Code)
		saved, err := os.ReadFile(unit.OutputPath)
		require.Nil(t, err)
		assert.Equal(t, expected, string(saved))
	}
	assert.Equal(t, filepath.Join(dir, "Main.vm"), units[0].OutputPath)
	assert.Equal(t, filepath.Join(dir, "Point.vm"), units[1].OutputPath)
	// Sub directories are not compiled.
	_, err = os.Stat(filepath.Join(dir, "sub", "Nested.vm"))
	assert.True(t, os.IsNotExist(err))
}

func TestCompile_OutputDir(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "Main.jack")
	writeFile(t, source, mainSource)
	conf := testConfig()
	conf.Output.Dir = filepath.Join(dir, "build", "vm")
	conf.Output.TokensXML = true

	units, err := Compile(context.Background(), source, conf)
	require.Nil(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, filepath.Join(conf.Output.Dir, "Main.vm"), units[0].OutputPath)
	_, err = os.Stat(units[0].OutputPath)
	assert.Nil(t, err)
	xml, err := os.ReadFile(filepath.Join(conf.Output.Dir, "MainT.xml"))
	require.Nil(t, err)
	assert.Contains(t, string(xml), "<keyword> class </keyword>\n<identifier> Main </identifier>\n")
}

func TestCompile_KeepGoing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Bad.jack"), badSource)
	writeFile(t, filepath.Join(dir, "Main.jack"), mainSource)
	writeFile(t, filepath.Join(dir, "Point.jack"), pointSource)
	conf := testConfig()
	conf.Build.KeepGoing = true

	units, err := Compile(context.Background(), dir, conf)
	require.NotNil(t, err)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, UnresolvedIdentifier, parseErr.Kind)
	require.Len(t, units, 3)
	assert.NotNil(t, units[0].Err)
	assert.Nil(t, units[1].Err)
	assert.Nil(t, units[2].Err)
	_, err = os.Stat(filepath.Join(dir, "Bad.vm"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "Point.vm"))
	assert.Nil(t, err)
}

func TestCompile_StopOnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Bad.jack"), badSource)
	writeFile(t, filepath.Join(dir, "Main.jack"), mainSource)
	conf := testConfig()
	conf.Build.Workers = 1

	units, err := Compile(context.Background(), dir, conf)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	require.Len(t, units, 2)
	// The failure cancels the units not started yet.
	assert.True(t, errors.Is(units[1].Err, context.Canceled))
	_, err = os.Stat(filepath.Join(dir, "Main.vm"))
	assert.True(t, os.IsNotExist(err))
}

func TestCompile_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Main.jack"), mainSource)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	units, err := Compile(ctx, dir, testConfig())
	assert.True(t, errors.Is(err, context.Canceled))
	require.Len(t, units, 1)
	assert.True(t, errors.Is(units[0].Err, context.Canceled))
}

func TestCompile_Input(t *testing.T) {
	dir := t.TempDir()
	_, err := Compile(context.Background(), filepath.Join(dir, "missing.jack"), testConfig())
	assert.NotNil(t, err)

	other := filepath.Join(dir, "Main.txt")
	writeFile(t, other, mainSource)
	_, err = Compile(context.Background(), other, testConfig())
	assert.NotNil(t, err)

	units, err := Compile(context.Background(), t.TempDir(), testConfig())
	assert.Nil(t, err)
	assert.Empty(t, units)
}

func TestXMLOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("build", "MainT.xml"), xmlOutputPath(filepath.Join("build", "Main.vm")))
}
