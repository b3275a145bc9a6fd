package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is looked up from the source path upwards.
const ConfigFileName = "jackc.toml"

// Config represents a jackc.toml file:
//
//	[build]
//	workers = 4
//	keep_going = false
//
//	[output]
//	dir = "build"
//	extension = ".vm"
//	tokens_xml = false
//	verify = true
//	print = false
//
//	[log]
//	verbosity = 1
//	file = "jackc.log"
type Config struct {
	Build  BuildConfig  `toml:"build"`
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `toml:"-"`
}

type BuildConfig struct {
	// Workers bounds how many units are compiled at the same time.
	Workers int `toml:"workers"`
	// KeepGoing compiles every unit even after one fails.
	KeepGoing bool `toml:"keep_going"`
}

type OutputConfig struct {
	// Dir receives the compiled files. Empty means next to each source file.
	Dir       string `toml:"dir"`
	Extension string `toml:"extension"`
	// TokensXML also writes the token stream of each unit as <Class>T.xml.
	TokensXML bool `toml:"tokens_xml"`
	// Verify reads every compiled program back before it is written.
	Verify bool `toml:"verify"`
	Print  bool `toml:"print"`
}

type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Build:  BuildConfig{Workers: runtime.NumCPU()},
		Output: OutputConfig{Extension: ".vm", Verify: true},
		Log:    LogConfig{Verbosity: 1},
	}
}

// LoadConfig parses a config file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	conf := DefaultConfig()
	if err := toml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	conf.Path = path
	if conf.Output.Dir != "" && !filepath.IsAbs(conf.Output.Dir) {
		conf.Output.Dir = filepath.Join(filepath.Dir(path), conf.Output.Dir)
	}
	conf.normalize()
	return conf, nil
}

// FindConfig walks up from startPath to find a jackc.toml file and loads it.
// The defaults are returned when there is none.
func FindConfig(startPath string) (*Config, error) {
	dir, err := filepath.Abs(startPath)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return DefaultConfig(), nil
		}
		dir = parent
	}
}

func (conf *Config) normalize() {
	if conf.Build.Workers <= 0 {
		conf.Build.Workers = 1
	}
	if conf.Output.Extension == "" {
		conf.Output.Extension = ".vm"
	}
	if conf.Output.Extension[0] != '.' {
		conf.Output.Extension = "." + conf.Output.Extension
	}
}
