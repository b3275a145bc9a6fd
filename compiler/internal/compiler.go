package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/xiaobogaga/hack/util"
	"github.com/xiaobogaga/hack/vmcode"
)

// driverLog is looked up on use so the backend configured by main is picked up.
func driverLog() commonlog.Logger {
	return commonlog.GetLogger("jackc.driver")
}

// CompileSource tokenizes and compiles one class and returns its vm code.
func CompileSource(src string) (string, error) {
	code, _, err := CompileUnit(src)
	return code, err
}

// CompileUnit is CompileSource that also returns the unit's tokens.
func CompileUnit(src string) (string, []*Token, error) {
	tokenizer := &Tokenizer{}
	tokens, err := tokenizer.TokenizeString(src)
	if err != nil {
		return "", nil, err
	}
	code, err := NewCompilationEngine(tokens).Compile()
	if err != nil {
		return "", tokens, err
	}
	return code, tokens, nil
}

// Unit is one source file of a batch.
type Unit struct {
	SourcePath string
	OutputPath string
	Code       string
	Err        error
}

// DiscoverUnits returns the .jack files to compile: path itself when it is a .jack file,
// otherwise the .jack files directly inside the directory path, sorted by name.
func DiscoverUnits(path string, conf *Config) ([]*Unit, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", path, err)
	}
	var sources []string
	if !info.IsDir() {
		if !util.IsJackFile(path) {
			return nil, fmt.Errorf("%s is not a %s file", path, util.JackFileExtension)
		}
		sources = []string{path}
	} else {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read directory %s: %w", path, err)
		}
		for _, entry := range entries {
			// Ignore sub path and not jack file.
			if entry.IsDir() || !util.IsJackFile(entry.Name()) {
				continue
			}
			sources = append(sources, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(sources)
	units := make([]*Unit, 0, len(sources))
	for _, source := range sources {
		units = append(units, &Unit{SourcePath: source, OutputPath: outputPath(source, conf)})
	}
	return units, nil
}

func outputPath(source string, conf *Config) string {
	output := util.ReplaceExtension(source, conf.Output.Extension)
	if conf.Output.Dir == "" {
		return output
	}
	return filepath.Join(conf.Output.Dir, filepath.Base(output))
}

// Compile compiles every unit under path. Units run in parallel, each with its own
// CompilationEngine. Without keep_going the first failure cancels the units not started yet and
// is returned; with keep_going every unit is attempted and all failures are joined.
func Compile(ctx context.Context, path string, conf *Config) ([]*Unit, error) {
	units, err := DiscoverUnits(path, conf)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		driverLog().Warningf("no %s file found at %s", util.JackFileExtension, path)
		return nil, nil
	}
	if conf.Output.Dir != "" {
		if err := os.MkdirAll(conf.Output.Dir, 0755); err != nil {
			return nil, err
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(conf.Build.Workers)
	var (
		mu   sync.Mutex
		errs []error
	)
	for _, unit := range units {
		unit := unit
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				unit.Err = err
				return nil
			}
			unit.Err = compileFile(unit, conf)
			if unit.Err == nil {
				return nil
			}
			driverLog().Errorf("failed to compile %s: %s", unit.SourcePath, unit.Err)
			if !conf.Build.KeepGoing {
				return unit.Err
			}
			mu.Lock()
			errs = append(errs, unit.Err)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return units, err
	}
	if err := ctx.Err(); err != nil {
		return units, err
	}
	return units, errors.Join(errs...)
}

func compileFile(unit *Unit, conf *Config) error {
	driverLog().Infof("compiling %s", unit.SourcePath)
	src, err := os.ReadFile(unit.SourcePath)
	if err != nil {
		return err
	}
	code, tokens, err := CompileUnit(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", unit.SourcePath, err)
	}
	driverLog().Debugf("%s: %d tokens", unit.SourcePath, len(tokens))
	if conf.Output.Verify {
		commands, err := vmcode.ParseString(code)
		if err == nil {
			err = vmcode.Verify(commands)
		}
		if err != nil {
			return fmt.Errorf("%s: emitted code does not verify: %w", unit.SourcePath, err)
		}
	}
	if conf.Output.TokensXML {
		err = writeTokensFile(xmlOutputPath(unit.OutputPath), tokens)
		if err != nil {
			return err
		}
	}
	err = os.WriteFile(unit.OutputPath, []byte(code), 0644)
	if err != nil {
		return err
	}
	unit.Code = code
	driverLog().Infof("saved %s", unit.OutputPath)
	return nil
}

// xmlOutputPath maps build/Main.vm to build/MainT.xml.
func xmlOutputPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + "T.xml"
}

func writeTokensFile(path string, tokens []*Token) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = WriteTokensXML(f, tokens)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}
