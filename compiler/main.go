package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/xiaobogaga/hack/compiler/internal"
)

// A jack compiler: compiles a .jack file, or every .jack file of a directory, to vm code.

var (
	path       = flag.String("path", ".", "the .jack file or the directory of jack files to compile")
	configPath = flag.String("config", "", "the jackc.toml to use, looked up from path when empty")
	outputDir  = flag.String("o", "", "the directory to save vm files to, next to the sources when empty")
	workers    = flag.Int("j", 0, "how many files to compile at the same time")
	keepGoing  = flag.Bool("keep_going", false, "whether to compile remaining files after a failure")
	tokensXML  = flag.Bool("tokens", false, "whether to also save the tokens of each file as xml")
	verify     = flag.Bool("verify", true, "whether to verify compiled vm code before saving it")
	verbose    = flag.Bool("v", false, "whether to print compiled vm code")
	verbosity  = flag.Int("log_verbosity", 1, "log verbosity, 0 logs errors only")
	logFile    = flag.String("log_file", "", "the file to log to, stderr when empty")
)

func main() {
	flag.Parse()
	conf, err := loadConfig()
	if err != nil {
		fmt.Printf("[Compiler]: failed to load config, err: %v\n", err)
		os.Exit(1)
	}
	var logPath *string
	if conf.Log.File != "" {
		logPath = &conf.Log.File
	}
	commonlog.Configure(conf.Log.Verbosity, logPath)

	units, err := internal.Compile(context.Background(), *path, conf)
	if conf.Output.Print {
		for _, unit := range units {
			if unit.Err == nil {
				fmt.Printf("// %s\n%s", unit.OutputPath, unit.Code)
			}
		}
	}
	if err != nil {
		fmt.Printf("[Compiler]: failed to compile %s, err: %v\n", *path, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and lets flags given on the command line override it.
func loadConfig() (*internal.Config, error) {
	var (
		conf *internal.Config
		err  error
	)
	if *configPath != "" {
		conf, err = internal.LoadConfig(*configPath)
	} else {
		conf, err = internal.FindConfig(*path)
	}
	if err != nil {
		return nil, err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			conf.Output.Dir = *outputDir
		case "j":
			conf.Build.Workers = *workers
		case "keep_going":
			conf.Build.KeepGoing = *keepGoing
		case "tokens":
			conf.Output.TokensXML = *tokensXML
		case "verify":
			conf.Output.Verify = *verify
		case "v":
			conf.Output.Print = *verbose
		case "log_verbosity":
			conf.Log.Verbosity = *verbosity
		case "log_file":
			conf.Log.File = *logFile
		}
	})
	if conf.Build.Workers <= 0 {
		conf.Build.Workers = 1
	}
	return conf, nil
}
