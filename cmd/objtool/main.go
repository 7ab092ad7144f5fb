// objtool is a CLI utility for inspecting and converting Wavefront OBJ files.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/objstream/internal/config"
	"github.com/Faultbox/objstream/internal/logger"
	"github.com/Faultbox/objstream/pkg/mesh"
	"github.com/Faultbox/objstream/pkg/obj"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "list", "ls":
		cmdList(args)
	case "export", "x":
		cmdExport(args)
	case "check":
		cmdCheck(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objtool - Wavefront OBJ inspection and conversion utility

Usage:
  objtool <command> [options]

Commands:
  info <file.obj>                 Show per-object counts and totals
  list <file.obj>                 List sub-meshes
  export <file.obj> [output_dir]  Write float buffers and manifest.yaml
  check <file.obj>...             Parse files and report errors
  config [path]                   Write the effective configuration

Options (all commands):
  -config <path>          Config file (default ./objtool.yaml)
  -debug                  Enable debug logging
  -per-smoothing-group    One sub-mesh per smoothing group number
  -no-implicit-split      Do not start a new object when vertices follow faces
  -stream                 Build meshes as soon as each object completes
  -charset <name>         Charset of names (utf-8, euc-kr, windows-1252, ...)
  -log-file <path>        Also write logs to a rotated file

Examples:
  objtool info castle.obj
  objtool list -per-smoothing-group castle.obj
  objtool export -charset euc-kr castle.obj ./out
  objtool check models/*.obj`)
}

// setup parses the command flags, loads the configuration and starts the
// logger. Callers must defer logger.Sync.
func setup(fs *flag.FlagSet, args []string) *config.Config {
	config.BindFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)
	return cfg
}

// fatal reports err and exits with status 1.
func fatal(err error) {
	logger.Error("command failed", zap.Error(err))
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// loadMeshes parses path and builds its meshes.
func loadMeshes(cfg *config.Config, path string) ([]*mesh.Mesh, *obj.Report, error) {
	meshOpts, err := cfg.MeshOptions(logger.Named("mesh"))
	if err != nil {
		return nil, nil, err
	}
	collector := mesh.NewCollector(meshOpts)

	report, err := obj.ParseFile(path, collector, cfg.ParserOptions(logger.Named("obj")))
	if err != nil {
		return nil, nil, err
	}
	return collector.Meshes(), report, nil
}
