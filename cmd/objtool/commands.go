package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/objstream/internal/config"
	"github.com/Faultbox/objstream/internal/logger"
	"github.com/Faultbox/objstream/pkg/mesh"
	"github.com/Faultbox/objstream/pkg/obj"
)

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	cfg := setup(fs, args)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool info <file.obj>")
		os.Exit(1)
	}

	report, err := obj.ParseFile(fs.Arg(0), nil, cfg.ParserOptions(logger.Named("obj")))
	if err != nil {
		fatal(err)
	}

	fmt.Printf("File:       %s\n", fs.Arg(0))
	fmt.Printf("Size:       %.2f KB\n", float64(report.Bytes)/1024)
	fmt.Printf("Lines:      %d\n", report.Lines)
	fmt.Printf("Objects:    %d\n", len(report.Instances))
	fmt.Printf("Sub-meshes: %d\n", report.SubMeshCount())
	fmt.Printf("Triangles:  %d\n", report.TriangleCount())
	fmt.Println()

	for _, in := range report.Instances {
		fmt.Printf("[%d] %s\n", in.Index, in.ObjectName)
		if in.Mtllib != "" {
			fmt.Printf("    mtllib:    %s\n", in.Mtllib)
		}
		fmt.Printf("    vertices:  %d  normals: %d  uvs: %d\n", in.Vertices, in.Normals, in.UVs)
		fmt.Printf("    groups:    %d  materials: %d  smoothing groups: %d\n",
			in.GroupChanges, in.MaterialChanges, in.SmoothingGroupChanges)
		fmt.Printf("    sub-meshes: %d  triangles: %d\n", in.SubMeshes, in.Triangles)
	}

	if len(report.Skipped) > 0 {
		fmt.Println()
		fmt.Println("Skipped records:")
		keys := make([]string, 0, len(report.Skipped))
		for k := range report.Skipped {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %-8s %d\n", k, report.Skipped[k])
		}
	}
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	cfg := setup(fs, args)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool list <file.obj>")
		os.Exit(1)
	}

	meshes, _, err := loadMeshes(cfg, fs.Arg(0))
	if err != nil {
		fatal(err)
	}

	fmt.Printf("%-4s %-20s %-16s %-16s %-4s %-6s %s\n",
		"#", "OBJECT", "GROUP", "MATERIAL", "S", "TRIS", "ATTRS")
	for i, m := range meshes {
		attrs := "v"
		if m.UVs != nil {
			attrs += "/vt"
		}
		switch {
		case m.NormalsComputed:
			attrs += "/vn*"
		case m.Normals != nil:
			attrs += "/vn"
		}
		fmt.Printf("%-4d %-20s %-16s %-16s %-4d %-6d %s\n",
			i, m.ObjectName, m.GroupName, m.MaterialName, m.SmoothingGroup, m.TriangleCount(), attrs)
	}
	fmt.Printf("\nTotal: %d meshes\n", len(meshes))
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	cfg := setup(fs, args)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool export <file.obj> [output_dir]")
		os.Exit(1)
	}

	outDir := cfg.Export.OutputDir
	if fs.NArg() > 1 {
		outDir = fs.Arg(1)
	}

	start := time.Now()
	meshes, _, err := loadMeshes(cfg, fs.Arg(0))
	if err != nil {
		fatal(err)
	}

	man, err := mesh.Export(outDir, fs.Arg(0), cfg.Mesh.NameCharset, meshes)
	if err != nil {
		fatal(err)
	}

	logger.Info("export complete",
		zap.String("source", fs.Arg(0)),
		zap.String("dir", outDir),
		zap.Int("meshes", len(man.Meshes)),
		zap.Duration("elapsed", time.Since(start)))
	fmt.Printf("Exported %d meshes to %s\n", len(man.Meshes), outDir)
}

// checkResult is the outcome of parsing one file.
type checkResult struct {
	path   string
	report *obj.Report
	err    error
}

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	cfg := setup(fs, args)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool check <file.obj>...")
		os.Exit(1)
	}

	results := checkFiles(cfg, fs.Args())

	failed := 0
	for _, r := range results {
		if r.err == nil {
			fmt.Printf("OK    %s (%d objects, %d triangles)\n",
				r.path, len(r.report.Instances), r.report.TriangleCount())
			continue
		}
		failed++
		var perr *obj.ParseError
		if errors.As(r.err, &perr) {
			fmt.Printf("FAIL  %s:%d: %v\n", r.path, perr.Line, perr.Err)
			fmt.Printf("      in %q record, object %q, group %q, material %q\n",
				perr.Record, perr.Object, perr.Group, perr.Material)
		} else {
			fmt.Printf("FAIL  %s: %v\n", r.path, r.err)
		}
	}

	fmt.Printf("\n%d checked, %d failed\n", len(results), failed)
	if failed > 0 {
		logger.Sync()
		os.Exit(1)
	}
}

// checkFiles parses every path on its own goroutine. Results keep the order
// of paths.
func checkFiles(cfg *config.Config, paths []string) []checkResult {
	meshOpts, err := cfg.MeshOptions(logger.Named("mesh"))
	if err != nil {
		fatal(err)
	}

	results := make([]checkResult, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			collector := mesh.NewCollector(meshOpts)
			opts := cfg.ParserOptions(logger.Named("obj").With(zap.String("file", path)))
			report, err := obj.ParseFile(path, collector, opts)
			results[i] = checkResult{path: path, report: report, err: err}
		}(i, path)
	}
	wg.Wait()
	return results
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	cfg := setup(fs, args)
	defer logger.Sync()

	var err error
	path := filepath.Join(config.ConfigDir(), config.FileName)
	if fs.NArg() > 0 {
		path = fs.Arg(0)
		err = cfg.SaveTo(path)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Configuration written to %s\n", path)
}
