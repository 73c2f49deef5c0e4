package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"HkxToolbox/common"
	"HkxToolbox/hkxconvert"

	"github.com/alecthomas/kong"
)

var sigCh = make(chan os.Signal, 1)

type CLI struct {
	Inputs []string `arg:"" optional:"" name:"inputs" help:"Files to convert" type:"path"`

	Source    string `name:"source" help:"Folder to scan for convertible files" type:"path"`
	Filter    string `name:"filter" help:"Scan filter: all, hkx, xml or kf" default:"all"`
	Recursive bool   `name:"recursive" help:"Scan subfolders too" default:"true" negatable:""`

	Output string `name:"output" help:"Output folder" required:"" type:"path"`
	Suffix string `name:"suffix" help:"Appended to output file names"`
	Ext    string `name:"ext" help:"Overrides the output file extension"`

	Tool     string `name:"tool" help:"Converter tool to use" default:"hkxcmd"`
	Mode     string `name:"mode" help:"Conversion mode: regular, kf-to-hkx or hkx-to-kf" default:"regular"`
	Format   string `name:"format" help:"Output format: xml, skyrim-le or skyrim-se" default:"skyrim-se"`
	Skeleton string `name:"skeleton" help:"Skeleton file for the animation modes" type:"path"`

	Tools       string        `name:"tools" help:"YAML file with additional converter definitions" type:"path"`
	ToolsDir    string        `name:"tools-dir" help:"Folder holding the converter executables" type:"path"`
	MaxParallel int           `name:"max-parallel" help:"Cap on concurrently running conversions (0 = unbounded)"`
	Timeout     time.Duration `name:"timeout" help:"Per-file converter timeout (0 = none)"`
}

func main() {
	var cli CLI
	_ = kong.Parse(&cli,
		kong.Description(description()),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
	)

	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	logger, err := common.NewLogger(common.FileNameLog, 10, 7)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Close()

	registry := hkxconvert.NewRegistry()
	if cli.Tools != "" {
		n, err := hkxconvert.LoadToolsFromYAML(cli.Tools, registry)
		if err != nil {
			log.Fatalf("failed to load tool definitions: %v", err)
		}
		log.Printf("Loaded %d converter definitions from %s", n, cli.Tools)
	}

	mode, err := hkxconvert.ParseMode(cli.Mode)
	if err != nil {
		log.Fatalf("%v", err)
	}
	format, err := hkxconvert.ParseFormat(cli.Format)
	if err != nil {
		log.Fatalf("%v", err)
	}

	inputs := cli.Inputs
	if cli.Source != "" {
		filter, err := parseFilter(cli.Filter)
		if err != nil {
			log.Fatalf("%v", err)
		}
		inputs, err = hkxconvert.CollectInputs(cli.Source, filter, cli.Recursive, inputs)
		if err != nil {
			log.Fatalf("%v", err)
		}
	}

	cfg := hkxconvert.Config{
		Tool:   hkxconvert.ToolKind(cli.Tool),
		Mode:   mode,
		Format: format,
		Output: hkxconvert.OutputSpec{
			Root:            cli.Output,
			Suffix:          cli.Suffix,
			CustomExtension: cli.Ext,
		},
		Skeleton:    cli.Skeleton,
		ToolsDir:    cli.ToolsDir,
		MaxParallel: cli.MaxParallel,
		ToolTimeout: cli.Timeout,
	}

	batch, err := hkxconvert.NewBatch(cfg, inputs, registry, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	go func() {
		<-sigCh
		log.Println("Received interrupt signal, stopping conversion...")
		batch.Cancel()
	}()

	fmt.Printf("Converting %d files to %s\n", len(batch.Tasks()), cli.Output)
	batch.Start()

	exitCode := 0
	for ev := range batch.Events() {
		switch ev.State {
		case hkxconvert.StateStarted:
			fmt.Printf("[%d/%d] %s\n", ev.FileIndex+1, ev.TotalFiles, ev.FileName)
		case hkxconvert.StateSucceeded:
			if ev.Message != "" {
				fmt.Printf("[%d/%d] %s: done (%s)\n", ev.FileIndex+1, ev.TotalFiles, ev.FileName, ev.Message)
			} else {
				fmt.Printf("[%d/%d] %s: done\n", ev.FileIndex+1, ev.TotalFiles, ev.FileName)
			}
		case hkxconvert.StateFailed:
			fmt.Fprintf(os.Stderr, "[%d/%d] %s: FAILED: %s\n", ev.FileIndex+1, ev.TotalFiles, ev.FileName, ev.Message)
		case hkxconvert.StateBatchCancelled:
			fmt.Printf("Cancelled: %d of %d files converted\n", ev.Succeeded, ev.Total)
			exitCode = 1
		case hkxconvert.StateBatchCompleted:
			fmt.Printf("Finished: %d of %d files converted\n", ev.Succeeded, ev.Total)
			if ev.Succeeded < ev.Total {
				exitCode = 1
			}
		}
	}

	os.Exit(exitCode)
}

func parseFilter(s string) (hkxconvert.InputFilter, error) {
	switch s {
	case "all", "":
		return hkxconvert.FilterAll, nil
	case "hkx":
		return hkxconvert.FilterHkx, nil
	case "xml":
		return hkxconvert.FilterXml, nil
	case "kf":
		return hkxconvert.FilterKf, nil
	}
	return hkxconvert.FilterAll, fmt.Errorf("unknown filter: %q", s)
}

func description() string {
	return `
Batch convert HKX, XML and KF files using external converter tools

Examples:
  ./hkxconvert --source=./anims --output=./converted --format=skyrim-le
  ./hkxconvert --mode=kf-to-hkx --skeleton=skeleton.hkx --output=./out run.kf walk.kf
`
}
