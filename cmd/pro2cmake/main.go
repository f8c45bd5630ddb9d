package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/promake/pro2cmake/pkgs/engine"
	"github.com/promake/pro2cmake/pkgs/mapping"
)

type options struct {
	debug                 bool
	debugParser           bool
	debugParseResult      bool
	debugProStructure     bool
	debugFullProStructure bool
	libMapFile            string
	summary               bool
}

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "pro2cmake <.pro/.pri file>...",
		Short: "Convert qmake project files to CMakeLists.txt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, opts)
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable all debug output")
	rootCmd.Flags().BoolVar(&opts.debugParser, "debug-parser", false, "Print debug output from the parser")
	rootCmd.Flags().BoolVar(&opts.debugParseResult, "debug-parse-result", false, "Dump the parsed statement sequence")
	rootCmd.Flags().BoolVar(&opts.debugProStructure, "debug-pro-structure", false, "Dump the structure of the .pro file")
	rootCmd.Flags().BoolVar(&opts.debugFullProStructure, "debug-full-pro-structure", false, "Dump the .pro structure with includes merged")
	rootCmd.Flags().StringVar(&opts.libMapFile, "lib-map", "", "YAML file with extra library and platform mappings")
	rootCmd.Flags().BoolVar(&opts.summary, "summary", false, "Print a table of the processed files")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(files []string, opts options) error {
	level := slog.LevelInfo
	if opts.debug || opts.debugParser {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if opts.libMapFile != "" {
		overrides, err := mapping.LoadOverrides(opts.libMapFile)
		if err != nil {
			return err
		}
		mapping.Apply(overrides)
	}

	eng := engine.New(logger, engine.Options{
		DebugParser:          opts.debugParser || opts.debug,
		DumpParseResult:      opts.debugParseResult || opts.debug,
		DumpProStructure:     opts.debugProStructure || opts.debug,
		DumpFullProStructure: opts.debugFullProStructure || opts.debug,
	})

	results := make([]*engine.Result, 0, len(files))
	for _, file := range files {
		result, err := eng.ProcessFile(file)
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	if opts.summary {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"File", "Template", "Target", "Output"})
		table.SetBorder(false)
		for _, r := range results {
			table.Append([]string{r.File, r.Template, r.Target, r.Output})
		}
		table.Render()
	}
	return nil
}
