// Package engine drives the conversion of one project file end to end:
// parse, build the scope tree, fold in included files, emit the output.
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/promake/pro2cmake/pkgs/errors"
	"github.com/promake/pro2cmake/pkgs/generator"
	"github.com/promake/pro2cmake/pkgs/parser"
	"github.com/promake/pro2cmake/pkgs/scope"
)

// Options carries the diagnostic toggles. None of them change generation
// semantics, they only add dumps along the way.
type Options struct {
	DebugParser          bool
	DumpParseResult      bool
	DumpProStructure     bool
	DumpFullProStructure bool

	// DumpWriter receives the debug dumps, stdout when nil.
	DumpWriter io.Writer
}

// Result summarizes one processed file.
type Result struct {
	File     string
	Template string
	Target   string
	Output   string
}

// Engine converts project files.
type Engine struct {
	logger *slog.Logger
	opts   Options
	gen    *generator.Generator
	dump   io.Writer
}

// New creates an engine. A nil logger disables logging.
func New(logger *slog.Logger, opts Options) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	dump := opts.DumpWriter
	if dump == nil {
		dump = os.Stdout
	}
	return &Engine{
		logger: logger,
		opts:   opts,
		gen:    generator.New(logger),
		dump:   dump,
	}
}

// ProcessFile converts one .pro/.pri file and writes the CMakeLists.txt next
// to it.
func (e *Engine) ProcessFile(path string) (*Result, error) {
	e.logger.Info("parsing", "file", path)

	popts := parser.Options{}
	if e.opts.DebugParser {
		popts.Logger = e.logger
	}
	stmts, err := parser.ParseFile(path, popts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrFileParse, "failed to parse "+path, err)
	}

	if e.opts.DumpParseResult {
		fmt.Fprintf(e.dump, "#### Parser result (%s):\n", path)
		parser.DumpStatements(e.dump, stmts)
		fmt.Fprintf(e.dump, "#### End of parser result.\n\n")
	}

	root, err := scope.FromStatements(nil, path, stmts, "", "")
	if err != nil {
		return nil, err
	}

	if e.opts.DumpProStructure {
		fmt.Fprintf(e.dump, "#### File structure (%s):\n", path)
		root.Dump(e.dump)
		fmt.Fprintf(e.dump, "#### End of file structure.\n\n")
	}

	if err := e.processIncludes(root); err != nil {
		return nil, err
	}

	if e.opts.DumpFullProStructure {
		fmt.Fprintf(e.dump, "#### Full file structure (%s):\n", path)
		root.Dump(e.dump)
		fmt.Fprintf(e.dump, "#### End of full file structure.\n\n")
	}

	template, err := root.Template()
	if err != nil {
		return nil, err
	}
	target, err := root.Target()
	if err != nil {
		return nil, err
	}

	if err := e.gen.GenerateCMakeLists(root); err != nil {
		return nil, err
	}

	return &Result{
		File:     path,
		Template: template,
		Target:   target,
		Output:   root.CMakeListsPath(),
	}, nil
}

// processIncludes merges every include()-referenced file into its including
// scope, children first. A missing include target is warned about and
// skipped; the enclosing scope stays usable.
func (e *Engine) processIncludes(s *scope.Scope) error {
	for _, c := range s.Children() {
		if err := e.processIncludes(c); err != nil {
			return err
		}
	}

	for _, inc := range s.Included() {
		if inc == "" {
			continue
		}
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(s.Basedir(), inc)
		}
		info, err := os.Stat(inc)
		if err != nil || info.IsDir() {
			e.logger.Warn("failed to include", "file", inc, "from", s.File())
			continue
		}

		popts := parser.Options{}
		if e.opts.DebugParser {
			popts.Logger = e.logger
		}
		stmts, err := parser.ParseFile(inc, popts)
		if err != nil {
			return errors.Wrap(errors.ErrFileParse, "failed to parse "+inc, err)
		}
		incScope, err := scope.FromStatements(nil, inc, stmts, "", s.Basedir())
		if err != nil {
			return err
		}
		if err := e.processIncludes(incScope); err != nil {
			return err
		}
		s.Merge(incScope)
	}
	return nil
}
