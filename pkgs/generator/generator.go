// Package generator writes CMakeLists.txt files from merged scope trees.
// Target classification mirrors the qmake load() hints: qt_module, qt_plugin
// and qt_tool map to the matching add_qt_* functions, everything else is a
// test or a plain executable.
package generator

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/promake/pro2cmake/pkgs/errors"
	"github.com/promake/pro2cmake/pkgs/parser"
	"github.com/promake/pro2cmake/pkgs/scope"
)

// Generator emits CMake output for evaluated scope trees.
type Generator struct {
	logger *slog.Logger
}

// New creates a generator. A nil logger disables diagnostics.
func New(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{logger: logger}
}

func spaces(indent int) string {
	return strings.Repeat("    ", indent)
}

// GenerateCMakeLists writes the CMakeLists.txt for a file root scope, with a
// provenance header naming the source file.
func (g *Generator) GenerateCMakeLists(root *scope.Scope) error {
	path := root.CMakeListsPath()
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrGeneration, "failed to create "+path, err)
	}
	defer f.Close()

	fmt.Fprintf(f, "# Generated from %s.\n\n", filepath.Base(root.File()))
	return g.CmakeifyScope(f, root, 0)
}

// CmakeifyScope dispatches on the scope's TEMPLATE. Unsupported templates
// are skipped with a warning.
func (g *Generator) CmakeifyScope(w io.Writer, s *scope.Scope, indent int) error {
	template, err := s.Template()
	if err != nil {
		return err
	}
	switch template {
	case "subdirs":
		return g.handleSubdir(w, s, indent)
	case "app", "lib":
		return g.handleAppOrLib(w, s, indent)
	default:
		g.logger.Warn("template type not yet supported",
			"file", s.File(), "template", template)
		return nil
	}
}

// handleSubdir emits add_subdirectory calls. A SUBDIRS entry naming a .pro
// file directly is converted inline; conditional children become if() blocks
// around their own entries.
func (g *Generator) handleSubdir(w io.Writer, s *scope.Scope, indent int) error {
	ind := spaces(indent)
	for _, sd := range s.Resolve("SUBDIRS") {
		full := filepath.Join(s.Basedir(), sd)
		info, statErr := os.Stat(full)
		switch {
		case statErr == nil && info.IsDir():
			fmt.Fprintf(w, "%sadd_subdirectory(%s)\n", ind, sd)
		case statErr == nil:
			stmts, err := parser.ParseFile(full, parser.Options{Logger: g.logger})
			if err != nil {
				return err
			}
			sub, err := scope.FromStatements(nil, full, stmts, "", s.Basedir())
			if err != nil {
				return err
			}
			if err := g.CmakeifyScope(w, sub, indent+1); err != nil {
				return err
			}
		case strings.HasPrefix(sd, "-"):
			fmt.Fprintf(w, "%s### remove_subdirectory(%q)\n", ind, sd[1:])
		default:
			g.logger.Warn("subdir not found", "subdir", sd, "scope", s.String())
		}
	}

	for _, c := range s.Children() {
		cond := c.Condition()
		if cond == "else" {
			fmt.Fprintf(w, "\n%selse()\n", ind)
		} else if cond != "" {
			fmt.Fprintf(w, "\n%sif(%s)\n", ind, cond)
		}
		if err := g.handleSubdir(w, c, indent+1); err != nil {
			return err
		}
		if cond != "" {
			fmt.Fprintf(w, "%sendif()\n", ind)
		}
	}
	return nil
}

func (g *Generator) handleAppOrLib(w io.Writer, s *scope.Scope, indent int) error {
	template, err := s.Template()
	if err != nil {
		return err
	}
	loaded := s.Resolve("_LOADED")

	switch {
	case template == "lib" || contains(loaded, "qt_module"):
		err = g.writeModule(w, s, indent)
	case contains(loaded, "qt_plugin"):
		err = g.writePlugin(w, s, indent)
	case contains(loaded, "qt_tool"):
		err = g.writeTool(w, s, indent)
	default:
		config := s.Resolve("CONFIG")
		if contains(config, "testcase") || contains(config, "testlib") {
			err = g.writeTest(w, s, indent)
		} else {
			gui := !contains(config, "console")
			err = g.writeBinary(w, s, gui, indent)
		}
	}
	if err != nil {
		return err
	}

	docs, err := s.ResolveString("QMAKE_DOCS", "")
	if err != nil {
		return err
	}
	if docs != "" {
		fmt.Fprintf(w, "\n%sadd_qt_docs(%s)\n", spaces(indent),
			scope.MapToFile(docs, s.Basedir(), s.Currentdir(), false))
	}
	return nil
}

func (g *Generator) writeModule(w io.Writer, s *scope.Scope, indent int) error {
	name, err := s.Target()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(name, "Qt") {
		return errors.New(errors.ErrGeneration,
			"module target %q does not start with Qt", name)
	}

	config := s.Resolve("CONFIG")
	var extra []string
	if contains(config, "static") {
		extra = append(extra, "STATIC")
	}
	if contains(config, "no_module_headers") {
		extra = append(extra, "NO_MODULE_HEADERS")
	}

	err = g.writeMainPart(w, name[2:], "Module", "add_qt_module", s, extra,
		indent, map[string]bool{"Qt::Core": true})
	if err != nil {
		return err
	}

	if contains(config, "qt_tracepoints") {
		provider, err := s.ResolveString("TRACEPOINT_PROVIDER", "")
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n\n%sqt_create_tracepoints(%s %s)\n", spaces(indent),
			name[2:], scope.MapToFile(provider, s.Basedir(), s.Currentdir(), false))
	}
	return nil
}

func (g *Generator) writePlugin(w io.Writer, s *scope.Scope, indent int) error {
	name, err := s.Target()
	if err != nil {
		return err
	}
	return g.writeMainPart(w, name, "Plugin", "add_qt_plugin", s, nil,
		indent, map[string]bool{"QtCore": true})
}

func (g *Generator) writeTool(w io.Writer, s *scope.Scope, indent int) error {
	name, err := s.Target()
	if err != nil {
		return err
	}
	return g.writeMainPart(w, name, "Tool", "add_qt_tool", s, nil,
		indent, map[string]bool{"Qt::Core": true})
}

func (g *Generator) writeTest(w io.Writer, s *scope.Scope, indent int) error {
	name, err := s.Target()
	if err != nil {
		return err
	}
	return g.writeMainPart(w, name, "Test", "add_qt_test", s, nil,
		indent, map[string]bool{"Qt::Core": true, "Qt::Test": true})
}

func (g *Generator) writeBinary(w io.Writer, s *scope.Scope, gui bool, indent int) error {
	name, err := s.Target()
	if err != nil {
		return err
	}
	var extra []string
	if gui {
		extra = append(extra, "GUI")
	}
	return g.writeMainPart(w, name, "Binary", "add_qt_executable", s, extra,
		indent, map[string]bool{"Qt::Core": true})
}

// writeMainPart evaluates, flattens and merges the scope tree, writes the
// primary target call from the unconditional scope, then one extend_target
// block per remaining merged scope.
func (g *Generator) writeMainPart(w io.Writer, name, typename, cmakeFunction string,
	root *scope.Scope, extraLines []string, indent int, knownLibraries map[string]bool) error {

	if err := scope.EvaluateTotalConditions(root); err != nil {
		return err
	}

	flat := scope.Flatten(root)
	merged := scope.MergeScopes(flat)
	g.logger.Debug("merged scopes", "file", root.File(),
		"before", len(flat), "after", len(merged))

	if len(merged) == 0 || merged[0].TotalCondition() != "ON" {
		return errors.New(errors.ErrInvariant,
			"primary scope of %s is not unconditional", root.File())
	}

	writeHeader(w, name, typename, indent)

	fmt.Fprintf(w, "%s%s(%s\n", spaces(indent), cmakeFunction, name)
	for _, line := range extraLines {
		fmt.Fprintf(w, "%s    %s\n", spaces(indent), line)
	}

	ignored := g.writeSourcesSection(w, merged[0], indent, knownLibraries)
	if report := writeIgnoredKeys(merged[0], ignored, spaces(indent+1)); report != "" {
		io.WriteString(w, report)
	}
	fmt.Fprintf(w, "%s)\n", spaces(indent))

	if len(merged) == 1 {
		return nil
	}

	writeScopeHeader(w, indent)
	for _, c := range merged[1:] {
		g.writeExtendTarget(w, name, c, indent)
	}
	return nil
}

// writeExtendTarget renders one conditioned extension block. A block with
// diagnostics but no sources is emitted fully commented out; a block with
// neither is elided.
func (g *Generator) writeExtendTarget(w io.Writer, target string, s *scope.Scope, indent int) {
	var buf bytes.Buffer
	ignored := g.writeSourcesSection(&buf, s, indent, nil)
	sections := buf.String()

	report := writeIgnoredKeys(s, ignored, spaces(indent+1))
	if sections != "" && report != "" {
		report = "\n" + report
	}

	extend := fmt.Sprintf("\n%sextend_target(%s CONDITION %s\n%s%s)\n",
		spaces(indent), target, s.TotalCondition(), sections, report)

	if sections == "" {
		if report == "" {
			return
		}
		var commented strings.Builder
		for _, line := range strings.SplitAfter(extend, "\n") {
			if line == "" {
				continue
			}
			commented.WriteString("#" + line)
		}
		extend = commented.String()
	}
	io.WriteString(w, extend)
}

var headerRule = strings.Repeat("#", 69)

func writeHeader(w io.Writer, name, typename string, indent int) {
	ind := spaces(indent)
	fmt.Fprintf(w, "%s%s\n", ind, headerRule)
	fmt.Fprintf(w, "%s## %s %s:\n", ind, name, typename)
	fmt.Fprintf(w, "%s%s\n\n", ind, headerRule)
}

func writeScopeHeader(w io.Writer, indent int) {
	ind := spaces(indent)
	fmt.Fprintf(w, "\n%s## Scopes:\n", ind)
	fmt.Fprintf(w, "%s%s\n", ind, headerRule)
}

func contains(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}
