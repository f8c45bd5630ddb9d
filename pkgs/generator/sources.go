package generator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/promake/pro2cmake/pkgs/mapping"
	"github.com/promake/pro2cmake/pkgs/scope"
)

// writeSourcesSection emits the field lists of one target call: TYPE,
// SOURCES, DEFINES, INCLUDE_DIRECTORIES and LIBRARIES, in that order. It
// returns the keys that carried operations but were never resolved, for the
// diagnostic comment block.
func (g *Generator) writeSourcesSection(w io.Writer, s *scope.Scope, indent int,
	knownLibraries map[string]bool) []string {

	ind := spaces(indent)
	s.ResetVisitedKeys()

	if pluginType := s.Resolve("PLUGIN_TYPE"); len(pluginType) > 0 {
		fmt.Fprintf(w, "%s    TYPE %s\n", ind, pluginType[0])
	}

	var sources []string
	sources = append(sources, s.Resolve("SOURCES")...)
	sources = append(sources, s.Resolve("HEADERS")...)
	sources = append(sources, s.Resolve("OBJECTIVE_SOURCES")...)
	sources = append(sources, s.Resolve("NO_PCH_SOURCES")...)
	sources = append(sources, s.Resolve("FORMS")...)

	if resources := s.Resolve("RESOURCES"); len(resources) > 0 {
		qrcOnly := true
		for _, r := range resources {
			if !strings.HasSuffix(r, ".qrc") {
				qrcOnly = false
				break
			}
		}
		if qrcOnly {
			sources = append(sources, resources...)
		} else {
			g.logger.Warn("ignoring non-QRC file resources", "file", s.File())
		}
	}

	vpath := s.Resolve("VPATH")

	mapped := make([]string, 0, len(sources))
	for _, src := range sources {
		mapped = append(mapped, g.mapSourceToCMake(src, s.Basedir(), vpath))
	}
	if len(mapped) > 0 {
		fmt.Fprintf(w, "%s    SOURCES\n", ind)
	}
	for _, line := range sortSources(mapped) {
		fmt.Fprintf(w, "%s        %s\n", ind, line)
	}

	if defines := s.Resolve("DEFINES"); len(defines) > 0 {
		fmt.Fprintf(w, "%s    DEFINES\n", ind)
		for _, d := range defines {
			d = strings.ReplaceAll(d, `=\\"$$PWD/\\"`, `="${CMAKE_CURRENT_SOURCE_DIR}/"`)
			fmt.Fprintf(w, "%s        %s\n", ind, d)
		}
	}

	if includes := s.Resolve("INCLUDEPATH"); len(includes) > 0 {
		fmt.Fprintf(w, "%s    INCLUDE_DIRECTORIES\n", ind)
		for _, i := range includes {
			i = strings.TrimRight(i, "/")
			if i == "" {
				i = "/"
			}
			fmt.Fprintf(w, "%s        %s\n", ind, i)
		}
	}

	var dependencies []string
	for _, q := range s.Resolve("QT") {
		if lib := mapping.MapLibrary(q); !knownLibraries[lib] {
			dependencies = append(dependencies, lib)
		}
	}
	for _, q := range s.Resolve("QT_FOR_PRIVATE") {
		if lib := mapping.MapLibrary(q); !knownLibraries[lib] {
			dependencies = append(dependencies, lib)
		}
	}
	dependencies = append(dependencies, s.Resolve("QMAKE_USE_PRIVATE")...)
	dependencies = append(dependencies, s.Resolve("LIBS_PRIVATE")...)
	dependencies = append(dependencies, s.Resolve("LIBS")...)

	if len(dependencies) > 0 {
		fmt.Fprintf(w, "%s    LIBRARIES\n", ind)
		isFramework := false
		for _, d := range dependencies {
			if d == "-framework" {
				isFramework = true
				continue
			}
			if isFramework {
				d = "${FW" + d + "}"
			}
			d = strings.TrimPrefix(d, "-l")
			if strings.HasPrefix(d, "-") {
				d = "# Remove: " + d[1:]
			} else {
				d = mapping.SubstituteLib(d)
			}
			fmt.Fprintf(w, "%s        %s\n", ind, d)
			isFramework = false
		}
	}

	var ignored []string
	visited := s.VisitedKeys()
	for _, k := range s.Keys() {
		if !visited[k] {
			ignored = append(ignored, k)
		}
	}
	return ignored
}

// writeIgnoredKeys renders the diagnostic comment block for keys the emitter
// never resolved. A few keys are reported elsewhere and skipped here.
func writeIgnoredKeys(s *scope.Scope, ignored []string, indent string) string {
	keys := append([]string{}, ignored...)
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		if k == "_INCLUDED" || k == "TARGET" || k == "QMAKE_DOCS" {
			continue
		}
		values := s.Resolve(k)
		valueString := "<EMPTY>"
		if len(values) > 0 {
			valueString = `"` + strings.Join(values, `" "`) + `"`
		}
		fmt.Fprintf(&b, "%s# %s = %s\n", indent, k, valueString)
	}
	return b.String()
}

// sortSources orders sources by directory and base name with the "_p"
// private suffix stripped, so a header and its private counterpart sit on
// one line.
func sortSources(sources []string) []string {
	groups := map[string][]string{}
	for _, s := range sources {
		if s == "" {
			continue
		}
		dir := filepath.Dir(s)
		base := strings.TrimSuffix(filepath.Base(s), filepath.Ext(s))
		base = strings.TrimSuffix(base, "_p")
		key := filepath.Join(dir, base)
		groups[key] = append(groups[key], s)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		group := groups[k]
		sort.Strings(group)
		lines = append(lines, strings.Join(group, " "))
	}
	return lines
}

// mapSourceToCMake resolves a source entry against the base directory and
// the VPATH search list. Entries that cannot be found flow through with a
// -NOTFOUND suffix instead of aborting generation.
func (g *Generator) mapSourceToCMake(source, baseDir string, vpath []string) string {
	if source == "" || source == "$$NO_PCH_SOURCES" {
		return ""
	}
	if rest, ok := strings.CutPrefix(source, "$$PWD/"); ok {
		return rest
	}
	if source == "." {
		return "${CMAKE_CURRENT_SOURCE_DIR}"
	}
	if rest, ok := strings.CutPrefix(source, "$$QT_SOURCE_TREE/"); ok {
		return "${PROJECT_SOURCE_DIR}/" + rest
	}

	if _, err := os.Stat(filepath.Join(baseDir, source)); err == nil {
		return source
	}
	for _, v := range vpath {
		full := filepath.Join(v, source)
		if _, err := os.Stat(full); err == nil {
			if rel, err := filepath.Rel(baseDir, full); err == nil {
				return rel
			}
			return full
		}
	}

	g.logger.Warn("source not found", "source", source, "basedir", baseDir)
	return source + "-NOTFOUND"
}
