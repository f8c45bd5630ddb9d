package scope

import (
	"path/filepath"
	"strings"
)

// MapToFile rewrites the special qmake path prefixes against a scope's base
// and current directories. It returns "" for the pch exclusion marker; the
// callers filter empty entries out.
func MapToFile(f, topDir, currentDir string, wantAbsolute bool) string {
	if f == "$$NO_PCH_SOURCES" {
		return ""
	}
	if f == "$$PWD" || strings.HasPrefix(f, "$$PWD/") {
		rel, err := filepath.Rel(topDir, currentDir)
		if err != nil {
			rel = currentDir
		}
		rest := strings.TrimPrefix(strings.TrimPrefix(f, "$$PWD"), "/")
		return filepath.Join(rel, rest)
	}
	if rest, ok := strings.CutPrefix(f, "$$OUT_PWD/"); ok {
		return "${CMAKE_CURRENT_BUILD_DIR}/" + rest
	}
	if rest, ok := strings.CutPrefix(f, "$$QT_SOURCE_TREE"); ok {
		return "${PROJECT_SOURCE_DIR}/" + strings.TrimPrefix(rest, "/")
	}
	if strings.HasPrefix(f, "./") {
		return filepath.Join(currentDir, f)
	}
	if wantAbsolute && !filepath.IsAbs(f) {
		return filepath.Join(currentDir, f)
	}
	return f
}
