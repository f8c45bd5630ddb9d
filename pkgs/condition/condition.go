// Package condition translates qmake condition text into CMake boolean
// expressions and simplifies them against the platform hierarchy. The
// simplifier is a small propositional engine; it never solves anything
// general, the variable vocabulary per run is tiny.
package condition

import (
	"regexp"
	"strings"

	"github.com/promake/pro2cmake/pkgs/mapping"
)

var featureCall = regexp.MustCompile(`^(qtConfig|qtHaveModule)\(([a-zA-Z0-9_-]+)\)`)

// MapCondition rewrites a raw qmake condition into the CMake AND/OR/NOT
// vocabulary. Feature checks become QT_FEATURE_* variables, module checks
// become TARGET checks, platform tokens go through the platform table.
func MapCondition(cond string) string {
	cond = strings.ReplaceAll(cond, "*", "_x_")
	cond = strings.ReplaceAll(cond, ".$$", "__ss_")
	cond = strings.ReplaceAll(cond, "$$", "_ss_")

	cond = strings.ReplaceAll(cond, "!", "NOT ")
	cond = strings.ReplaceAll(cond, "&&", " AND ")
	cond = strings.ReplaceAll(cond, "|", " OR ")

	var parts []string
	for _, part := range strings.Fields(cond) {
		if m := featureCall.FindStringSubmatch(part); m != nil {
			if m[1] == "qtHaveModule" {
				part = "TARGET " + mapping.MapBaseLibrary(m[2])
			} else {
				feature := mapping.FeatureName(m[2])
				if lib, ok := strings.CutPrefix(feature, "system_"); ok && mapping.SubstituteLib(lib) != lib {
					// system libraries are unconditionally available
					part = "ON"
				} else {
					part = "QT_FEATURE_" + feature
				}
			}
		} else {
			part = mapping.SubstitutePlatform(part)
		}
		part = strings.ReplaceAll(part, "true", "ON")
		part = strings.ReplaceAll(part, "false", "OFF")
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

// IsSimpleCondition reports whether the condition is a single token, possibly
// negated. Simple conditions never need parentheses when combined.
func IsSimpleCondition(cond string) bool {
	if !strings.Contains(cond, " ") {
		return true
	}
	rest, ok := strings.CutPrefix(cond, "NOT ")
	return ok && !strings.Contains(rest, " ")
}
