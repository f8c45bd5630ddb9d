// Package mapping holds the lookup tables that translate qmake identifiers
// (Qt module names, feature names, platform tokens, system libraries) into
// their CMake counterparts. The tables are plain lookups; anything unknown
// passes through unchanged.
package mapping

import (
	"regexp"
	"strings"
)

var qtLibraryMap = map[string]string{
	"concurrent":   "Qt::Concurrent",
	"core":         "Qt::Core",
	"dbus":         "Qt::DBus",
	"gui":          "Qt::Gui",
	"multimedia":   "Qt::Multimedia",
	"network":      "Qt::Network",
	"opengl":       "Qt::OpenGL",
	"printsupport": "Qt::PrintSupport",
	"qml":          "Qt::Qml",
	"quick":        "Qt::Quick",
	"sql":          "Qt::Sql",
	"svg":          "Qt::Svg",
	"testlib":      "Qt::Test",
	"widgets":      "Qt::Widgets",
	"xml":          "Qt::Xml",
}

var platformMap = map[string]string{
	"android":          "ANDROID",
	"android-embedded": "ANDROID_EMBEDDED",
	"bsd":              "BSD",
	"darwin":           "APPLE",
	"freebsd":          "FREEBSD",
	"integrity":        "INTEGRITY",
	"ios":              "APPLE_IOS",
	"linux":            "LINUX",
	"mac":              "APPLE",
	"macos":            "APPLE_OSX",
	"macx":             "APPLE_OSX",
	"netbsd":           "NETBSD",
	"openbsd":          "OPENBSD",
	"osx":              "APPLE_OSX",
	"qnx":              "QNX",
	"tvos":             "APPLE_TVOS",
	"uikit":            "APPLE_UIKIT",
	"unix":             "UNIX",
	"vxworks":          "VXWORKS",
	"wasm":             "WASM",
	"watchos":          "APPLE_WATCHOS",
	"win32":            "WIN32",
	"winrt":            "WINRT",
}

var libraryMap = map[string]string{
	"cups":              "Cups::Cups",
	"double-conversion": "double-conversion::double-conversion",
	"freetype":          "Freetype::Freetype",
	"glib":              "GLIB2::GLIB2",
	"harfbuzz":          "harfbuzz::harfbuzz",
	"libdl":             "${CMAKE_DL_LIBS}",
	"libjpeg":           "JPEG::JPEG",
	"libpng":            "PNG::PNG",
	"openssl":           "OpenSSL::SSL",
	"pcre2":             "PCRE2::PCRE2",
	"zlib":              "ZLIB::ZLIB",
}

var nonFeatureChar = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// MapBaseLibrary maps a qmake module token to its CMake target name.
// Unknown tokens pass through unchanged.
func MapBaseLibrary(lib string) string {
	if mapped, ok := qtLibraryMap[lib]; ok {
		return mapped
	}
	return lib
}

// MapLibrary maps a qmake module token, resolving the "-private" suffix to
// the matching private target.
func MapLibrary(lib string) string {
	if base, ok := strings.CutSuffix(lib, "-private"); ok {
		if mapped, found := qtLibraryMap[base]; found {
			return mapped + "Private"
		}
		return lib
	}
	return MapBaseLibrary(lib)
}

// FeatureName normalizes a qmake feature token into a CMake variable part.
func FeatureName(name string) string {
	return nonFeatureChar.ReplaceAllString(name, "_")
}

// SubstitutePlatform maps a qmake platform token to the CMake variable of the
// platform hierarchy. Unknown tokens pass through unchanged.
func SubstitutePlatform(token string) string {
	if mapped, ok := platformMap[token]; ok {
		return mapped
	}
	return token
}

// SubstituteLib maps a system library token to its CMake package target.
// Unknown tokens pass through unchanged.
func SubstituteLib(lib string) string {
	if mapped, ok := libraryMap[lib]; ok {
		return mapped
	}
	return lib
}
